package application

import (
	"context"
	"errors"
	"fmt"

	"meal-review-bot/internal/callback"
	"meal-review-bot/internal/command"
	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/adapter"
	"meal-review-bot/internal/domain/ports/repository"
	"meal-review-bot/internal/infra/i18n"
	"meal-review-bot/internal/infra/logging"
	"meal-review-bot/internal/infra/metrics"
	"meal-review-bot/internal/usecase"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Router is the single entry point for updates. For one chat it holds the
// session lock across read, advance, write back and delivery, so updates of
// that chat never interleave.
type Router struct {
	sessions  repository.SessionStore
	engine    usecase.ConversationUseCase
	messenger adapter.Messenger
	t         *i18n.Translator
	log       *zerolog.Logger
	dev       bool
}

func NewRouter(
	sessions repository.SessionStore,
	engine usecase.ConversationUseCase,
	messenger adapter.Messenger,
	translator *i18n.Translator,
	logger *zerolog.Logger,
	dev bool,
) *Router {
	return &Router{
		sessions:  sessions,
		engine:    engine,
		messenger: messenger,
		t:         translator,
		log:       logger,
		dev:       dev,
	}
}

// HandleUpdate routes one update. Malformed callbacks and plain chatter are
// dropped silently; command mistakes get a usage hint; engine failures get
// a generic reply and leave the stored state as it was.
func (r *Router) HandleUpdate(ctx context.Context, u Update) error {
	defer logging.TraceDuration(r.log, "Router.HandleUpdate")()

	if u.TraceID == "" {
		u.TraceID = ulid.Make().String()
	}
	ctx = logging.WithTraceID(ctx, u.TraceID)
	ctx = logging.WithChatID(ctx, u.ChatID)
	ctx = logging.WithUserID(ctx, u.Sender.ID)
	log := logging.With(ctx, r.log)

	release, err := r.sessions.Lock(ctx, u.ChatID)
	if err != nil {
		metrics.IncUpdate(string(u.Kind), "lock_failed")
		return fmt.Errorf("lock chat %d: %w", u.ChatID, err)
	}
	defer release()

	state, err := r.sessions.GetState(ctx, u.ChatID)
	if err != nil {
		metrics.IncUpdate(string(u.Kind), "failed")
		r.deliver(ctx, u.ChatID, r.say("operation_failed"))
		return fmt.Errorf("read state of chat %d: %w", u.ChatID, err)
	}

	in, ok := r.input(ctx, log, u, state)
	if !ok {
		return nil
	}

	log.Debug().
		Str("state", state.String()).
		Str("input", string(in.Kind)).
		Str("text", logging.Redact(u.Text, r.dev)).
		Msg("advancing conversation")

	tr, err := r.engine.Advance(ctx, u.ChatID, state, in)
	if err != nil {
		metrics.IncUpdate(string(in.Kind), "failed")
		r.deliver(ctx, u.ChatID, r.say("operation_failed"))
		return fmt.Errorf("advance %s: %w", state, err)
	}

	if err := r.writeBack(ctx, u.ChatID, state, tr.Next); err != nil {
		metrics.IncUpdate(string(in.Kind), "failed")
		r.deliver(ctx, u.ChatID, r.say("operation_failed"))
		return fmt.Errorf("write state of chat %d: %w", u.ChatID, err)
	}

	metrics.IncUpdate(string(in.Kind), string(tr.Outcome))
	r.deliver(ctx, u.ChatID, tr.Effects)
	return nil
}

// input turns the update into engine input. ok is false when the update
// ends here: an undecodable callback, chatter, or a parse error already answered.
func (r *Router) input(ctx context.Context, log *zerolog.Logger, u Update, state model.ConversationState) (usecase.Input, bool) {
	in := usecase.Input{Sender: u.Sender}

	switch u.Kind {
	case UpdateCallback:
		a, err := callback.Decode(u.CallbackData)
		if err != nil {
			metrics.IncCallbackDecodeError(callback.Reason(err))
			metrics.IncUpdate(string(usecase.InputCallback), "decode_error")
			log.Warn().Err(err).Msg("dropping undecodable callback")
			return in, false
		}
		in.Kind = usecase.InputCallback
		in.Callback = a
		in.MessageID = u.MessageID

	case UpdateText:
		if !state.IsIdle() {
			// mid-flow: the state decides how text is read
			in.Kind = usecase.InputText
			in.Text = u.Text
			return in, true
		}
		cmd, err := command.Parse(u.Text)
		if err != nil {
			if errors.Is(err, command.ErrNotACommand) {
				metrics.IncUpdate(string(usecase.InputText), string(usecase.OutcomeIgnored))
				return in, false
			}
			metrics.IncCommandParseError(command.Reason(err))
			metrics.IncUpdate(string(usecase.InputCommand), "parse_error")
			hint := err.Error()
			var pe *command.ParseError
			if errors.As(err, &pe) {
				hint = pe.Hint()
			}
			r.deliver(ctx, u.ChatID, []usecase.Effect{{Kind: usecase.EffectSendText, Text: hint}})
			return in, false
		}
		in.Kind = usecase.InputCommand
		in.Command = cmd

	case UpdatePhoto:
		in.Kind = usecase.InputPhoto
		in.PhotoRef = u.PhotoRef

	default:
		log.Debug().Str("kind", string(u.Kind)).Msg("unsupported update kind")
		return in, false
	}
	return in, true
}

// writeBack replaces the stored state. Idle is stored as absence.
func (r *Router) writeBack(ctx context.Context, chatID int64, prev, next model.ConversationState) error {
	if prev == next {
		return nil
	}
	var err error
	if next.IsIdle() {
		err = r.sessions.ClearState(ctx, chatID)
	} else {
		err = r.sessions.SetState(ctx, chatID, next)
	}
	if err != nil {
		return err
	}
	metrics.IncTransition(string(prev.Kind), string(next.Kind))
	return nil
}

// deliver sends effects in order. Failures are logged and swallowed.
func (r *Router) deliver(ctx context.Context, chatID int64, effects []usecase.Effect) {
	for _, e := range effects {
		var (
			op  string
			err error
		)
		switch e.Kind {
		case usecase.EffectSendText:
			op, err = "send_text", r.messenger.SendText(ctx, chatID, e.Text)
		case usecase.EffectSendButtons:
			op, err = "send_buttons", r.messenger.SendButtons(ctx, chatID, e.Text, e.Buttons)
		case usecase.EffectEditMessage:
			op, err = "edit_message", r.messenger.EditMessage(ctx, chatID, e.MessageID, e.Text, e.Buttons)
		}
		if err != nil {
			metrics.IncSendFailure(op)
			logging.With(ctx, r.log).Error().Err(err).Str("op", op).Msg("failed to deliver reply")
		}
	}
}

func (r *Router) say(key string) []usecase.Effect {
	return []usecase.Effect{{Kind: usecase.EffectSendText, Text: r.t.T(key)}}
}
