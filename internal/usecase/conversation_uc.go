package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"meal-review-bot/internal/callback"
	"meal-review-bot/internal/command"
	"meal-review-bot/internal/domain"
	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/adapter"
	"meal-review-bot/internal/infra/i18n"
	"meal-review-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

// InputKind is the shape of an incoming update after routing.
type InputKind string

const (
	InputCommand  InputKind = "command"
	InputCallback InputKind = "callback"
	InputText     InputKind = "text"
	InputPhoto    InputKind = "photo"
)

// Input is one update as the engine sees it. Only the fields matching Kind are set.
type Input struct {
	Kind InputKind

	Command command.Command

	Callback callback.Action
	// MessageID is the message that carries the pressed keyboard.
	MessageID int

	Text     string
	PhotoRef string

	Sender model.Reviewer
}

type EffectKind int

const (
	EffectSendText EffectKind = iota
	EffectSendButtons
	EffectEditMessage
)

// Effect is an outbound message the router delivers after the state is written.
type Effect struct {
	Kind      EffectKind
	Text      string
	Buttons   [][]adapter.InlineButton
	MessageID int
}

type Outcome string

const (
	OutcomeTransition Outcome = "transition"
	OutcomeReprompt   Outcome = "reprompt"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeCancelled  Outcome = "cancelled"
)

// Transition is the result of one Advance call.
type Transition struct {
	Next    model.ConversationState
	Effects []Effect
	Outcome Outcome
}

// ConversationUseCase is the per-chat dialogue state machine. It never
// touches the session store; the caller persists Next.
type ConversationUseCase interface {
	Advance(ctx context.Context, chatID int64, state model.ConversationState, in Input) (Transition, error)
}

type conversationUC struct {
	catalogue CatalogueUseCase
	t         *i18n.Translator
	log       *zerolog.Logger
}

func NewConversationUseCase(catalogue CatalogueUseCase, translator *i18n.Translator, logger *zerolog.Logger) *conversationUC {
	return &conversationUC{catalogue: catalogue, t: translator, log: logger}
}

// Advance computes the next state and the replies for in. Catalogue failures
// come back as errors wrapping domain.ErrOperationFailed; the caller keeps
// the current state in that case.
func (e *conversationUC) Advance(ctx context.Context, chatID int64, state model.ConversationState, in Input) (Transition, error) {
	defer logging.TraceDuration(e.log, "ConversationUC.Advance")()

	state, err := state.Normalize()
	if err != nil {
		logging.With(ctx, e.log).Warn().Err(err).Int64("chat_id", chatID).Msg("resetting unknown conversation state")
	}

	if isCancel(in) {
		return e.cancel(state), nil
	}

	switch state.Kind {
	case model.StateAwaitingDishName:
		return e.onDishName(state, in), nil
	case model.StateAwaitingDishPhoto:
		return e.onDishPhoto(ctx, state, in)
	case model.StateAwaitingRestaurantNameEdit:
		return e.onRestaurantEdit(ctx, state, in, model.RestaurantFieldName)
	case model.StateAwaitingRestaurantAddressEdit:
		return e.onRestaurantEdit(ctx, state, in, model.RestaurantFieldAddress)
	case model.StateAwaitingReviewText:
		return e.onReviewText(state, in), nil
	case model.StateAwaitingReviewScore:
		return e.onReviewScore(ctx, state, in)
	default:
		return e.onIdle(ctx, state, in)
	}
}

func (e *conversationUC) cancel(state model.ConversationState) Transition {
	if state.IsIdle() {
		return Transition{Next: model.Idle(), Outcome: OutcomeCancelled, Effects: e.say("nothing_to_cancel")}
	}
	return Transition{Next: model.Idle(), Outcome: OutcomeCancelled, Effects: e.say("cancelled")}
}

// ---- Idle ----

func (e *conversationUC) onIdle(ctx context.Context, state model.ConversationState, in Input) (Transition, error) {
	switch in.Kind {
	case InputCommand:
		return e.onCommand(ctx, state, in.Command)
	case InputCallback:
		return e.onCallback(ctx, state, in)
	default:
		return ignore(state), nil
	}
}

func (e *conversationUC) onCommand(ctx context.Context, state model.ConversationState, cmd command.Command) (Transition, error) {
	switch cmd.Name {
	case command.Help:
		return stay(state, e.say("help")), nil
	case command.Rest:
		switch cmd.Action {
		case command.ActionAdd:
			return e.addRestaurant(ctx, state, cmd)
		case command.ActionSearch:
			return e.searchRestaurants(ctx, state, cmd.Pattern)
		case command.ActionEdit:
			return e.restaurantMenu(ctx, state, cmd.ID)
		}
	case command.Dish:
		switch cmd.Action {
		case command.ActionList:
			return e.listDishes(ctx, state, cmd.ID)
		case command.ActionAdd:
			if _, err := e.catalogue.GetRestaurant(ctx, cmd.ID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return stay(state, e.say("rest_not_found")), nil
				}
				return Transition{}, failed("find restaurant", err)
			}
			return move(model.AwaitingDishName(cmd.ID), e.say("dish_ask_name")), nil
		}
	case command.Review:
		switch cmd.Action {
		case command.ActionStart:
			if _, err := e.catalogue.GetDish(ctx, cmd.ID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return stay(state, e.say("dish_not_found")), nil
				}
				return Transition{}, failed("find dish", err)
			}
			return move(model.AwaitingReviewText(cmd.ID), e.say("review_ask_text")), nil
		case command.ActionShow:
			return e.listReviews(ctx, state, cmd.ID)
		}
	}
	logging.With(ctx, e.log).Debug().Str("command", string(cmd.Name)).Str("action", cmd.Action).Msg("command has no handler")
	return ignore(state), nil
}

func (e *conversationUC) onCallback(ctx context.Context, state model.ConversationState, in Input) (Transition, error) {
	a := in.Callback
	switch a.Domain {
	case callback.DomainRestaurantMenu:
		switch a.Verb {
		case callback.VerbUpdate:
			return stay(state, []Effect{{
				Kind:      EffectEditMessage,
				MessageID: in.MessageID,
				Text:      e.t.T("rest_field_picker"),
				Buttons:   e.fieldPickerButtons(a.SubjectID),
			}}), nil
		case callback.VerbNewDishes:
			return move(model.AwaitingDishName(a.SubjectID), e.say("dish_ask_name")), nil
		case callback.VerbListDishes:
			return e.listDishes(ctx, state, a.SubjectID)
		case callback.VerbDelete:
			return e.deleteRestaurant(ctx, state, a.SubjectID, in.MessageID)
		}
	case callback.DomainRestaurantFieldPicker:
		switch a.Verb {
		case callback.VerbName:
			return move(model.AwaitingRestaurantNameEdit(a.SubjectID), e.say("rest_ask_name")), nil
		case callback.VerbAddress:
			return move(model.AwaitingRestaurantAddressEdit(a.SubjectID), e.say("rest_ask_address")), nil
		}
	}
	logging.With(ctx, e.log).Warn().
		Str("domain", string(a.Domain)).
		Int64("subject_id", a.SubjectID).
		Str("verb", a.Verb).
		Msg("unknown callback verb")
	return ignore(state), nil
}

func (e *conversationUC) addRestaurant(ctx context.Context, state model.ConversationState, cmd command.Command) (Transition, error) {
	if _, err := e.catalogue.AddRestaurant(ctx, cmd.RestaurantName, cmd.RestaurantAddress); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return reprompt(state, e.textEffect(command.UsageRestAdd)), nil
		}
		return Transition{}, failed("add restaurant", err)
	}
	return stay(state, e.say("rest_added")), nil
}

func (e *conversationUC) searchRestaurants(ctx context.Context, state model.ConversationState, pattern string) (Transition, error) {
	rs, err := e.catalogue.SearchRestaurants(ctx, pattern)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return reprompt(state, e.textEffect(command.UsageRestSearch)), nil
		}
		return Transition{}, failed("search restaurants", err)
	}
	if len(rs) == 0 {
		return stay(state, e.say("search_no_match", pattern)), nil
	}
	lines := make([]string, 0, len(rs))
	for _, r := range rs {
		lines = append(lines, e.t.T("search_line", r.ID, r.Name, r.Address))
	}
	return stay(state, e.textEffect(strings.Join(lines, "\n"))), nil
}

func (e *conversationUC) restaurantMenu(ctx context.Context, state model.ConversationState, id int64) (Transition, error) {
	r, err := e.catalogue.GetRestaurant(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return stay(state, e.say("rest_not_found")), nil
		}
		return Transition{}, failed("find restaurant", err)
	}
	return stay(state, []Effect{{
		Kind:    EffectSendButtons,
		Text:    e.t.T("rest_menu", r.Name, r.Address),
		Buttons: e.menuButtons(r.ID),
	}}), nil
}

func (e *conversationUC) deleteRestaurant(ctx context.Context, state model.ConversationState, id int64, messageID int) (Transition, error) {
	if err := e.catalogue.DeleteRestaurant(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return stay(state, e.say("rest_not_found")), nil
		}
		return Transition{}, failed("delete restaurant", err)
	}
	return stay(state, []Effect{{
		Kind:      EffectEditMessage,
		MessageID: messageID,
		Text:      e.t.T("rest_deleted", id),
	}}), nil
}

func (e *conversationUC) listDishes(ctx context.Context, state model.ConversationState, restaurantID int64) (Transition, error) {
	dishes, err := e.catalogue.ListDishes(ctx, restaurantID)
	if err != nil {
		return Transition{}, failed("list dishes", err)
	}
	if len(dishes) == 0 {
		return stay(state, e.say("dish_none")), nil
	}
	lines := make([]string, 0, len(dishes))
	for _, d := range dishes {
		lines = append(lines, e.t.T("dish_line", d.ID, d.Name))
	}
	return stay(state, e.textEffect(strings.Join(lines, "\n"))), nil
}

func (e *conversationUC) listReviews(ctx context.Context, state model.ConversationState, dishID int64) (Transition, error) {
	reviews, err := e.catalogue.ListReviews(ctx, dishID)
	if err != nil {
		return Transition{}, failed("list reviews", err)
	}
	if len(reviews) == 0 {
		return stay(state, e.say("review_none", dishID)), nil
	}
	lines := make([]string, 0, len(reviews))
	for _, r := range reviews {
		name := r.Reviewer.Name
		if name == "" {
			name = "#" + strconv.FormatInt(r.Reviewer.ID, 10)
		}
		lines = append(lines, e.t.T("review_line", r.Score, name, r.Details))
	}
	return stay(state, e.textEffect(strings.Join(lines, "\n"))), nil
}

// ---- dish flow ----

func (e *conversationUC) onDishName(state model.ConversationState, in Input) Transition {
	switch in.Kind {
	case InputText:
		name := strings.TrimSpace(in.Text)
		if name == "" {
			return reprompt(state, e.say("dish_name_required"))
		}
		return move(model.AwaitingDishPhoto(state.RestaurantID, name), e.say("dish_ask_photo", name))
	case InputPhoto:
		return reprompt(state, e.say("dish_name_required"))
	default:
		return ignore(state)
	}
}

func (e *conversationUC) onDishPhoto(ctx context.Context, state model.ConversationState, in Input) (Transition, error) {
	var imageRef *string
	switch in.Kind {
	case InputText:
		if !isCommandWord(in.Text, "skip") {
			return reprompt(state, e.say("dish_need_image")), nil
		}
	case InputPhoto:
		ref := in.PhotoRef
		imageRef = &ref
	default:
		return ignore(state), nil
	}

	if _, err := e.catalogue.AddDish(ctx, state.RestaurantID, state.DishName, imageRef); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return move(model.Idle(), e.say("rest_not_found")), nil
		}
		return Transition{}, failed("add dish", err)
	}
	return move(model.Idle(), e.say("dish_added")), nil
}

// ---- restaurant edit flow ----

func (e *conversationUC) onRestaurantEdit(ctx context.Context, state model.ConversationState, in Input, field model.RestaurantField) (Transition, error) {
	required, changed := "rest_name_required", "rest_name_changed"
	if field == model.RestaurantFieldAddress {
		required, changed = "rest_address_required", "rest_address_changed"
	}

	switch in.Kind {
	case InputText:
	case InputPhoto:
		return reprompt(state, e.say(required)), nil
	default:
		return ignore(state), nil
	}

	value := strings.TrimSpace(in.Text)
	if value == "" {
		return reprompt(state, e.say(required)), nil
	}
	if err := e.catalogue.UpdateRestaurant(ctx, state.RestaurantID, field, value); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return move(model.Idle(), e.say("rest_not_found")), nil
		}
		return Transition{}, failed("update restaurant", err)
	}
	return move(model.Idle(), e.say(changed, value)), nil
}

// ---- review flow ----

func (e *conversationUC) onReviewText(state model.ConversationState, in Input) Transition {
	switch in.Kind {
	case InputText:
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return reprompt(state, e.say("review_text_required"))
		}
		return move(model.AwaitingReviewScore(state.DishID, text), e.say("review_ask_score"))
	case InputPhoto:
		return reprompt(state, e.say("review_text_required"))
	default:
		return ignore(state)
	}
}

func (e *conversationUC) onReviewScore(ctx context.Context, state model.ConversationState, in Input) (Transition, error) {
	switch in.Kind {
	case InputText:
	case InputPhoto:
		return reprompt(state, e.say("review_score_required")), nil
	default:
		return ignore(state), nil
	}

	score, err := ParseScore(in.Text)
	if err != nil {
		if errors.Is(err, errScoreRange) {
			return reprompt(state, e.say("review_out_of_range")), nil
		}
		return reprompt(state, e.say("review_invalid_number")), nil
	}

	if _, err := e.catalogue.AddReview(ctx, state.DishID, in.Sender, score, state.ReviewText); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return move(model.Idle(), e.say("dish_not_found")), nil
		}
		return Transition{}, failed("add review", err)
	}
	return move(model.Idle(), e.say("review_added")), nil
}

var errScoreRange = fmt.Errorf("%w: score must be between %d and %d", domain.ErrInvalidArgument, model.MinScore, model.MaxScore)

// ParseScore accepts a base-10 integer in [model.MinScore, model.MaxScore].
func ParseScore(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidArgument, s)
	}
	if n < model.MinScore || n > model.MaxScore {
		return 0, errScoreRange
	}
	return n, nil
}

// ---- buttons ----

func (e *conversationUC) menuButtons(id int64) [][]adapter.InlineButton {
	btn := func(key, verb string) adapter.InlineButton {
		return adapter.InlineButton{Text: e.t.T(key), Data: callback.MustEncode(callback.RestaurantMenu(id, verb))}
	}
	return [][]adapter.InlineButton{
		{btn("btn_update_restaurant", callback.VerbUpdate), btn("btn_new_dish", callback.VerbNewDishes)},
		{btn("btn_list_dishes", callback.VerbListDishes), btn("btn_delete", callback.VerbDelete)},
	}
}

func (e *conversationUC) fieldPickerButtons(id int64) [][]adapter.InlineButton {
	btn := func(key, verb string) adapter.InlineButton {
		return adapter.InlineButton{Text: e.t.T(key), Data: callback.MustEncode(callback.RestaurantFieldPicker(id, verb))}
	}
	return [][]adapter.InlineButton{
		{btn("btn_update_name", callback.VerbName), btn("btn_update_address", callback.VerbAddress)},
	}
}

// ---- helpers ----

func (e *conversationUC) say(key string, args ...interface{}) []Effect {
	return e.textEffect(e.t.T(key, args...))
}

func (e *conversationUC) textEffect(text string) []Effect {
	return []Effect{{Kind: EffectSendText, Text: text}}
}

func stay(state model.ConversationState, effects []Effect) Transition {
	return Transition{Next: state, Effects: effects, Outcome: OutcomeTransition}
}

func move(next model.ConversationState, effects []Effect) Transition {
	return Transition{Next: next, Effects: effects, Outcome: OutcomeTransition}
}

func reprompt(state model.ConversationState, effects []Effect) Transition {
	return Transition{Next: state, Effects: effects, Outcome: OutcomeReprompt}
}

func ignore(state model.ConversationState) Transition {
	return Transition{Next: state, Outcome: OutcomeIgnored}
}

func failed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrOperationFailed, err)
}

func isCancel(in Input) bool {
	switch in.Kind {
	case InputCommand:
		return in.Command.Name == command.Cancel
	case InputText:
		return isCommandWord(in.Text, string(command.Cancel))
	default:
		return false
	}
}

// isCommandWord reports whether text starts with /word or /word@bot.
func isCommandWord(text, word string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	return first == "/"+word || strings.HasPrefix(first, "/"+word+"@")
}
