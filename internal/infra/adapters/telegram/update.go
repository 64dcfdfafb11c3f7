package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meal-review-bot/internal/application"
	"meal-review-bot/internal/domain/model"
)

// toUpdate keeps the updates the router understands: callback presses,
// photos and text messages from a user. ok is false for everything else.
func toUpdate(up tgbotapi.Update) (application.Update, bool) {
	if q := up.CallbackQuery; q != nil {
		if q.From == nil {
			return application.Update{}, false
		}
		u := application.Update{
			Kind:         application.UpdateCallback,
			ChatID:       q.From.ID,
			Sender:       sender(q.From),
			CallbackData: q.Data,
		}
		if q.Message != nil {
			u.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				u.ChatID = q.Message.Chat.ID
			}
		}
		return u, true
	}

	msg := up.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return application.Update{}, false
	}
	u := application.Update{
		ChatID: msg.Chat.ID,
		Sender: sender(msg.From),
	}
	switch {
	case len(msg.Photo) > 0:
		// sizes are ascending; keep the largest
		u.Kind = application.UpdatePhoto
		u.PhotoRef = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Text != "":
		u.Kind = application.UpdateText
		u.Text = msg.Text
	default:
		return application.Update{}, false
	}
	return u, true
}

func sender(u *tgbotapi.User) model.Reviewer {
	// username, else first and last name
	return model.Reviewer{ID: u.ID, Name: strings.TrimSpace(u.String())}
}
