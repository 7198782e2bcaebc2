package telegram

import (
	"context"

	"footybot/backend/internal/localization"
	"footybot/backend/internal/models"
	"footybot/backend/internal/roster"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PresenceMarker defines the roster method required by the presence handler.
type PresenceMarker interface {
	MarkPresence(ctx context.Context, chatID int64, actor roster.Actor, presence models.Presence) (roster.PresenceResult, error)
}

// HandlePresence processes /in and /out. It records the sender's answer and
// confirms it in the chat, or explains why the answer was refused.
func HandlePresence(ctx context.Context, sender Sender, marker PresenceMarker, loc *localization.Localizer,
	chatID int64, lang string, actor roster.Actor, presence models.Presence) {
	result, err := marker.MarkPresence(ctx, chatID, actor, presence)

	var text string
	if err != nil {
		text = errorText(loc, lang, err)
	} else {
		text = renderPresence(loc, lang, actor, result)
	}
	send(ctx, sender, tgbotapi.NewMessage(chatID, text))
}
