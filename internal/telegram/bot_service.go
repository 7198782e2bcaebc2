// Package telegram handles the integration with the Telegram Bot API.
// It is responsible for receiving updates from Telegram, turning commands and
// button presses into roster operations, and replying to the chat.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"footybot/backend/internal/config"
	"footybot/backend/internal/localization"
	"footybot/backend/internal/logging"
	"footybot/backend/internal/models"
	"footybot/backend/internal/roster"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	CallbackPresenceIn  = "presence_in"
	CallbackPresenceOut = "presence_out"
)

// Sender is the part of *tgbotapi.BotAPI the bot talks through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// HistoryReader loads archived rounds for /history.
type HistoryReader interface {
	RecentMatches(ctx context.Context, chatID int64, limit int) ([]models.MatchRecord, error)
}

// BotService routes Telegram updates to the roster coordinator.
type BotService struct {
	Sender    Sender
	Roster    *roster.Coordinator
	Localizer *localization.Localizer
	History   HistoryReader
}

// NewBotService creates a new BotService instance. history may be nil.
func NewBotService(sender Sender, coordinator *roster.Coordinator, localizer *localization.Localizer, history HistoryReader) *BotService {
	return &BotService{
		Sender:    sender,
		Roster:    coordinator,
		Localizer: localizer,
		History:   history,
	}
}

// chatQueueSize is how many updates one chat may have buffered before Run
// stops reading from Telegram.
const chatQueueSize = 32

// Run is the main loop for long polling. Updates from the same chat are
// handled in arrival order by a worker dedicated to that chat, so different
// chats proceed in parallel. Run returns once ctx ends or updates is closed
// and every worker has drained its queue.
func (s *BotService) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	queues := make(map[int64]chan tgbotapi.Update)
	defer func() {
		for _, queue := range queues {
			close(queue)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			chatID := chatOf(update)
			queue, exists := queues[chatID]
			if !exists {
				queue = make(chan tgbotapi.Update, chatQueueSize)
				queues[chatID] = queue
				wg.Add(1)
				go func() {
					defer wg.Done()
					s.work(ctx, queue)
				}()
			}
			select {
			case queue <- update:
			case <-ctx.Done():
				return
			}
		}
	}
}

// work handles one chat's updates in order. Updates still queued after ctx
// ends are dropped.
func (s *BotService) work(ctx context.Context, queue <-chan tgbotapi.Update) {
	for update := range queue {
		if ctx.Err() != nil {
			continue
		}
		s.HandleUpdate(ctx, update)
	}
}

// chatOf returns the chat an update belongs to, or 0 when it has none.
func chatOf(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

// HandleUpdate processes a single update. Non-command messages and unknown
// commands are ignored.
func (s *BotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	l := logging.L().With().Int(logging.FieldUpdateID, update.UpdateID).Logger()
	ctx = logging.WithLogger(ctx, l)

	switch {
	case update.Message != nil && update.Message.IsCommand():
		s.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		s.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (s *BotService) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	lang := languageOf(msg.From)
	actor := actorFrom(msg.From)
	command := msg.Command()

	l := logging.Ctx(ctx).With().
		Int64(logging.FieldChatID, chatID).
		Int64(logging.FieldUserID, actor.ID).
		Str(logging.FieldCommand, command).
		Logger()
	ctx = logging.WithLogger(ctx, l)
	l.Debug().Msg("command received")

	switch command {
	case "start":
		s.reply(ctx, chatID, s.Localizer.GetString(lang, "start"))
	case "help":
		s.reply(ctx, chatID, s.Localizer.GetString(lang, "help"))
	case "open", "startselection":
		s.handleOpen(ctx, chatID, lang, actor)
	case "close", "endselection":
		s.handleClose(ctx, chatID, lang, actor)
	case "in":
		HandlePresence(ctx, s.Sender, s.Roster, s.Localizer, chatID, lang, actor, models.PresenceIn)
	case "out":
		HandlePresence(ctx, s.Sender, s.Roster, s.Localizer, chatID, lang, actor, models.PresenceOut)
	case "status":
		s.handleStatus(ctx, chatID, lang, actor)
	case "addadmin":
		s.handleAddAdmin(ctx, msg, lang, actor)
	case "history":
		s.handleHistory(ctx, chatID, lang, actor)
	default:
		l.Debug().Msg("ignoring unknown command")
	}
}

func (s *BotService) handleOpen(ctx context.Context, chatID int64, lang string, actor roster.Actor) {
	if err := s.Roster.OpenSelection(ctx, chatID, actor); err != nil {
		s.replyError(ctx, chatID, lang, err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, s.Localizer.GetString(lang, "selection_opened"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(s.Localizer.GetString(lang, "button_in"), CallbackPresenceIn),
			tgbotapi.NewInlineKeyboardButtonData(s.Localizer.GetString(lang, "button_out"), CallbackPresenceOut),
		),
	)
	s.send(ctx, msg)
}

func (s *BotService) handleClose(ctx context.Context, chatID int64, lang string, actor roster.Actor) {
	result, err := s.Roster.CloseSelection(ctx, chatID, actor)
	if err != nil {
		s.replyError(ctx, chatID, lang, err)
		return
	}
	s.reply(ctx, chatID, renderClose(s.Localizer, lang, result))
}

func (s *BotService) handleStatus(ctx context.Context, chatID int64, lang string, actor roster.Actor) {
	status, err := s.Roster.QueryStatus(ctx, chatID, actor)
	if err != nil {
		s.replyError(ctx, chatID, lang, err)
		return
	}
	s.reply(ctx, chatID, renderStatus(s.Localizer, lang, status))
}

func (s *BotService) handleAddAdmin(ctx context.Context, msg *tgbotapi.Message, lang string, actor roster.Actor) {
	chatID := msg.Chat.ID
	target := strings.TrimSpace(msg.CommandArguments())
	if target == "" && msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		target = strconv.FormatInt(msg.ReplyToMessage.From.ID, 10)
	}

	targetID, err := s.Roster.GrantAdmin(ctx, chatID, actor, target)
	if err != nil {
		s.replyError(ctx, chatID, lang, err)
		return
	}
	s.reply(ctx, chatID, s.Localizer.Format(lang, "admin_granted", targetID))
}

func (s *BotService) handleHistory(ctx context.Context, chatID int64, lang string, actor roster.Actor) {
	if !s.Roster.IsAdmin(ctx, chatID, actor.ID) {
		s.replyError(ctx, chatID, lang, roster.ErrUnauthorized)
		return
	}
	if s.History == nil {
		s.reply(ctx, chatID, s.Localizer.GetString(lang, "history_unavailable"))
		return
	}

	matches, err := s.History.RecentMatches(ctx, chatID, config.HistoryLimit)
	if err != nil {
		s.replyError(ctx, chatID, lang, err)
		return
	}
	s.reply(ctx, chatID, renderHistory(s.Localizer, lang, matches))
}

func (s *BotService) handleCallbackQuery(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil {
		return
	}

	var presence models.Presence
	switch cq.Data {
	case CallbackPresenceIn:
		presence = models.PresenceIn
	case CallbackPresenceOut:
		presence = models.PresenceOut
	default:
		s.answerCallback(ctx, cq.ID, "")
		return
	}

	chatID := cq.Message.Chat.ID
	lang := languageOf(cq.From)
	actor := actorFrom(cq.From)

	result, err := s.Roster.MarkPresence(ctx, chatID, actor, presence)
	if err != nil {
		s.answerCallback(ctx, cq.ID, errorText(s.Localizer, lang, err))
		return
	}

	s.answerCallback(ctx, cq.ID, s.Localizer.GetString(lang, "callback_"+string(presence)))
	s.reply(ctx, chatID, renderPresence(s.Localizer, lang, actor, result))
}

func (s *BotService) answerCallback(ctx context.Context, callbackID, text string) {
	if _, err := s.Sender.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to answer callback query")
	}
}

func (s *BotService) reply(ctx context.Context, chatID int64, text string) {
	s.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (s *BotService) send(ctx context.Context, msg tgbotapi.Chattable) {
	send(ctx, s.Sender, msg)
}

func (s *BotService) replyError(ctx context.Context, chatID int64, lang string, err error) {
	s.reply(ctx, chatID, errorText(s.Localizer, lang, err))
}

func send(ctx context.Context, sender Sender, msg tgbotapi.Chattable) {
	if _, err := sender.Send(msg); err != nil {
		l := logging.Ctx(ctx)
		l.Error().Err(err).Msg("failed to send message")
	}
}

// errorText maps coordinator errors to the denial shown to the user.
func errorText(loc *localization.Localizer, lang string, err error) string {
	switch {
	case errors.Is(err, roster.ErrUnauthorized):
		return loc.GetString(lang, "not_admin")
	case errors.Is(err, roster.ErrSelectionNotActive):
		return loc.GetString(lang, "selection_not_active")
	case errors.Is(err, roster.ErrNotActive):
		return loc.GetString(lang, "not_active")
	case errors.Is(err, roster.ErrInvalidArgument):
		return loc.GetString(lang, "admin_usage")
	default:
		l := logging.L()
		l.Error().Err(err).Msg("roster operation failed")
		return loc.GetString(lang, "internal_error")
	}
}

func actorFrom(u *tgbotapi.User) roster.Actor {
	return roster.Actor{ID: u.ID, DisplayName: displayName(u)}
}

// displayName prefers the user's full name, then the @username, then the ID.
func displayName(u *tgbotapi.User) string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return strconv.FormatInt(u.ID, 10)
}

func languageOf(u *tgbotapi.User) string {
	if u == nil || u.LanguageCode == "" {
		return localization.DefaultLanguage
	}
	return u.LanguageCode
}
