package telegram

import (
	"context"
	"fmt"
	"strings"

	"footybot/backend/internal/roster"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatMemberGetter is the part of *tgbotapi.BotAPI used for role lookups.
type ChatMemberGetter interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// MemberRoleLookup asks Telegram for a user's status in a group.
type MemberRoleLookup struct {
	api ChatMemberGetter
}

func NewMemberRoleLookup(api ChatMemberGetter) *MemberRoleLookup {
	return &MemberRoleLookup{api: api}
}

type memberResult struct {
	member tgbotapi.ChatMember
	err    error
}

// LookupRole implements roster.RoleLookup. The Bot API client takes no
// context, so the call runs on its own goroutine and LookupRole gives up when
// ctx ends.
func (m *MemberRoleLookup) LookupRole(ctx context.Context, chatID, userID int64) (roster.Role, error) {
	var cfg tgbotapi.GetChatMemberConfig
	cfg.ChatID = chatID
	cfg.UserID = userID

	done := make(chan memberResult, 1)
	go func() {
		member, err := m.api.GetChatMember(cfg)
		done <- memberResult{member: member, err: err}
	}()

	select {
	case <-ctx.Done():
		return roster.RoleUnknown, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return roster.RoleUnknown, fmt.Errorf("getChatMember %d/%d: %w", chatID, userID, res.err)
		}
		return roleFromStatus(res.member.Status), nil
	}
}

func roleFromStatus(status string) roster.Role {
	switch status {
	case "creator":
		return roster.RoleOwner
	case "administrator":
		return roster.RoleAdministrator
	default:
		return roster.RoleMember
	}
}

// APIRequester is the part of *tgbotapi.BotAPI used for raw Bot API calls.
type APIRequester interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// WebhookPath is where Telegram delivers updates in webhook mode.
const WebhookPath = "/webhook"

// RegisterWebhook points Telegram at baseURL+WebhookPath. A non-empty secret
// is sent back by Telegram in the X-Telegram-Bot-Api-Secret-Token header.
// Telegram is limited to one in-flight delivery so updates reach HandleUpdate
// in order.
func RegisterWebhook(api APIRequester, baseURL, secret string) error {
	params := tgbotapi.Params{
		"url":             strings.TrimRight(baseURL, "/") + WebhookPath,
		"max_connections": "1",
	}
	params.AddNonEmpty("secret_token", secret)

	resp, err := api.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("failed to register webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("failed to register webhook: %s", resp.Description)
	}
	return nil
}

// DeleteWebhook switches the bot back to long polling.
func DeleteWebhook(api APIRequester) error {
	resp, err := api.MakeRequest("deleteWebhook", tgbotapi.Params{})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("failed to delete webhook: %s", resp.Description)
	}
	return nil
}
