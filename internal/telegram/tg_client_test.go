package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"footybot/backend/internal/roster"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemberGetter struct {
	statuses map[int64]string
	delay    time.Duration
	err      error
	got      []tgbotapi.GetChatMemberConfig
}

func (f *fakeMemberGetter) GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	f.got = append(f.got, cfg)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return tgbotapi.ChatMember{}, f.err
	}
	return tgbotapi.ChatMember{Status: f.statuses[cfg.UserID]}, nil
}

func TestMemberRoleLookup_MapsStatuses(t *testing.T) {
	getter := &fakeMemberGetter{statuses: map[int64]string{
		1: "creator",
		2: "administrator",
		3: "member",
		4: "restricted",
		5: "left",
	}}
	lookup := NewMemberRoleLookup(getter)

	want := map[int64]roster.Role{
		1: roster.RoleOwner,
		2: roster.RoleAdministrator,
		3: roster.RoleMember,
		4: roster.RoleMember,
		5: roster.RoleMember,
	}
	for userID, role := range want {
		got, err := lookup.LookupRole(context.Background(), -100, userID)
		require.NoError(t, err)
		assert.Equal(t, role, got, "user %d", userID)
	}
	require.NotEmpty(t, getter.got)
	assert.Equal(t, int64(-100), getter.got[0].ChatID)
}

func TestMemberRoleLookup_Error(t *testing.T) {
	lookup := NewMemberRoleLookup(&fakeMemberGetter{err: errors.New("Bad Request: user not found")})

	role, err := lookup.LookupRole(context.Background(), -100, 1)

	assert.Error(t, err)
	assert.Equal(t, roster.RoleUnknown, role)
}

func TestMemberRoleLookup_GivesUpOnDeadline(t *testing.T) {
	lookup := NewMemberRoleLookup(&fakeMemberGetter{delay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	role, err := lookup.LookupRole(ctx, -100, 1)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, roster.RoleUnknown, role)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

type fakeRequester struct {
	endpoint string
	params   tgbotapi.Params
	resp     *tgbotapi.APIResponse
	err      error
}

func (f *fakeRequester) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	f.endpoint = endpoint
	f.params = params
	return f.resp, f.err
}

func TestRegisterWebhook(t *testing.T) {
	api := &fakeRequester{resp: &tgbotapi.APIResponse{Ok: true}}

	require.NoError(t, RegisterWebhook(api, "https://bot.example.com/", "s3cret"))

	assert.Equal(t, "setWebhook", api.endpoint)
	assert.Equal(t, "https://bot.example.com/webhook", api.params["url"])
	assert.Equal(t, "s3cret", api.params["secret_token"])
	assert.Equal(t, "1", api.params["max_connections"])
}

func TestRegisterWebhook_NoSecret(t *testing.T) {
	api := &fakeRequester{resp: &tgbotapi.APIResponse{Ok: true}}

	require.NoError(t, RegisterWebhook(api, "https://bot.example.com", ""))

	_, hasSecret := api.params["secret_token"]
	assert.False(t, hasSecret)
}

func TestRegisterWebhook_Failures(t *testing.T) {
	assert.Error(t, RegisterWebhook(&fakeRequester{err: errors.New("timeout")}, "https://x", ""))
	assert.Error(t, RegisterWebhook(&fakeRequester{resp: &tgbotapi.APIResponse{Ok: false, Description: "bad url"}}, "https://x", ""))
}

func TestDeleteWebhook(t *testing.T) {
	api := &fakeRequester{resp: &tgbotapi.APIResponse{Ok: true}}

	require.NoError(t, DeleteWebhook(api))
	assert.Equal(t, "deleteWebhook", api.endpoint)
}
