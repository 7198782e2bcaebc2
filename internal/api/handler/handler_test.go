package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"footybot/backend/internal/api/handler"
	"footybot/backend/internal/models"
	"footybot/backend/internal/roster"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret          = "test-secret"
	chat      int64 = -1001
	adminUser int64 = 1
)

type recordingBot struct {
	mu      sync.Mutex
	updates []tgbotapi.Update
}

func (b *recordingBot) HandleUpdate(_ context.Context, update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, update)
}

type fakeFeed struct {
	events chan roster.Event
	closed chan struct{}
	chatID int64
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{events: make(chan roster.Event, 1), closed: make(chan struct{})}
}

func (f *fakeFeed) Subscribe(_ context.Context, chatID int64) (<-chan roster.Event, func() error, error) {
	f.chatID = chatID
	return f.events, func() error { close(f.closed); return nil }, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T, bot handler.UpdateHandler, feed handler.FeedSubscriber, jwtSecret, webhookSecret string) (*gin.Engine, *roster.Coordinator) {
	t.Helper()
	store := roster.NewStore([]int64{adminUser})
	coordinator := roster.NewCoordinator(store, roster.NewPartitioner(6, nil))

	r := gin.New()
	handler.NewHandler(bot, coordinator, feed, jwtSecret, webhookSecret).RegisterRoutes(r)
	return r, coordinator
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := handler.GenerateToken([]byte(secret), userID, time.Hour)
	require.NoError(t, err)
	return tok
}

func get(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := setup(t, nil, nil, "", "")

	w := get(r, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestWebhook(t *testing.T) {
	bot := &recordingBot{}
	r, _ := setup(t, bot, nil, "", "hook-secret")

	post := func(body, secretHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if secretHeader != "" {
			req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secretHeader)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	update := `{"update_id": 77, "message": {"message_id": 1, "date": 0, "text": "/in", "chat": {"id": -1001, "type": "group"}}}`

	assert.Equal(t, http.StatusUnauthorized, post(update, "").Code)
	assert.Equal(t, http.StatusUnauthorized, post(update, "wrong").Code)
	assert.Equal(t, http.StatusBadRequest, post(`{not json`, "hook-secret").Code)
	assert.Equal(t, http.StatusOK, post(update, "hook-secret").Code)

	require.Len(t, bot.updates, 1)
	assert.Equal(t, 77, bot.updates[0].UpdateID)
	require.NotNil(t, bot.updates[0].Message)
	assert.Equal(t, "/in", bot.updates[0].Message.Text)
}

func TestWebhook_NotMountedWithoutBot(t *testing.T) {
	r, _ := setup(t, nil, nil, "", "")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToken_RoundTrip(t *testing.T) {
	tok := token(t, 123456789012)

	userID, err := handler.ParseToken([]byte(secret), tok)

	require.NoError(t, err)
	assert.Equal(t, int64(123456789012), userID)
}

func TestToken_Rejected(t *testing.T) {
	expired, err := handler.GenerateToken([]byte(secret), 5, -time.Minute)
	require.NoError(t, err)

	otherIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 5,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iss":     "someone-else",
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
		"iss": handler.Issuer,
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := map[string]struct {
		secret string
		token  string
	}{
		"expired":      {secret, expired},
		"wrong secret": {"other", token(t, 5)},
		"wrong issuer": {secret, otherIssuer},
		"missing user": {secret, noUser},
		"not a jwt":    {secret, "abc.def.ghi"},
		"empty":        {secret, ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := handler.ParseToken([]byte(tt.secret), tt.token)
			assert.ErrorIs(t, err, handler.ErrInvalidToken)
		})
	}
}

func TestChatStatus(t *testing.T) {
	r, coordinator := setup(t, nil, nil, secret, "")
	ctx := context.Background()
	admin := roster.Actor{ID: adminUser, DisplayName: "Admin"}
	require.NoError(t, coordinator.OpenSelection(ctx, chat, admin))
	_, err := coordinator.MarkPresence(ctx, chat, roster.Actor{ID: 10, DisplayName: "Ann"}, models.PresenceIn)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/chats/-1001/status", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/chats/-1001/status", "garbage").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/api/chats/-1001/status", token(t, 10)).Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/chats/abc/status", token(t, adminUser)).Code)

	w := get(r, "/api/chats/-1001/status", token(t, adminUser))
	require.Equal(t, http.StatusOK, w.Code)
	var body handler.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, handler.StatusResponse{ChatID: chat, Active: true, In: []string{"Ann"}, Out: []string{}}, body)
}

func TestChatTeams(t *testing.T) {
	r, coordinator := setup(t, nil, nil, secret, "")
	ctx := context.Background()
	admin := roster.Actor{ID: adminUser, DisplayName: "Admin"}

	w := get(r, "/api/chats/-1001/teams", token(t, adminUser))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"chat_id": -1001, "teams": []}`, w.Body.String())

	require.NoError(t, coordinator.OpenSelection(ctx, chat, admin))
	for id := int64(10); id < 17; id++ {
		_, err := coordinator.MarkPresence(ctx, chat, roster.Actor{ID: id, DisplayName: "P"}, models.PresenceIn)
		require.NoError(t, err)
	}
	_, err := coordinator.CloseSelection(ctx, chat, admin)
	require.NoError(t, err)

	w = get(r, "/api/chats/-1001/teams", token(t, adminUser))
	require.Equal(t, http.StatusOK, w.Code)
	var body handler.TeamsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Teams, 2)
	assert.Len(t, body.Teams[0].Members, 6)
	assert.Len(t, body.Teams[1].Members, 1)
}

func TestAPI_NotMountedWithoutSecret(t *testing.T) {
	r, _ := setup(t, nil, nil, "", "")

	assert.Equal(t, http.StatusNotFound, get(r, "/api/chats/-1001/status", "").Code)
}

func TestServeFeed(t *testing.T) {
	feed := newFakeFeed()
	r, _ := setup(t, nil, feed, secret, "")
	srv := httptest.NewServer(r)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chats/-1001/feed?token="

	_, resp, err := websocket.DefaultDialer.Dial(base+token(t, 10), nil)
	require.Error(t, err, "non-admins must not get a feed")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+token(t, adminUser), nil)
	require.NoError(t, err)

	feed.events <- roster.Event{Type: roster.EventPresenceMarked, ChatID: chat, ActorID: 10, InCount: 3}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got roster.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, roster.EventPresenceMarked, got.Type)
	assert.Equal(t, 3, got.InCount)
	assert.Equal(t, chat, feed.chatID)

	conn.Close()
	select {
	case <-feed.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not released after the client left")
	}
}
