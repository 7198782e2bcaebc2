// Package handler exposes the bot over HTTP: the health check, the Telegram
// webhook and a small JWT-protected API for roster dashboards.
package handler

import (
	"context"
	"net/http"

	"footybot/backend/internal/roster"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler consumes Telegram updates delivered to the webhook.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// FeedSubscriber streams a chat's roster events.
type FeedSubscriber interface {
	Subscribe(ctx context.Context, chatID int64) (<-chan roster.Event, func() error, error)
}

// Handler holds the collaborators behind the HTTP routes. Bot, Feed and the
// JWT secret are optional; routes that need a missing piece are not mounted.
type Handler struct {
	Bot           UpdateHandler
	Roster        *roster.Coordinator
	Feed          FeedSubscriber
	JWTSecret     []byte
	WebhookSecret string
}

func NewHandler(bot UpdateHandler, coordinator *roster.Coordinator, feed FeedSubscriber, jwtSecret, webhookSecret string) *Handler {
	return &Handler{
		Bot:           bot,
		Roster:        coordinator,
		Feed:          feed,
		JWTSecret:     []byte(jwtSecret),
		WebhookSecret: webhookSecret,
	}
}

// RegisterRoutes mounts every route this Handler can serve.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Health)

	if h.Bot != nil {
		r.POST("/webhook", h.Webhook)
	}

	if len(h.JWTSecret) == 0 || h.Roster == nil {
		return
	}

	api := r.Group("/api", h.AuthMiddleware())
	chats := api.Group("/chats/:chatID")
	chats.GET("/status", h.ChatStatus)
	chats.GET("/teams", h.ChatTeams)
	if h.Feed != nil {
		chats.GET("/feed", h.ServeFeed)
	}
}

// Health reports that the process is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
