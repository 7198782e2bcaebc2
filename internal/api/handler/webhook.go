package handler

import (
	"crypto/subtle"
	"net/http"

	"footybot/backend/internal/logging"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const headerSecretToken = "X-Telegram-Bot-Api-Secret-Token"

// Webhook accepts an update pushed by Telegram. Telegram only needs a 2xx, so
// the update is handled before replying and malformed bodies are rejected.
func (h *Handler) Webhook(c *gin.Context) {
	if h.WebhookSecret != "" {
		got := c.GetHeader(headerSecretToken)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.WebhookSecret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid secret token"})
			return
		}
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		l := logging.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("malformed webhook update")
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed update"})
		return
	}

	h.Bot.HandleUpdate(c.Request.Context(), update)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
