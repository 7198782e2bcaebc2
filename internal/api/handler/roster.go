package handler

import (
	"errors"
	"net/http"
	"strconv"

	"footybot/backend/internal/models"
	"footybot/backend/internal/roster"

	"github.com/gin-gonic/gin"
)

// StatusResponse is the JSON body of GET /api/chats/:chatID/status.
type StatusResponse struct {
	ChatID int64    `json:"chat_id"`
	Active bool     `json:"active"`
	In     []string `json:"in"`
	Out    []string `json:"out"`
}

// TeamsResponse is the JSON body of GET /api/chats/:chatID/teams.
type TeamsResponse struct {
	ChatID int64         `json:"chat_id"`
	Teams  []models.Team `json:"teams"`
}

// ChatStatus returns the chat's round state.
func (h *Handler) ChatStatus(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	status, err := h.Roster.QueryStatus(c.Request.Context(), chatID, h.actor(c))
	if err != nil {
		abortRosterError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{
		ChatID: chatID,
		Active: status.Active,
		In:     nonNil(status.In),
		Out:    nonNil(status.Out),
	})
}

// ChatTeams returns the teams announced at the chat's last close.
func (h *Handler) ChatTeams(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	teams, err := h.Roster.LastTeams(c.Request.Context(), chatID, h.actor(c))
	if err != nil {
		abortRosterError(c, err)
		return
	}
	if teams == nil {
		teams = []models.Team{}
	}
	c.JSON(http.StatusOK, TeamsResponse{ChatID: chatID, Teams: teams})
}

func (h *Handler) actor(c *gin.Context) roster.Actor {
	return roster.Actor{ID: userIDFrom(c)}
}

func chatIDParam(c *gin.Context) (int64, bool) {
	chatID, err := strconv.ParseInt(c.Param("chatID"), 10, 64)
	if err != nil || chatID == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return 0, false
	}
	return chatID, true
}

func abortRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, roster.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin rights required"})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
