package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

func (a *App) chatMessage(c *gin.Context) {
	var payload chatRequest
	if !mustJSON(c, &payload) {
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		writeError(c, http.StatusBadRequest, "message is required")
		return
	}

	actor, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	username, err := targetUsername(actor, payload.Username)
	if err != nil {
		writeError(c, http.StatusForbidden, accessDeniedDetail)
		return
	}

	reply, err := a.chat.Chat(c.Request.Context(), username, payload.Message)
	if err != nil {
		a.log.WithUser(username).WithError(err).Error("chat failed")
		writeError(c, http.StatusInternalServerError, "Failed to answer message")
		return
	}
	c.JSON(http.StatusOK, reply)
}
