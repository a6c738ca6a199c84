package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const noMatchMessage = "No one is Match !!"

// Match picks a random available partner; ?type= narrows by gender.
func (h *Handler) Match(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	m, found, err := h.matcher.FindMatch(c.Request.Context(), userID, c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"status": false, "message": noMatchMessage, "user": nil})
		return
	}
	success(c, gin.H{"user": m})
}
