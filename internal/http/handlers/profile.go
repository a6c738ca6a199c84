package handlers

import (
	"strconv"

	"streamhub/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Profile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	u, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req service.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.profiles.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}

// SearchUsers matches ?value= against names and usernames, paged by ?start=&limit=.
func (h *Handler) SearchUsers(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	start, ok := queryInt(c, "start")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	users, err := h.profiles.Search(c.Request.Context(), userID, c.Query("value"), start, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": users})
}

// UserProfile looks another user up by ?user_id= or ?username=.
func (h *Handler) UserProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var profileUserID int64
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			failure(c, "invalid user_id")
			return
		}
		profileUserID = id
	}
	u, err := h.profiles.UserProfile(c.Request.Context(), userID, profileUserID, c.Query("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}

// Balance returns the caller's r_coin and diamond balances.
func (h *Handler) Balance(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	b, err := h.wallets.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"r_coin": b.RCoin, "diamond": b.Diamond})
}

// PurchaseHistory returns one page of wallet and live streaming history.
func (h *Handler) PurchaseHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	if page == 0 {
		page = 1
	}

	hist, err := h.history.PurchaseHistory(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"history": hist})
}

// Online marks the caller online and idle.
func (h *Handler) Online(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.presence.Online(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	success(c, nil)
}
