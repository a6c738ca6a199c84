package handlers

import (
	"streamhub/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.accounts.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": res.User, "token": res.Token})
}

func (h *Handler) Login(c *gin.Context) {
	var req service.LoginInput
	if !bindJSON(c, &req) {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	res, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": res.User, "token": res.Token})
}

// QuickLogin signs in or creates a device-bound account.
func (h *Handler) QuickLogin(c *gin.Context) {
	var req service.QuickLoginInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.accounts.QuickLogin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": res.User, "token": res.Token})
}

// CheckUsername answers status true when the username is free.
func (h *Handler) CheckUsername(c *gin.Context) {
	ok, err := h.accounts.UsernameAvailable(c.Request.Context(), c.Query("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		failure(c, service.ErrUsernameTaken.Error())
		return
	}
	success(c, nil)
}
