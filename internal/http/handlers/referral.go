package handlers

import (
	"github.com/gin-gonic/gin"
)

type redeemRequest struct {
	Code string `json:"code"`
}

func (h *Handler) RedeemReferral(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req redeemRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.referrals.Redeem(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}
