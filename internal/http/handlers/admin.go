package handlers

import (
	"context"
	"strconv"

	"streamhub/internal/domain"
	"streamhub/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminAPI is the set of back office operations.
type AdminAPI interface {
	AdjustBalance(ctx context.Context, userID int64, req service.AdjustRequest) (*domain.User, error)
	Recharge(ctx context.Context, userID, rCoin int64) (*domain.User, error)
	ToggleBlock(ctx context.Context, userID int64) (*domain.User, error)
	GrantVIP(ctx context.Context, userID, planID int64) (*domain.User, error)
	CreateFakeUser(ctx context.Context, in service.FakeUserInput) (*domain.User, error)
	Settings(ctx context.Context) (*domain.Setting, error)
	UpdateSettings(ctx context.Context, st *domain.Setting) (*domain.Setting, error)
	Levels(ctx context.Context) ([]domain.Level, error)
	CreateLevel(ctx context.Context, name string, coin int64, image string) (*domain.Level, error)
	Plans(ctx context.Context) ([]domain.VIPPlan, error)
	CreatePlan(ctx context.Context, name string, validity int, validityType string, priceCoin int64) (*domain.VIPPlan, error)
	CheckLedger(ctx context.Context, userID int64) (*service.LedgerCheck, error)
	GetStats(ctx context.Context) (*domain.Stats, error)
	AuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
	ListUsers(ctx context.Context, in service.UserListInput) (*domain.UserList, error)
	UpdateFakeUser(ctx context.Context, userID int64, in service.FakeUserUpdate) (*domain.User, error)
}

type AdminHandler struct {
	admin AdminAPI
}

func NewAdminHandler(admin AdminAPI) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// AdjustBalance sets r_coin and/or diamond to absolute targets.
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.AdjustRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.admin.AdjustBalance(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}

type rechargeRequest struct {
	RCoin int64 `json:"r_coin"`
}

func (h *AdminHandler) Recharge(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req rechargeRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.admin.Recharge(c.Request.Context(), id, req.RCoin)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}

func (h *AdminHandler) ToggleBlock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.admin.ToggleBlock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}

type grantVIPRequest struct {
	PlanID int64 `json:"plan_id"`
}

func (h *AdminHandler) GrantVIP(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req grantVIPRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.admin.GrantVIP(c.Request.Context(), id, req.PlanID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}

func (h *AdminHandler) CreateFakeUser(c *gin.Context) {
	var req service.FakeUserInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.admin.CreateFakeUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	st, err := h.admin.Settings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"setting": st})
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req domain.Setting
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.admin.UpdateSettings(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"setting": st})
}

func (h *AdminHandler) ListLevels(c *gin.Context) {
	levels, err := h.admin.Levels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"levels": levels})
}

type levelRequest struct {
	Name  string `json:"name"`
	Coin  int64  `json:"coin"`
	Image string `json:"image"`
}

func (h *AdminHandler) CreateLevel(c *gin.Context) {
	var req levelRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.admin.CreateLevel(c.Request.Context(), req.Name, req.Coin, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"level": l})
}

func (h *AdminHandler) ListPlans(c *gin.Context) {
	plans, err := h.admin.Plans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"plans": plans})
}

type planRequest struct {
	Name         string `json:"name"`
	Validity     int    `json:"validity"`
	ValidityType string `json:"validity_type"`
	PriceCoin    int64  `json:"price_coin"`
}

func (h *AdminHandler) CreatePlan(c *gin.Context) {
	var req planRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.admin.CreatePlan(c.Request.Context(), req.Name, req.Validity, req.ValidityType, req.PriceCoin)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"plan": p})
}

// LedgerCheck compares stored balances with the sum of the user's ledger.
func (h *AdminHandler) LedgerCheck(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.admin.CheckLedger(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"ledger": res})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	st, err := h.admin.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"stats": st})
}

// AuditLogs lists recent audit entries, optionally for one user (?user_id=).
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	var userID int64
	if v := c.Query("user_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			failure(c, "invalid user_id")
			return
		}
		userID = n
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	logs, err := h.admin.AuditLogs(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"logs": logs})
}

// ListUsers serves ?search=&type=&start_date=&end_date=&start=&limit=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	start, ok := queryInt(c, "start")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	list, err := h.admin.ListUsers(c.Request.Context(), service.UserListInput{
		Search:    c.Query("search"),
		Type:      c.Query("type"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Start:     start,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{
		"total":       list.Total,
		"active_user": list.ActiveUser,
		"male_female": list.MaleFemale,
		"user":        list.Users,
	})
}

func (h *AdminHandler) UpdateFakeUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.FakeUserUpdate
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.admin.UpdateFakeUser(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"user": u})
}
