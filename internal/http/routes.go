package http

import (
	"streamhub/internal/config"
	"streamhub/internal/http/handlers"
	"streamhub/internal/http/middleware"
	"streamhub/internal/repository"
	"streamhub/internal/service"
	"streamhub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// Services holds the wired service layer so cmd tools can reuse it without HTTP.
type Services struct {
	Auth     *service.AuthService
	Profile  *service.ProfileService
	Referral *service.ReferralService
	Match    *service.MatchService
	History  *service.HistoryService
	Balance  *service.BalanceService
	Presence *service.PresenceService
	Admin    *service.AdminService
}

// NewServices builds repositories and services on top of the pool. rdb may be nil.
func NewServices(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Services {
	tx := repository.NewTxManager(db)
	users := repository.NewUserRepository(db)
	ledger := repository.NewLedgerRepository(db)
	levelRepo := repository.NewLevelRepository(db)
	planRepo := repository.NewVIPPlanRepository(db)
	live := repository.NewLiveRepository(db)

	audit := service.NewAuditService(repository.NewAuditRepository(db))
	settings := service.NewSettingsService(repository.NewSettingRepository(db), rdb, cfg.SettingsCacheTTL)
	balance := service.NewBalanceService(tx, users, ledger)
	levels := service.NewLevelService(users, levelRepo)
	plans := service.NewPlanService(users, planRepo)

	return &Services{
		Auth:     service.NewAuthService(tx, users, balance, levels, settings, audit),
		Profile:  service.NewProfileService(users, plans, levels, audit),
		Referral: service.NewReferralService(tx, users, balance, settings, audit),
		Match:    service.NewMatchService(users, settings),
		History:  service.NewHistoryService(users, ledger, live, cfg.DisplayLocation),
		Balance:  balance,
		Presence: service.NewPresenceService(tx, users, live),
		Admin: service.NewAdminService(tx, users, balance, plans, levels, settings,
			repository.NewStatsRepository(db), audit),
	}
}

// RegisterRoutes mounts every endpoint and returns the presence hub so the caller can close it on shutdown.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *ws.Hub {
	svc := NewServices(db, rdb, cfg)
	middleware.UseRedis(rdb)

	h := handlers.NewHandler(handlers.Services{
		Accounts:  svc.Auth,
		Profiles:  svc.Profile,
		Referrals: svc.Referral,
		Matcher:   svc.Match,
		History:   svc.History,
		Wallets:   svc.Balance,
		Presence:  svc.Presence,
	})
	admin := handlers.NewAdminHandler(svc.Admin)
	hub := ws.NewHub(svc.Presence)
	healthHandler := handlers.NewHealthHandler(db, repository.NewSchemaRepository(db), rdb, hub, cfg.AppVersion)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg)

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.AdminKey(cfg.AdminSecretKey))
	registerAdminRoutes(adminGroup, admin)

	// presence socket
	r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigins))

	return hub
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)

	// Auth
	api.POST("/auth/signup", authRL, h.Signup)
	api.POST("/auth/login", authRL, h.Login)
	api.POST("/auth/quick", authRL, h.QuickLogin)
	api.GET("/users/check-username", h.CheckUsername)

	user := api.Group("")
	user.Use(middleware.JWT())
	{
		user.GET("/profile", h.Profile)
		user.PATCH("/profile", h.UpdateProfile)
		user.GET("/users/search", h.SearchUsers)
		user.GET("/users/profile", h.UserProfile)
		user.POST("/users/online", h.Online)
		user.GET("/wallet/history", h.PurchaseHistory)
		user.GET("/wallet/balance", h.Balance)
		user.POST("/referral/redeem", middleware.UserRateLimit("referral", cfg.AuthRateLimit, cfg.AuthRateWindow), h.RedeemReferral)
		user.GET("/match", middleware.UserRateLimit("match", cfg.MatchRateLimit, cfg.MatchRateWindow), h.Match)
	}
}

func registerAdminRoutes(g *gin.RouterGroup, a *handlers.AdminHandler) {
	g.GET("/users", a.ListUsers)
	g.PATCH("/users/:id/balance", a.AdjustBalance)
	g.POST("/users/:id/recharge", a.Recharge)
	g.PATCH("/users/:id/block", a.ToggleBlock)
	g.POST("/users/:id/vip", a.GrantVIP)
	g.GET("/users/:id/ledger-check", a.LedgerCheck)
	g.POST("/fake-users", a.CreateFakeUser)
	g.PATCH("/fake-users/:id", a.UpdateFakeUser)

	g.GET("/settings", a.GetSettings)
	g.PUT("/settings", a.UpdateSettings)
	g.GET("/levels", a.ListLevels)
	g.POST("/levels", a.CreateLevel)
	g.GET("/vip-plans", a.ListPlans)
	g.POST("/vip-plans", a.CreatePlan)

	g.GET("/stats", a.Stats)
	g.GET("/audit-logs", a.AuditLogs)
}
