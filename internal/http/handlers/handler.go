package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"streamhub/internal/domain"
	"streamhub/internal/http/middleware"
	"streamhub/internal/logger"
	"streamhub/internal/service"

	"github.com/gin-gonic/gin"
)

const successMessage = "Success!!"

type Accounts interface {
	Signup(ctx context.Context, in service.SignupInput) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	QuickLogin(ctx context.Context, in service.QuickLoginInput) (*service.AuthResult, error)
}

type Profiles interface {
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, in service.ProfileUpdate) (*domain.User, error)
	Search(ctx context.Context, userID int64, value string, start, limit int) ([]*domain.PublicUser, error)
	UserProfile(ctx context.Context, viewerID, profileUserID int64, username string) (*domain.PublicUser, error)
}

type Referrals interface {
	Redeem(ctx context.Context, userID int64, code string) (*domain.User, error)
}

type Matcher interface {
	FindMatch(ctx context.Context, userID int64, gender string) (*domain.MatchUser, bool, error)
}

type Histories interface {
	PurchaseHistory(ctx context.Context, userID int64, page, limit int) (*domain.PurchaseHistory, error)
}

type Wallets interface {
	GetBalance(ctx context.Context, userID int64) (*service.Balances, error)
}

type Presence interface {
	Online(ctx context.Context, userID int64) error
}

// Handler serves the user facing API.
type Handler struct {
	accounts  Accounts
	profiles  Profiles
	referrals Referrals
	matcher   Matcher
	history   Histories
	wallets   Wallets
	presence  Presence
}

type Services struct {
	Accounts  Accounts
	Profiles  Profiles
	Referrals Referrals
	Matcher   Matcher
	History   Histories
	Wallets   Wallets
	Presence  Presence
}

func NewHandler(s Services) *Handler {
	return &Handler{
		accounts:  s.Accounts,
		profiles:  s.Profiles,
		referrals: s.Referrals,
		matcher:   s.Matcher,
		history:   s.History,
		wallets:   s.Wallets,
		presence:  s.Presence,
	}
}

// requireUser reads the id the JWT middleware stored.
func requireUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}

func success(c *gin.Context, body gin.H) {
	out := gin.H{"status": true, "message": successMessage}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(http.StatusOK, out)
}

func failure(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"status": false, "message": message})
}

// respondError answers business errors with their message and hides storage failures.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrConflict):
		failure(c, err.Error())
	default:
		logger.WithContext(c.Request.Context()).Error("request failed",
			"error", err, "method", c.Request.Method, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "internal server error"})
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		failure(c, service.ErrInvalidDetails.Error())
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		failure(c, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	v := c.Query(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		failure(c, "invalid "+name)
		return 0, false
	}
	return n, true
}
