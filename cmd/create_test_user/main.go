package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"streamhub/internal/config"
	"streamhub/internal/db"
	httpServer "streamhub/internal/http"
	"streamhub/internal/logger"
	"streamhub/internal/service"
)

// Seeds a user (or logs in an existing one) and prints a JWT for manual testing.
func main() {
	username := flag.String("username", "testuser", "username")
	email := flag.String("email", "testuser@example.com", "email")
	password := flag.String("password", "password123", "password")
	gender := flag.String("gender", "male", "gender")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	svc := httpServer.NewServices(pool, nil, cfg)
	ctx := context.Background()

	res, err := svc.Auth.Signup(ctx, service.SignupInput{
		Username: *username,
		Email:    *email,
		Password: *password,
		Name:     *username,
		Gender:   *gender,
	})
	if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) {
		logger.Info("user already exists, logging in", "email", *email)
		res, err = svc.Auth.Login(ctx, service.LoginInput{Email: *email, Password: *password})
	}
	if err != nil {
		logger.Fatal("seed user failed", "error", err)
	}

	u := res.User
	logger.Info("user ready", "id", u.ID, "username", u.Username, "referral_code", u.ReferralCode,
		"diamond", u.Diamond, "r_coin", u.RCoin)
	fmt.Println(res.Token)
}
