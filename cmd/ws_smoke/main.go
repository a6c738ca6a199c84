package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"streamhub/internal/db"
	"streamhub/internal/logger"
	"streamhub/internal/repository"
	"streamhub/internal/service"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// Drives a presence socket against a running server and checks the user row after each step.
func main() {
	_ = godotenv.Load()

	userID := flag.Int64("user", 0, "user id to connect as")
	addr := flag.String("addr", "127.0.0.1:"+envOr("APP_PORT", "8080"), "server host:port")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	secret := os.Getenv("JWT_SECRET")
	if dsn == "" || secret == "" || *userID == 0 {
		logger.Fatal("DATABASE_URL, JWT_SECRET and -user are required")
	}
	service.InitJWT(secret, 0)

	pool := db.Connect(dsn)
	defer pool.Close()
	users := repository.NewUserRepository(pool)
	ctx := context.Background()

	token, err := service.GenerateJWT(*userID)
	if err != nil {
		logger.Fatal("gen token", "error", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", *addr, token), nil)
	if err != nil {
		logger.Fatal("dial", "error", err)
	}

	read := func(step string) {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Fatal("read", "step", step, "error", err)
		}
		var env struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(msg, &env)
		logger.Info("received", "step", step, "type", env.Type, "raw", string(msg))
	}
	state := func(step string) {
		u, err := users.GetByID(ctx, *userID)
		if err != nil {
			logger.Fatal("load user", "error", err)
		}
		logger.Info("user state", "step", step, "online", u.IsOnline, "busy", u.IsBusy, "channel", u.Channel)
	}
	send := func(msg string) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			logger.Fatal("write", "error", err)
		}
	}

	read("connect")
	state("connect")

	send(`{"type":"call_start"}`)
	read("call_start")
	state("call_start")

	send(`{"type":"call_end"}`)
	read("call_end")
	state("call_end")

	send(`{"type":"live_start","payload":{"channel":"smoke-channel","token":"smoke-token"}}`)
	read("live_start")
	state("live_start")

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	time.Sleep(500 * time.Millisecond)
	state("disconnect")

	logger.Info("smoke test finished")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
