package main

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultInviteTTL = 24 * time.Hour

type Config struct {
	Port           string
	AllowedOrigins []string
	InviteSecret   string
	InviteTTL      time.Duration
}

func MustLoadConfig() *Config {
	godotenv.Load()
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	origins := []string{"http://localhost:*", "http://127.0.0.1:*"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}
	secret := os.Getenv("INVITE_SECRET")
	if secret == "" {
		// Invite links only outlive what the room table outlives, so a
		// per-process secret is enough when none is configured.
		secret = randomSecret()
	}
	ttl := defaultInviteTTL
	if raw := os.Getenv("INVITE_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			panic("INVITE_TTL is not a valid duration: " + raw)
		}
		ttl = parsed
	}
	return &Config{port, origins, secret, ttl}
}

func randomSecret() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
