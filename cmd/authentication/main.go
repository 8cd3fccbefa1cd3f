// This is a **mock identity provider** that issues JWT tokens for the job
// board, standing in for the real sign-in flow during local development.
package main

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"       // Default port for the authentication service
	defaultSecret = "jwt_secret" // Secret for signing JWT
	tokenTTL      = 24 * time.Hour
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type tokenHandler struct {
	secret string
	logger *zap.Logger
}

// ServeHTTP issues a token for the address in the email query parameter.
// The subject is derived from the address so it is stable across sign-ins.
func (h *tokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if _, err := mail.ParseAddress(email); err != nil {
		http.Error(w, "a valid email query parameter is required", http.StatusBadRequest)
		return
	}

	subject := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
	token, err := auth.GenerateToken(subject, email, h.secret, tokenTTL)
	if err != nil {
		h.logger.Error("Failed to generate token", zap.Error(err))
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	resp := TokenResponse{Token: token, Email: email, ExpiresAt: time.Now().Add(tokenTTL).UTC()}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode token", zap.Error(err))
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = defaultSecret
	}
	port := os.Getenv("AUTH_PORT")
	if port == "" {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.Handle("/token", &tokenHandler{secret: secret, logger: logger.Named("auth")})

	logger.Info("Authentication service running", zap.String("port", port))
	server := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Authentication service failed", zap.Error(err))
	}
}
