package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gartstein/jobboard/internal/jobboard/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTokenHandler(t *testing.T) {
	h := &tokenHandler{secret: "secret", logger: zaptest.NewLogger(t)}

	t.Run("issues a token for the email", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?email=HR@Acme.test", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp TokenResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "hr@acme.test", resp.Email)

		claims := &auth.Claims{}
		_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("secret"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "hr@acme.test", claims.Email)
		assert.NotEmpty(t, claims.Subject)
	})

	t.Run("subject is stable per email", func(t *testing.T) {
		subject := func() string {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?email=amel@example.com", nil))
			var resp TokenResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			claims := &auth.Claims{}
			_, _, err := jwt.NewParser().ParseUnverified(resp.Token, claims)
			require.NoError(t, err)
			return claims.Subject
		}
		assert.Equal(t, subject(), subject())
	})

	t.Run("rejects a missing email", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
