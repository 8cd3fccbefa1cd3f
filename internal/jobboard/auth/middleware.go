package auth

import (
	"fmt"
	"net/http"
	"strings"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// HTTPMiddleware attaches the principal of a bearer token to the request
// context. Requests without a token pass through anonymously and the
// services decide whether they need an identity; a token that does not
// verify is rejected.
func HTTPMiddleware(next http.Handler, jwtSecret string, onError ErrorWriter) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, present, err := extractTokenFromHeader(r)
		if err != nil {
			onError(w, r, err)
			return
		}
		if !present {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := validateToken(tokenString, jwtSecret)
		if err != nil {
			onError(w, r, fmt.Errorf("%w: invalid token", e.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func extractTokenFromHeader(r *http.Request) (string, bool, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false, nil
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", true, fmt.Errorf("%w: invalid authorization format", e.ErrUnauthorized)
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return "", true, fmt.Errorf("%w: empty bearer token", e.ErrUnauthorized)
	}
	return tokenString, true, nil
}

// isPublicRequest reports whether the route never looks at the caller.
func isPublicRequest(r *http.Request) bool {
	if r.URL.Path == "/healthz" {
		return true
	}
	if r.Method != http.MethodGet {
		return false
	}
	for _, prefix := range publicReadPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

var publicReadPrefixes = []string{
	"/api/job-offers",
	"/api/users/",
	"/api/candidates",
	"/api/request-job/",
}
