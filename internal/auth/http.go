package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// ErrUnauthenticated is returned when no logged-in principal is present.
var ErrUnauthenticated = errors.New("not logged in")

// Middleware validates the Bearer session token on every request and injects the
// Principal into the request context. Missing, invalid and revoked tokens get 401.
func Middleware(secret string, revoked *Revocations) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := ParseBearer(r.Header.Get("Authorization"), secret)
			if err != nil {
				unauthorized(w, "auth error: "+err.Error())
				return
			}
			if revoked.IsRevoked(p.TokenID) {
				unauthorized(w, "session has been logged out")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequirePrincipal ensures a principal is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return p, nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="bank"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
