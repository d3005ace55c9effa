package httpapi

import (
	"context"
	"net/http"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the trusted identity attached upstream. This core assumes
// authentication already happened; it only consumes the result.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) IsWholesale() bool { return p.Role == "wholesale" }
func (p Principal) IsAdmin() bool     { return p.Role == "admin" }

// PrincipalMiddleware reads the identity headers set by the auth layer in
// front of this service and rejects requests without them.
func PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
			return
		}

		p := Principal{
			UserID: userID,
			Role:   r.Header.Get("X-User-Role"),
		}

		ctx := context.WithValue(r.Context(), principalKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
