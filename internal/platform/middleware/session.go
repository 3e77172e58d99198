package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"rinkside/internal/session"
	"rinkside/pkg/domain"
)

// SessionCookie is the cookie carrying the capability token for browser callers.
const SessionCookie = "rinkside_session"

// CapabilityValidator checks a token's signature and expiry.
type CapabilityValidator interface {
	Validate(tokenString string) (*session.Capability, error)
}

// KeyChecker reports whether the credential a capability was minted against
// is still active. Rotation and tenant deletion flip this to false, which
// revokes every outstanding capability bound to that credential.
type KeyChecker interface {
	IsActive(ctx context.Context, keyID domain.KeyID) (bool, error)
}

type contextKeyCapability struct{}

// GetCapability retrieves the authenticated capability from the context.
// It returns nil on requests that did not pass RequireSession.
func GetCapability(ctx context.Context) *session.Capability {
	cap, ok := ctx.Value(contextKeyCapability{}).(*session.Capability)
	if !ok {
		return nil
	}
	return cap
}

// RequireSession authenticates a request from its capability token, taken
// from the session cookie or a Bearer Authorization header. The bound
// credential must still be active.
func RequireSession(validator CapabilityValidator, keys KeyChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := tokenFromRequest(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing session",
					"request_id", GetRequestID(ctx),
				)
				writeGuardError(w, http.StatusUnauthorized, "unauthorized", "Missing session")
				return
			}

			cap, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeGuardError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired session")
				return
			}

			active, err := keys.IsActive(ctx, cap.KeyID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to check credential status",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeGuardError(w, http.StatusInternalServerError, "internal_error", "Failed to validate session")
				return
			}
			if !active {
				logger.WarnContext(ctx, "unauthorized access - credential no longer active",
					"key_id", cap.KeyID.String(),
					"request_id", GetRequestID(ctx),
				)
				writeGuardError(w, http.StatusUnauthorized, "unauthorized", "Session has been revoked")
				return
			}

			ctx = context.WithValue(ctx, contextKeyCapability{}, cap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCoach rejects authenticated requests whose capability carries the
// player role. It must run after RequireSession.
func RequireCoach(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			cap := GetCapability(ctx)
			if cap == nil {
				writeGuardError(w, http.StatusUnauthorized, "unauthorized", "Missing session")
				return
			}
			if cap.Role != domain.RoleCoach {
				logger.WarnContext(ctx, "forbidden - coach role required",
					"role", cap.Role.String(),
					"team_id", cap.TeamID.String(),
					"request_id", GetRequestID(ctx),
				)
				writeGuardError(w, http.StatusForbidden, "forbidden", "Coach role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	const bearerPrefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
		return after
	}
	return ""
}

func writeGuardError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `","error_description":"` + description + `"}`))
}
