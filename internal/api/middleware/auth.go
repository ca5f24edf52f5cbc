package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/arjun/vidtube-backend/internal/service"
	"github.com/rs/zerolog/log"
)

type contextKey string

const userKey contextKey = "currentUser"

// Auth is the authentication gate: it verifies the presented access token and
// resolves it to a live, sanitized user record. The token comes from the
// Authorization header, falling back to the accessToken cookie the login
// endpoint sets.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				if cookie, err := r.Cookie("accessToken"); err == nil {
					tokenStr = cookie.Value
				}
			}
			if tokenStr == "" {
				unauthenticated(w, "missing access token")
				return
			}

			userID, err := authService.VerifyAccessToken(tokenStr)
			if err != nil {
				unauthenticated(w, "invalid access token")
				return
			}

			user, err := authService.GetUserByID(r.Context(), userID)
			if err != nil {
				log.Warn().Err(err).Stringer("user_id", userID).Msg("access token resolved to no user")
				unauthenticated(w, "invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user.Sanitized())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the sanitized user the gate resolved for this request.
// It is the only identity downstream handlers may trust.
func CurrentUser(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func unauthenticated(w http.ResponseWriter, message string) {
	appErr := domain.ErrUnauthenticated(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	json.NewEncoder(w).Encode(map[string]any{
		"statusCode": appErr.Status,
		"data":       nil,
		"message":    appErr.Message,
		"success":    false,
	})
}
