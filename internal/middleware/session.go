package middleware

import (
	"net/http"
	"strings"

	"dulce-kart/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// HeaderSessionID identifies a browsing session. It is generated when
	// absent and always echoed back.
	HeaderSessionID = "X-Session-ID"

	// HeaderUserID names the signed-in user, when there is one.
	HeaderUserID = "X-User-ID"

	maxSessionIDLength = 128
)

// Session attaches the caller identity to the request context. Bearer
// tokens are kept so calls to the order service can forward them.
func Session(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(HeaderSessionID))
			if sessionID == "" || len(sessionID) > maxSessionIDLength {
				sessionID = uuid.NewString()
				logger.Debug().Str("session_id", sessionID).Msg("issued new session id")
			}

			id := session.Identity{
				SessionID: sessionID,
				UserID:    strings.TrimSpace(r.Header.Get(HeaderUserID)),
				Token:     bearerToken(r.Header.Get("Authorization")),
			}

			w.Header().Set(HeaderSessionID, sessionID)
			next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
