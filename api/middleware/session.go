package middleware

import (
	"context"
	"net/http"

	"github.com/toolyhq/tooly-storefront/pkg/config"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
	"github.com/toolyhq/tooly-storefront/pkg/session"
)

type sessionToucher interface {
	Touch(ctx context.Context, sessionID string) error
}

// Session attaches a storefront session id to every request, minting one and
// setting the cookie when the browser has none yet. The id is opaque: the
// backend order token it maps to never leaves the server.
func Session(cfg config.SessionConfig, sessions sessionToucher, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil && cookie.Value != "" {
				sessionID = cookie.Value
			}

			if sessionID == "" {
				sessionID = session.NewSessionID()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			} else if sessions != nil {
				// sliding expiry on the backend token mapping
				_ = sessions.Touch(r.Context(), sessionID)
			}

			ctx := session.WithID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
