package auth

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
)

// NewSessionStore is the signed cookie store used by the Google OAuth flow.
func NewSessionStore(cfg configs.SessionConfig, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
	return store
}
