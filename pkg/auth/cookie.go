package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/postoko-backend/pkg/config"
)

// RequestIsSecure reports whether the request reached us over TLS, directly or via a proxy.
func RequestIsSecure(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

// SessionCookie builds the cookie carrying a freshly minted token.
func SessionCookie(cookieCfg config.CookieConfig, jwtCfg config.JWTConfig, token string, tls bool) *http.Cookie {
	c := baseCookie(cookieCfg, tls)
	c.Value = token
	c.MaxAge = int(jwtCfg.TTL() / time.Second)
	return c
}

// ClearSessionCookie expires the session cookie immediately. MaxAge stays zero so
// no Max-Age attribute is emitted.
func ClearSessionCookie(cookieCfg config.CookieConfig, tls bool) *http.Cookie {
	c := baseCookie(cookieCfg, tls)
	c.Value = ""
	c.Expires = time.Unix(0, 0)
	return c
}

// TokenFromRequest returns the session token carried by the request cookie.
func TokenFromRequest(cookieCfg config.CookieConfig, r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName(cookieCfg))
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(c.Value)
	return token, token != ""
}

func baseCookie(cfg config.CookieConfig, tls bool) *http.Cookie {
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     cookieName(cfg),
		Path:     path,
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   cfg.SecureFor(tls),
		SameSite: cfg.SameSiteMode(),
	}
}

func cookieName(cfg config.CookieConfig) string {
	if cfg.Name == "" {
		return "token"
	}
	return cfg.Name
}
