package media

import (
	"net/http"
	"strings"
)

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, p string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

// PublicURL rewrites a stored image path into an absolute URL. Nil stays nil.
func PublicURL(base string, stored *string) *string {
	if stored == nil || *stored == "" {
		return nil
	}
	u := JoinURL(base, *stored)
	return &u
}

// BaseURLFromRequest returns scheme://host as seen by the client. Forwarded
// headers are client-controlled, so they are read only when trustProxy is set.
func BaseURLFromRequest(r *http.Request, trustProxy bool) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if trustProxy {
		if strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https") {
			scheme = "https"
		}
		if fwd := firstForwarded(r.Header.Get("X-Forwarded-Host")); fwd != "" {
			host = fwd
		}
	}
	return scheme + "://" + host
}

// firstForwarded keeps the client-most entry of a comma separated header.
func firstForwarded(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.TrimSpace(first)
}
