package api

import (
	"net/http"
	"strings"

	"github.com/andrebq/propdeck/internal/logutil"
)

var (
	DefaultProtectedPrefixes = []string{"/property"}
)

// Gate rejects requests to any of the protected prefixes that do not carry
// a session cookie. Only presence is checked here, handlers that need the
// identity still call Identity which performs the full verification.
func (s *Realm) Gate(prefixes []string, next http.Handler) http.Handler {
	cleaned := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if len(p) > 0 {
			cleaned = append(cleaned, p)
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if matchesPrefix(cleaned, r.URL.Path) && !hasSessionCookie(r) {
			log := logutil.GetOrDefault(r.Context())
			log.Debug().Str("path", r.URL.Path).Msg("Request without session cookie blocked")
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("Forbidden"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func matchesPrefix(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func hasSessionCookie(r *http.Request) bool {
	val, found := CookieValue(cookieHeader(r), CookieName)
	return found && len(val) > 0
}
