package api

import (
	"strconv"
	"strings"

	"github.com/andrebq/propdeck/session"
)

const (
	CookieName = "cp_session"

	// 30 days
	RememberMaxAge = 60 * 60 * 24 * 30
)

// CookieValue extracts name from a raw Cookie header.
//
// Pairs are separated by ';', keys are compared as-is (case-sensitive) and
// values are returned without any unquoting or decoding. Only the first '='
// splits key from value so values may contain '='.
func CookieValue(header, name string) (string, bool) {
	if len(header) == 0 {
		return "", false
	}
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")
		if key == name {
			return value, true
		}
	}
	return "", false
}

// ResolveIdentity returns the user id stored in the session cookie of header.
//
// Any problem (no header, no cookie, bad token, subject not a positive integer)
// is reported as false, there is no way for the caller to know which check failed.
func ResolveIdentity(header string, codec *session.Codec) (int64, bool) {
	if codec == nil {
		return 0, false
	}
	token, found := CookieValue(header, CookieName)
	if !found || len(token) == 0 {
		return 0, false
	}
	claims, ok := codec.Authenticate(token)
	if !ok {
		return 0, false
	}
	return parseSubject(claims.Subject)
}

func parseSubject(sub string) (int64, bool) {
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
