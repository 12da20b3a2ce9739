package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andrebq/propdeck/internal/logutil"
	"github.com/andrebq/propdeck/session"
)

type (
	// Realm is the HTTP side of sessions: it reads identities from requests
	// and writes the session cookie on responses.
	Realm struct {
		codec        *session.Codec
		secureCookie bool
		now          func() time.Time
	}
)

var (
	// ErrNoSession covers every reason a request is not authenticated
	ErrNoSession = errors.New("no valid session")
)

// NewRealm returns a realm signing with codec. A nil codec is accepted
// and makes every session operation fail with session.ErrMissingSecret.
func NewRealm(codec *session.Codec, secureCookie bool) *Realm {
	return &Realm{
		codec:        codec,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

// WithClock replaces the time source used for the iat claim
func (s *Realm) WithClock(now func() time.Time) *Realm {
	s.now = now
	return s
}

// Identity returns the user id of the authenticated request,
// ErrNoSession or session.ErrMissingSecret.
func (s *Realm) Identity(r *http.Request) (int64, error) {
	if s.codec == nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(session.ErrMissingSecret).Msg("Cannot authenticate request")
		return 0, session.ErrMissingSecret
	}
	id, ok := ResolveIdentity(cookieHeader(r), s.codec)
	if !ok {
		return 0, ErrNoSession
	}
	return id, nil
}

// Attach issues a token for id and sets it as the session cookie.
// When remember is false the cookie has no Max-Age and dies with the browser session.
func (s *Realm) Attach(w http.ResponseWriter, id int64, email string, remember bool) error {
	if s.codec == nil {
		return session.ErrMissingSecret
	}
	token, err := s.codec.Issue(session.Claims{
		Subject:  strconv.FormatInt(id, 10),
		Email:    email,
		IssuedAt: s.now(),
	})
	if err != nil {
		return err
	}
	c := s.cookie(token)
	if remember {
		c.MaxAge = RememberMaxAge
	}
	http.SetCookie(w, c)
	return nil
}

// Clear tells the client to drop the session cookie
func (s *Realm) Clear(w http.ResponseWriter) {
	c := s.cookie("")
	// net/http renders negative values as Max-Age=0
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func (s *Realm) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookieHeader(r *http.Request) string {
	return strings.Join(r.Header.Values("Cookie"), "; ")
}
