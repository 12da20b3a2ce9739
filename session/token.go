// Package session issues and authenticates the signed tokens carried by
// the session cookie.
//
// A token is two base64url (unpadded) strings joined by a dot:
//
//	<base64url(claims as JSON)>.<base64url(HMAC-SHA256(first part, secret))>
//
// The dot is not part of the base64url alphabet so splitting is unambiguous.
// The signature is checked before the payload is decoded, and every failure
// (bad shape, bad signature, bad JSON, missing subject) looks the same to the
// caller.
package session

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

const (
	separator = "."
)

var (
	b64 = base64.RawURLEncoding
)

type (
	// Claims carried inside a token. Subject is the only field used
	// for access decisions.
	Claims struct {
		Subject  string
		Email    string
		IssuedAt time.Time
	}

	wireClaims struct {
		Sub   *string `json:"sub"`
		Email *string `json:"email,omitempty"`
		Iat   *int64  `json:"iat,omitempty"`
	}

	// Codec holds the signing secret so callers do not need to pass it around
	Codec struct {
		secret []byte
	}
)

// NewCodec returns ErrMissingSecret if secret is empty
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	c := &Codec{secret: make([]byte, len(secret))}
	copy(c.secret, secret)
	return c, nil
}

func (c *Codec) Issue(claims Claims) (string, error) {
	return Issue(claims, c.secret)
}

func (c *Codec) Authenticate(token string) (Claims, bool) {
	return Authenticate(token, c.secret)
}

// Issue signs claims with secret and returns the compact token.
func Issue(claims Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if len(claims.Subject) == 0 {
		return "", ErrInvalidClaims
	}
	wc := wireClaims{Sub: &claims.Subject}
	if claims.Email != "" {
		wc.Email = &claims.Email
	}
	if !claims.IssuedAt.IsZero() {
		ms := claims.IssuedAt.UnixMilli()
		wc.Iat = &ms
	}
	payload, err := json.Marshal(wc)
	if err != nil {
		return "", err
	}
	encoded := b64.EncodeToString(payload)
	return encoded + separator + sign(encoded, secret), nil
}

// Authenticate returns the claims inside token if, and only if, its signature
// matches secret and the payload is well formed.
func Authenticate(token string, secret []byte) (Claims, bool) {
	if len(secret) == 0 {
		return Claims{}, false
	}
	parts := strings.Split(token, separator)
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return Claims{}, false
	}
	expected := sign(parts[0], secret)
	if !hmac.Equal([]byte(parts[1]), []byte(expected)) {
		return Claims{}, false
	}
	return decodeClaims(parts[0])
}

func decodeClaims(encoded string) (Claims, bool) {
	payload, err := b64.DecodeString(encoded)
	if err != nil {
		return Claims{}, false
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || payload[0] != '{' {
		return Claims{}, false
	}
	var wc wireClaims
	if err := json.Unmarshal(payload, &wc); err != nil {
		return Claims{}, false
	}
	if wc.Sub == nil || len(*wc.Sub) == 0 {
		return Claims{}, false
	}
	c := Claims{Subject: *wc.Sub}
	if wc.Email != nil {
		c.Email = *wc.Email
	}
	if wc.Iat != nil {
		c.IssuedAt = time.UnixMilli(*wc.Iat).UTC()
	}
	return c, true
}

func sign(encoded string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(encoded))
	return b64.EncodeToString(mac.Sum(nil))
}
