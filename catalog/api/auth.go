package api

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf16"

	"github.com/andrebq/propdeck/catalog"
	"github.com/andrebq/propdeck/internal/logutil"
)

const (
	minSignupPassword = 8
	fallbackUserName  = "User"
)

type (
	signupRequest struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}

	signupResponse struct {
		OK    bool   `json:"ok"`
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}

	loginRequest struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Remember *bool   `json:"remember"`
	}
)

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	log := logutil.GetOrDefault(r.Context())
	var req signupRequest
	err := readJSON(r, &req)
	if errors.Is(err, errInvalidJSON) {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	email, ok := normalizeEmail(req.Email)
	if err != nil || !ok || req.Password == nil || passwordLength(*req.Password) < minSignupPassword {
		writeMessage(w, http.StatusBadRequest, "Please provide a valid email and password.")
		return
	}
	hash, err := h.hasher.Hash(*req.Password)
	if err != nil {
		log.Error().Err(err).Msg("Unable to hash password")
		writeMessage(w, http.StatusInternalServerError, "Unable to create account.")
		return
	}
	id, err := h.store.CreateUser(r.Context(), nameFromEmail(email), email, hash)
	if errors.Is(err, catalog.ErrEmailTaken) {
		writeMessage(w, http.StatusConflict, "Email already in use.")
		return
	} else if err != nil {
		log.Error().Err(err).Msg("Signup error")
		writeMessage(w, http.StatusInternalServerError, "Unable to create account.")
		return
	}
	if err := h.realm.Attach(w, id, email, true); err != nil {
		log.Error().Err(err).Int64("user", id).Msg("Account created without a session")
	}
	writeJSON(w, http.StatusCreated, signupResponse{OK: true, ID: id, Email: email})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	log := logutil.GetOrDefault(r.Context())
	var req loginRequest
	err := readJSON(r, &req)
	if errors.Is(err, errInvalidJSON) {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	email, ok := normalizeEmail(req.Email)
	if err != nil || !ok || req.Password == nil || len(*req.Password) == 0 {
		writeMessage(w, http.StatusBadRequest, "Please provide a valid email and password.")
		return
	}
	remember := true
	if req.Remember != nil {
		remember = *req.Remember
	}

	user, err := h.store.FindUserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, catalog.UserNotFound{}) {
		log.Error().Err(err).Msg("Login error")
	}
	if err != nil || !h.hasher.Verify(*req.Password, user.PasswordHash) {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	if err := h.realm.Attach(w, user.ID, email, remember); err != nil {
		log.Error().Err(err).Int64("user", user.ID).Msg("Login accepted without a session")
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	h.realm.Clear(w)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// normalizeEmail trims and lowercases the address, it must be a bare
// address (no display name) with a dotted domain.
func normalizeEmail(raw *string) (string, bool) {
	if raw == nil {
		return "", false
	}
	email := strings.ToLower(strings.TrimSpace(*raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", false
	}
	_, domain, _ := strings.Cut(email, "@")
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", false
	}
	return email, true
}

// passwordLength counts UTF-16 code units, so characters outside the BMP
// (most emoji) count twice.
func passwordLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.TrimSpace(local)
	if len(local) == 0 {
		return fallbackUserName
	}
	return local
}
