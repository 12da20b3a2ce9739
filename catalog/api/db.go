package api

import (
	"crypto/subtle"
	"math"
	"net/http"
	"strconv"

	"github.com/andrebq/propdeck/internal/logutil"
	"github.com/andrebq/propdeck/seed"
)

const (
	seedSecretHeader = "x-seed-secret"
	maxSeedRows      = 1000
)

type (
	seedFailure struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}

	seedSample struct {
		Emails   []string `json:"emails"`
		Password string   `json:"password"`
	}

	seedResponse struct {
		OK       bool       `json:"ok"`
		Inserted int        `json:"inserted"`
		Total    int64      `json:"total"`
		Table    string     `json:"table"`
		Sample   seedSample `json:"sample"`
	}
)

func (h *handler) ping(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Ping(r.Context())
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Warn().Err(err).Msg("Database ping failed")
	}
	writeJSON(w, http.StatusOK, okResponse{OK: ok})
}

func (h *handler) seed(w http.ResponseWriter, r *http.Request) {
	log := logutil.GetOrDefault(r.Context())
	if len(h.opts.SeedSecret) == 0 {
		writeJSON(w, http.StatusInternalServerError, seedFailure{Error: "Missing SEED_SECRET env var"})
		return
	}
	query := r.URL.Query()
	provided := query.Get("secret")
	if values := r.Header.Values(seedSecretHeader); len(values) > 0 {
		provided = values[0]
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.opts.SeedSecret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, seedFailure{Error: "Unauthorized"})
		return
	}

	report, err := seed.Run(r.Context(), h.store, h.opts.Fixtures, seed.Options{
		Rows:     seedRows(query.Get("rows")),
		Reset:    query.Get("reset") == "1",
		Password: h.opts.SeedPassword,
		Cost:     h.hasher.Cost,
	})
	if err != nil {
		log.Error().Err(err).Msg("Seed failed")
		writeJSON(w, http.StatusInternalServerError, seedFailure{Error: "Seed failed"})
		return
	}
	emails := report.Emails
	if emails == nil {
		emails = []string{}
	}
	writeJSON(w, http.StatusOK, seedResponse{
		OK:       true,
		Inserted: report.Inserted,
		Total:    report.Total,
		Table:    "users",
		Sample:   seedSample{Emails: emails, Password: report.Password},
	})
}

// seedRows parses the rows parameter, anything that is not a positive
// number falls back to seed.DefaultRows, fractions are truncated.
func seedRows(raw string) int {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 1 {
		return seed.DefaultRows
	}
	if n > maxSeedRows {
		return maxSeedRows
	}
	return int(n)
}
