package api

import (
	"errors"
	"math"
	"net/http"

	"github.com/andrebq/propdeck/catalog"
	"github.com/andrebq/propdeck/internal/logutil"
)

const (
	// largest integer a JSON number can carry without losing precision
	maxSafeInteger = 1<<53 - 1
)

type (
	propertiesResponse struct {
		OK         bool               `json:"ok"`
		Properties []catalog.Property `json:"properties"`
	}

	favoriteRequest struct {
		PropertyID *float64 `json:"propertyId"`
		Favorite   *bool    `json:"favorite"`
	}
)

// identify writes 401 and returns false when the request has no valid session,
// a missing secret is already logged by the realm.
func (h *handler) identify(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := h.realm.Identity(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	return id, true
}

func (h *handler) listProperties(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identify(w, r)
	if !ok {
		return
	}
	props, err := h.store.ListProperties(r.Context(), userID)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Int64("user", userID).Msg("Unable to list properties")
		writeMessage(w, http.StatusInternalServerError, "Unable to load properties.")
		return
	}
	if props == nil {
		props = []catalog.Property{}
	}
	writeJSON(w, http.StatusOK, propertiesResponse{OK: true, Properties: props})
}

func (h *handler) setFavorite(w http.ResponseWriter, r *http.Request) {
	log := logutil.GetOrDefault(r.Context())
	userID, ok := h.identify(w, r)
	if !ok {
		return
	}
	var req favoriteRequest
	err := readJSON(r, &req)
	if errors.Is(err, errInvalidJSON) {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	propertyID, valid := positiveInteger(req.PropertyID)
	if err != nil || !valid || req.Favorite == nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
		return
	}
	err = h.store.SetFavorite(r.Context(), userID, propertyID, *req.Favorite)
	switch {
	case errors.Is(err, catalog.PropertyNotFound{}):
		writeMessage(w, http.StatusNotFound, "Property not found.")
		return
	case errors.Is(err, catalog.UserNotFound{}):
		log.Warn().Int64("user", userID).Msg("Session refers to a missing user")
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	case err != nil:
		log.Error().Err(err).Int64("user", userID).Int64("property", propertyID).Msg("Unable to update favorite")
		writeMessage(w, http.StatusInternalServerError, "Unable to update favorite.")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func positiveInteger(v *float64) (int64, bool) {
	if v == nil || *v <= 0 || *v > maxSafeInteger || *v != math.Trunc(*v) {
		return 0, false
	}
	return int64(*v), true
}
