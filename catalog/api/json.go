package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

const (
	maxBodySize = 64 << 10
)

type (
	message struct {
		Message string `json:"message"`
	}

	okResponse struct {
		OK bool `json:"ok"`
	}
)

var (
	errInvalidJSON = errors.New("invalid json body")
)

// readJSON decodes the request body into out. Bodies that are not JSON at
// all result in errInvalidJSON, valid JSON that does not fit out returns
// the decoder error.
func readJSON(r *http.Request, out interface{}) error {
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil || !json.Valid(buf) {
		return errInvalidJSON
	}
	return json.Unmarshal(buf, out)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	buf, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "unable to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.Header().Add("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(status)
	w.Write(buf)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, message{Message: msg})
}
