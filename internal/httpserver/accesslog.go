package httpserver

import (
	"net/http"
	"time"

	"github.com/andrebq/propdeck/internal/logutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const (
	RequestIDHeader = "X-Request-Id"

	maxRequestIDLength = 64
)

// WithAccessLog logs one line per request and tags every log entry of the
// request with its id. Ids sent by the client in X-Request-Id are reused,
// otherwise a random uuid is generated. The id is echoed in the response.
func WithAccessLog(log zerolog.Logger, next http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request served")
	})
	return hlog.NewHandler(log)(withRequestID(access(next)))
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if len(id) == 0 || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		log := hlog.FromRequest(r)
		log.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("req_id", id)
		})
		r = r.WithContext(logutil.WithLogger(r.Context(), *log))
		next.ServeHTTP(w, r)
	})
}
