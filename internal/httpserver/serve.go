package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/andrebq/propdeck/internal/logutil"
	"golang.org/x/sync/errgroup"
)

const (
	ShutdownTimeout = 30 * time.Second
)

// Serve runs handler on bind until ctx is done, then waits (up to ShutdownTimeout)
// for in-flight requests. Every request goes through WithAccessLog.
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	lst, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	return ServeListener(ctx, lst, handler)
}

// ServeListener is like Serve but takes ownership of an already bound listener
func ServeListener(ctx context.Context, lst net.Listener, handler http.Handler) error {
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", lst.Addr().String()).Logger()
	server := &http.Server{
		Handler:           WithAccessLog(log, handler),
		ReadTimeout:       time.Minute * 5,
		WriteTimeout:      time.Minute,
		ReadHeaderTimeout: time.Minute,
		IdleTimeout:       time.Minute * 5,
		BaseContext: func(net.Listener) context.Context {
			return logutil.WithLogger(context.Background(), log)
		},
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Msg("Starting HTTP server")
		err := server.Serve(lst)
		if errors.Is(err, http.ErrServerClosed) {
			log.Info().Msg("Server closed")
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info().Msg("Initiating shutdown process")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Shutdown did not complete in time")
			return err
		}
		log.Info().Msg("Shutdown completed")
		return nil
	})
	return group.Wait()
}
