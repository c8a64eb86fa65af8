// Package debug provides collector timing, raw value dumps and a pprof
// endpoint for diagnosing winmem itself.
package debug

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/sirupsen/logrus"
)

// StartPprofServer serves the pprof handlers at addr and returns a function
// that shuts the server down.
func StartPprofServer(addr string, logger *logrus.Logger) (func(), error) {
	if addr == "" {
		addr = "localhost:6060"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("pprof server starting")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return nil, fmt.Errorf("pprof server failed: %w", err)
	case <-time.After(50 * time.Millisecond):
	}

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("pprof server shutdown")
		}
	}
	return stop, nil
}
