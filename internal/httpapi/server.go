package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ehub-dashboard/internal/config"
)

// NewServer wraps mux with request logging. Request contexts derive from
// baseCtx so long-lived handlers such as /ws end on shutdown.
func NewServer(baseCtx context.Context, cfg config.Config, mux *http.ServeMux, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
}
