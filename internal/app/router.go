package app

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/recordkeeper-audit/internal/auth"
	"github.com/heartmarshall/recordkeeper-audit/internal/config"
	"github.com/heartmarshall/recordkeeper-audit/internal/transport/middleware"
	"github.com/heartmarshall/recordkeeper-audit/internal/transport/rest"
)

// newRouter registers every route and wraps the mux in the middleware chain.
// Audit runs outside Auth so it sees rejected requests too; Auth reports the
// resolved actor back to it.
func newRouter(
	cfg *config.Config,
	logger *slog.Logger,
	p *Pipeline,
	limiter *middleware.RateLimiter,
	gatherer prometheus.Gatherer,
) http.Handler {
	health := rest.NewHealthHandler(p.AuditPool, p.Dispatcher, BuildVersion())
	auditHandler := rest.NewAuditHandler(p.Query, p.Actions, logger)
	authenticated := middleware.RequireAuth()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.Handle("GET /api/audit-logs", authenticated(http.HandlerFunc(auditHandler.List)))
	mux.Handle("GET /api/audit-logs/export", middleware.Chain(
		authenticated,
		limiter.Limit(cfg.Audit.ExportPerMinute),
	)(http.HandlerFunc(auditHandler.Export)))
	mux.HandleFunc("POST /api/audit-logs/actions", auditHandler.RecordAction)

	validator := auth.NewTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Audit(p.Dispatcher, cfg.Audit.ExcludedPrefixes),
		middleware.Auth(validator),
	)(mux)
}
