package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evgeny-myasishchev/money-manager/pkg/ledger"
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/router"
	"github.com/evgeny-myasishchev/money-manager/pkg/types"
)

var logger = diag.CreateLogger()

// OwnerHeader carries the owner identity when no id token is given
const OwnerHeader = "X-Owner"

type routesCfg struct {
	engine   ledger.Engine
	now      func() time.Time
	gatherer prometheus.Gatherer
}

// RoutesOpt is an option of the api routes
type RoutesOpt func(cfg *routesCfg)

// WithEngine sets the ledger engine to serve requests with
func WithEngine(engine ledger.Engine) RoutesOpt {
	return func(cfg *routesCfg) {
		cfg.engine = engine
	}
}

// WithNow sets a clock used to compute windows and edit statuses
func WithNow(now func() time.Time) RoutesOpt {
	return func(cfg *routesCfg) {
		cfg.now = now
	}
}

// WithGatherer exposes metrics of a given gatherer on /metrics
func WithGatherer(gatherer prometheus.Gatherer) RoutesOpt {
	return func(cfg *routesCfg) {
		cfg.gatherer = gatherer
	}
}

// SetupRoutes registers ledger routes on the router
func SetupRoutes(r router.Router, opts ...RoutesOpt) {
	cfg := routesCfg{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.engine == nil {
		panic("Ledger engine is required")
	}

	r.Use(diag.NewRequestIDMiddleware())
	r.Use(diag.NewLogRequestsMiddleware(diag.ObfuscateHeaders(OwnerHeader)))

	h := handlers{engine: cfg.engine, now: cfg.now}
	r.Handle("GET", "/v1/healthcheck/ping", router.ToolkitHandlerFunc(h.ping))
	r.Handle("GET", "/v1/transactions", withOwner(h.listTransactions))
	r.Handle("GET", "/v1/summary", withOwner(h.summary))
	r.Handle("POST", "/v1/transactions", withOwner(h.createTransaction))
	r.Handle("PUT", "/v1/transactions/:id", withOwner(h.updateTransaction))
	r.Handle("DELETE", "/v1/transactions/:id", withOwner(h.deleteTransaction))
	if cfg.gatherer != nil {
		r.Handle("GET", "/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}
}

type ownerHandlerFunc func(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit, owner string) error

func ownerOf(req *http.Request) (string, error) {
	if token, ok := types.IDTokenFromAuthorization(req.Header.Get("Authorization")); ok {
		owner, err := token.Owner()
		if err != nil {
			logger.WithError(err).Info(req.Context(), "Failed to get owner from id token")
			return "", router.UnauthorizedError("Invalid id token")
		}
		return owner, nil
	}
	if owner := strings.TrimSpace(req.Header.Get(OwnerHeader)); owner != "" {
		return owner, nil
	}
	return "", router.UnauthorizedError("Owner identity is required")
}

// withOwner resolves the owner identity and rejects anonymous requests
func withOwner(next ownerHandlerFunc) router.ToolkitHandlerFunc {
	return func(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit) error {
		owner, err := ownerOf(req)
		if err != nil {
			return err
		}
		req = req.WithContext(diag.ContextWithOwner(req.Context(), owner))
		if err := next(w, req, h, owner); err != nil {
			return toHTTPError(err)
		}
		return nil
	}
}

var kindStatus = map[ledger.ErrorKind]int{
	ledger.KindValidation:        http.StatusBadRequest,
	ledger.KindNotFound:          http.StatusNotFound,
	ledger.KindEditWindowExpired: http.StatusConflict,
	ledger.KindTransferFailed:    http.StatusInternalServerError,
	ledger.KindStoreUnavailable:  http.StatusServiceUnavailable,
}

// toHTTPError translates ledger errors. Messages of server side
// failures are replaced so internals are not exposed
func toHTTPError(err error) error {
	kind, ok := ledger.KindOf(err)
	if !ok {
		return err
	}
	status := kindStatus[kind]
	message := err.Error()
	field := ""
	switch kind {
	case ledger.KindValidation:
		var validationErr *ledger.ValidationError
		if errors.As(err, &validationErr) {
			field = validationErr.Field
		}
	case ledger.KindTransferFailed:
		message = "Failed to record transfer"
	case ledger.KindStoreUnavailable:
		message = "Ledger store is unavailable"
	}
	return router.NewHTTPError(status, message).WithKind(string(kind), field)
}
