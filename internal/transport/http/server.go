package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fleshka4/ammpool/internal/config"
	"github.com/fleshka4/ammpool/internal/service"
)

const (
	requestIDHeader       = "X-Request-ID"
	defaultRequestTimeout = 5 * time.Second
)

type ctxKey struct{}

// Option configures a Server.
type Option func(*Server)

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithGatherer exposes the collectors of g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// Server represents the HTTP transport layer.
type Server struct {
	svc      service.Service
	router   *mux.Router
	log      *zap.Logger
	gatherer prometheus.Gatherer

	credentials []credential

	graceTimeout      time.Duration
	readHeaderTimeout time.Duration
	requestTimeout    time.Duration
}

// NewServer creates a new HTTP server with registered routes.
func NewServer(svc service.Service, cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if svc == nil {
		return nil, errors.New("service is nil")
	}

	s := &Server{
		svc:    svc,
		router: mux.NewRouter(),
		log:    zap.NewNop(),

		graceTimeout:      cfg.GraceTimeout,
		readHeaderTimeout: cfg.ReadHeaderTimeout,
		requestTimeout:    cfg.RequestTimeout,
	}
	for token, addr := range cfg.Identities() {
		s.credentials = append(s.credentials, credential{token: []byte(token), address: addr})
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}
	if len(s.credentials) == 0 {
		s.log.Warn("no auth tokens configured, mutating endpoints will reject every request")
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)

	r.HandleFunc("/quote", s.handleQuote).Methods(http.MethodGet)
	r.HandleFunc("/price", s.handlePrice).Methods(http.MethodGet)
	r.HandleFunc("/reserves", s.handleReserves).Methods(http.MethodGet)
	r.HandleFunc("/records", s.handleRecords).Methods(http.MethodGet)
	r.HandleFunc("/position", s.handlePosition).Methods(http.MethodGet)
	r.HandleFunc("/balance", s.handleBalance).Methods(http.MethodGet)

	r.HandleFunc("/deposit", s.authenticated(s.handleDeposit)).Methods(http.MethodPost)
	r.HandleFunc("/withdraw", s.authenticated(s.handleWithdraw)).Methods(http.MethodPost)
	r.HandleFunc("/swap", s.authenticated(s.handleSwap)).Methods(http.MethodPost)
	r.HandleFunc("/reconcile", s.authenticated(s.handleReconcile)).Methods(http.MethodPost)
	r.HandleFunc("/claims/transfer", s.authenticated(s.handleTransferClaims)).Methods(http.MethodPost)
	r.HandleFunc("/approve", s.authenticated(s.handleApprove)).Methods(http.MethodPost)
	r.HandleFunc("/faucet", s.authenticated(s.handleFaucet)).Methods(http.MethodPost)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.Use(s.requestIDMiddleware, s.logMiddleware)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "srv.ListenAndServe")
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.graceTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "srv.Shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "srv.ListenAndServe")
	}
	s.log.Info("server stopped gracefully")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestIDMiddleware keeps the caller's X-Request-ID or assigns a new one.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// logMiddleware logs each HTTP request and the time taken to process it.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", requestID(r.Context())),
		)
	})
}
