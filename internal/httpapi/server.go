package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bankingSystem/internal/auth"
	"bankingSystem/internal/banking"
	"bankingSystem/internal/logger"
	"bankingSystem/internal/metrics"
)

// Server bundles dependencies of the HTTP API.
type Server struct {
	Bank        *banking.System
	Issuer      *auth.Issuer
	Revocations *auth.Revocations
	Metrics     *metrics.Metrics
	Log         *zap.Logger

	secret string
}

// New wires a Server. secret must match the one the Issuer signs with.
func New(bank *banking.System, secret string, sessionTTL time.Duration, m *metrics.Metrics, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		Bank:        bank,
		Issuer:      auth.NewIssuer(secret, sessionTTL),
		Revocations: auth.NewRevocations(),
		Metrics:     m,
		Log:         log,
		secret:      secret,
	}
}

// Router returns the full handler chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.Metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/accounts", s.createAccount)
		r.Post("/sessions", s.login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.secret, s.Revocations))
			r.Delete("/sessions", s.logout)
			r.Get("/account", s.getAccount)
			r.Delete("/account", s.deleteAccount)
			r.Post("/account/deposit", s.deposit)
			r.Post("/account/withdraw", s.withdraw)
			r.Post("/account/transfer", s.transfer)
			r.Post("/account/recharge", s.recharge)
		})
	})
	return r
}

// requestLogger attaches a request-scoped zap logger and logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		l := s.Log.With(zap.String("request_id", reqID))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(logger.ToContext(r.Context(), l)))

		l.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Start listens on addr and serves in the background. The returned function
// shuts the server down gracefully, forcing close when ctx expires.
func (s *Server) Start(addr string) (func(context.Context) error, error) {
	if addr == "" {
		addr = ":8080"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("http serve", zap.Error(err))
		}
	}()

	return func(ctx context.Context) error {
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return err
		}
		return nil
	}, nil
}
