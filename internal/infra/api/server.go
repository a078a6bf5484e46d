package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"tutor-onboarding/internal/infra/i18n"
	"tutor-onboarding/internal/usecase"
)

// Server exposes the signup wizard, auth sessions and the student profile
// as a JSON API.
type Server struct {
	signup   usecase.SignupUseCase
	sessions usecase.SessionUseCase
	accounts usecase.AccountUseCase
	plans    usecase.PlanUseCase
	tr       *i18n.Translator
	opts     Options
	log      *zerolog.Logger
}

// Options are the transport-level settings of the API.
type Options struct {
	Cookie         CookieConfig
	AllowedOrigin  string
	RequestTimeout time.Duration
	// Health reports backing-store readiness; nil means always healthy.
	Health func(ctx context.Context) error
}

func NewServer(
	signup usecase.SignupUseCase,
	sessions usecase.SessionUseCase,
	accounts usecase.AccountUseCase,
	plans usecase.PlanUseCase,
	tr *i18n.Translator,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{
		signup:   signup,
		sessions: sessions,
		accounts: accounts,
		plans:    plans,
		tr:       tr,
		opts:     opts,
		log:      logger,
	}
}

// Routes builds the chi router with the middleware chain applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(CORS(s.opts.AllowedOrigin))
	r.Use(Timeout(s.opts.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/plans", s.handlePlans)
		r.Get("/subjects", s.handleSubjects)

		r.Route("/signup", func(r chi.Router) {
			r.Post("/", s.handleSignupStart)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleSignupGet)
				r.Put("/credentials", s.handleSignupCredentials)
				r.Put("/subject", s.handleSignupSubject)
				r.Put("/plan", s.handleSignupPlan)
				r.Post("/advance", s.handleSignupAdvance)
				r.Post("/payment/cancel", s.handleSignupCancelPayment)
				r.Post("/payment", s.handleSignupPay)
			})
		})

		r.Post("/auth/signin", s.handleSignIn)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAuth)
			r.Post("/auth/signout", s.handleSignOut)
			r.Get("/me", s.handleMe)
			r.Get("/dashboard", s.handleDashboard)
			r.Put("/settings", s.handleSettings)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.Health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves h on port until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func Run(ctx context.Context, port int, h http.Handler, logger *zerolog.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
