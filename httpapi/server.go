// Package httpapi exposes the authentication flows over HTTP. It owns
// request decoding, field validation, cookie handling, and the mapping of
// engine sentinels onto status codes and response messages; all flow
// semantics live in the engine.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gocache "github.com/patrickmn/go-cache"

	"github.com/otpgate/otpgate"
	"github.com/otpgate/otpgate/oauth/google"
)

// stateTTL bounds how long an OAuth authorization redirect may stay
// outstanding before its callback is rejected.
const stateTTL = 10 * time.Minute

// Config wires the server's collaborators.
type Config struct {
	Engine *otpgate.Engine

	// Google enables the federated login endpoints when non-nil.
	Google *google.Client

	// GoogleSuccessURL and GoogleFailureURL are the browser destinations
	// after the federated callback. The callback always redirects; cookies
	// ride the success redirect.
	GoogleSuccessURL string
	GoogleFailureURL string

	// Metrics, when non-nil, is mounted at GET /metrics.
	Metrics http.Handler

	// AccessTTL and RefreshTTL size the session cookie lifetimes; they
	// should match the engine's token configuration.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Dev drops the Secure cookie attribute for plain-HTTP development.
	Dev bool
}

// Server is the HTTP surface over an engine.
type Server struct {
	cfg    Config
	engine *otpgate.Engine

	// oauthStates maps outstanding state tokens to their nonces.
	oauthStates *gocache.Cache
}

// NewServer builds a Server; call Routes to obtain the handler.
func NewServer(cfg Config) *Server {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.GoogleSuccessURL == "" {
		cfg.GoogleSuccessURL = "/"
	}
	if cfg.GoogleFailureURL == "" {
		cfg.GoogleFailureURL = "/signin"
	}
	return &Server{
		cfg:         cfg,
		engine:      cfg.Engine,
		oauthStates: gocache.New(stateTTL, time.Minute),
	}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/signup-verify", s.handleSignupVerify)
		r.Post("/login", s.handleLogin)
		r.Post("/login-verify", s.handleLoginVerify)
		r.Post("/resend-otp", s.handleResendOTP)
		r.Post("/forgotpassword-part1", s.handleForgotPart1)
		r.Post("/forgotpassword-part2", s.handleForgotPart2)
		r.Post("/forgotpassword-part3", s.handleForgotPart3)
	})

	r.Get("/refresh-token", s.handleRefreshToken)
	r.Get("/signout", s.handleSignout)
	r.Post("/signout", s.handleSignout)

	if s.cfg.Google != nil {
		r.Get("/google", s.handleGoogleRedirect)
		r.Get("/google/callback", s.handleGoogleCallback)
	}

	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}
	r.Get("/healthz", s.handleHealthz)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Ping(r.Context()); err != nil {
		writeMessage(w, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	writeMessage(w, http.StatusOK, "ok")
}
