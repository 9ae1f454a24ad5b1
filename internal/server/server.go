package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard/internal/app"
	"jobboard/internal/policy"
	"jobboard/internal/ratelimit"
	"jobboard/internal/util"
	"jobboard/internal/validate"
	"jobboard/pkg/auth"
	"jobboard/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App       *app.App
	Validator *validate.Validator

	// Redis backs the register/login limiters. Nil disables rate limiting.
	Redis                      redis.Scripter
	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int

	TrustedProxies     *util.TrustedProxies
	CORSAllowedOrigins []string
}

// Server exposes the job board HTTP API.
type Server struct {
	app       *app.App
	validator *validate.Validator
	mux       *http.ServeMux

	trusted         *util.TrustedProxies
	corsOrigins     []string
	registerLimiter *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	if cfg.Validator == nil {
		v, err := validate.New()
		if err != nil {
			return nil, fmt.Errorf("init validator: %w", err)
		}
		cfg.Validator = v
	}
	s := &Server{
		app:         cfg.App,
		validator:   cfg.Validator,
		mux:         http.NewServeMux(),
		trusted:     cfg.TrustedProxies,
		corsOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.Redis != nil {
		registerLimit := cfg.RegisterRateLimitPerMinute
		if registerLimit <= 0 {
			registerLimit = 5
		}
		loginLimit := cfg.LoginRateLimitPerMinute
		if loginLimit <= 0 {
			loginLimit = 10
		}
		newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
			limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.Redis, "jobboard:ratelimit:"+name, limit, time.Minute)
			if err != nil {
				return nil, fmt.Errorf("init %s limiter: %w", name, err)
			}
			return limiter, nil
		}
		var err error
		if s.registerLimiter, err = newLimiter("register", registerLimit); err != nil {
			return nil, err
		}
		if s.loginLimiter, err = newLimiter("login", loginLimit); err != nil {
			return nil, err
		}
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with the middleware chain applied.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.WithCORS(s.corsOrigins)(h)
	h = util.WithSecurityHeaders(h)
	h = util.WithRequestLog(s.trusted, h)
	return util.WithRequestID(h)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// users
	s.mux.HandleFunc("/api/users/register", s.handleRegister)
	s.mux.HandleFunc("/api/users/login", s.handleLogin)
	s.mux.Handle("/api/users/logout", s.authenticated(s.handleLogout))
	s.mux.Handle("/api/users/profile", s.authenticated(s.handleProfile))
	s.mux.Handle("/api/users/password", s.authenticated(s.handleChangePassword))
	s.mux.Handle("/api/users/saved-jobs", s.authenticated(s.handleSavedJobs))

	// jobs
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/jobs/", s.handleJobByID)

	// applications
	s.mux.Handle("/api/applications", s.authenticated(s.handleSubmitApplication))
	s.mux.Handle("/api/applications/", s.authenticated(s.handleApplicationRoutes))
	s.mux.Handle("/api/uploads/resume", s.authenticated(s.handleUploadResume))

	// companies
	s.mux.HandleFunc("/api/companies", s.handleCompanies)
	s.mux.HandleFunc("/api/companies/", s.handleCompanyByID)

	// admin
	s.mux.Handle("/api/admin/users", s.adminOnly(s.handleAdminUsers))
	s.mux.Handle("/api/admin/users/", s.adminOnly(s.handleAdminUserByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := s.requireUser(w, r); ok {
			next(w, r, user)
		}
	})
}

func (s *Server) adminOnly(next authHandler) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, user domain.User) {
		if user.Role != domain.RoleAdmin {
			s.audit(r, "admin.authorize", "fail", "user_id", user.ID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r, user)
	})
}

// requireUser resolves the bearer token and writes the 401/403 response
// itself when the caller cannot proceed.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		s.audit(r, "token.verify", "fail", "reason", "missing_token")
		writeError(w, http.StatusUnauthorized, "No token provided")
		return domain.User{}, false
	}
	token, ok := bearerToken(header)
	if !ok {
		s.audit(r, "token.verify", "fail", "reason", "malformed_header")
		writeError(w, http.StatusUnauthorized, "Token is not valid")
		return domain.User{}, false
	}
	user, err := s.app.Authenticate(r.Context(), token)
	if err != nil {
		if errors.Is(err, app.ErrTokenInvalid) {
			s.audit(r, "token.verify", "fail", "reason", "invalid_token")
			writeError(w, http.StatusUnauthorized, "Token is not valid")
			return domain.User{}, false
		}
		writeAppError(w, r, err, "")
		return domain.User{}, false
	}
	if auth.IsDemoID(user.ID) && !readOnlyRequest(r) {
		s.audit(r, "demo.write", "fail", "user_id", user.ID)
		writeError(w, http.StatusForbidden, "Demo accounts are read-only")
		return domain.User{}, false
	}
	return user, true
}

// readOnlyRequest reports whether a demo session may perform r.
func readOnlyRequest(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return true
	}
	return r.URL.Path == "/api/users/logout"
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trusted),
	}
	logAttrs = append(logAttrs, attrs...)
	logger := util.LoggerFromContext(r.Context())
	if outcome == "success" {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r, s.trusted)
	if limiter.Allow(r.Context(), key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
	return false
}

// auditForbidden records policy denials; other errors are not security events.
func (s *Server) auditForbidden(r *http.Request, err error, event string, user domain.User) {
	if errors.Is(err, policy.ErrForbidden) {
		s.audit(r, event, "forbidden", "user_id", user.ID, "role", string(user.Role))
	}
}
