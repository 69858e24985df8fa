package adapthttp

import (
	"context"
	"net/http"

	"novastore/internal/app"
	"novastore/internal/domain"

	"go.uber.org/zap"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Options configures the optional parts of a Server.
type Options struct {
	WebDir        string
	SecureCookies bool
	Defaults      domain.Preferences

	// ViewerCookies, when set, keeps viewer accounts in a sealed cookie
	// instead of the AuthService's repository.
	ViewerCookies *ViewerCookieStore

	LoginLimiter  Limiter
	SignupLimiter Limiter

	OIDC   OIDCConfig
	Logger *zap.Logger
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth       *app.AuthService
	sessions   *app.SessionCodec
	catalog    *app.CatalogService
	categories *app.CategoryService
	profiles   *app.ProfileService

	webDir        string
	secureCookies bool
	defaults      domain.Preferences
	viewerCookies *ViewerCookieStore
	loginLimiter  Limiter
	signupLimiter Limiter
	oidcConfig    OIDCConfig
	logger        *zap.Logger
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, sessions *app.SessionCodec, catalog *app.CatalogService, categories *app.CategoryService, profiles *app.ProfileService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := opts.Defaults
	if !defaults.Theme.Valid() {
		defaults.Theme = domain.ThemeSystem
	}
	if !defaults.Language.Valid() {
		defaults.Language = domain.LanguageEnglish
	}
	return &Server{
		auth:          auth,
		sessions:      sessions,
		catalog:       catalog,
		categories:    categories,
		profiles:      profiles,
		webDir:        opts.WebDir,
		secureCookies: opts.SecureCookies,
		defaults:      defaults,
		viewerCookies: opts.ViewerCookies,
		loginLimiter:  opts.LoginLimiter,
		signupLimiter: opts.SignupLimiter,
		oidcConfig:    opts.OIDC,
		logger:        logger,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)
	api.HandleFunc("/preferences", s.handlePreferences)

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/signup", s.handleSignup)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.HandleFunc("/session", s.handleSession)

	api.HandleFunc("/products", s.requireUser(s.handleProducts))
	api.HandleFunc("/products/export", s.requireUser(s.handleProductsExport))
	api.HandleFunc("/products/import", s.requireRole(domain.RoleAdmin, s.handleProductsImport))
	api.HandleFunc("/products/{id}", s.requireUser(s.handleProduct))
	api.HandleFunc("/categories", s.requireUser(s.handleCategories))
	api.HandleFunc("/profile", s.requireUser(s.handleProfile))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", s.spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(s.sessionMiddleware(root)))
}
