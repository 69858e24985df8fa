// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"novastore/internal/app"
	"novastore/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the optional single sign-on provider.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// NewOIDCConfig discovers issuer and builds the OAuth2 client for it.
func NewOIDCConfig(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (OIDCConfig, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return OIDCConfig{}, fmt.Errorf("oidc discovery: %w", err)
	}
	return OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email"},
		},
	}, nil
}

type credentialsRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	RememberMe      bool   `json:"rememberMe"`
	RedirectTo      string `json:"redirectTo"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.allow(r, s.loginLimiter, "login") {
		s.writeError(w, r, http.StatusTooManyRequests, codeRateLimited)
		return
	}

	var req credentialsRequest
	if err := parseJSON(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}
	if err := app.ValidateLogin(req.Email, req.Password); err != nil {
		s.writeAppError(w, r, err)
		return
	}

	auth, _ := s.authFor(r)
	user, err := auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	if err := s.startSession(w, *user, req.RememberMe); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.logger.Info("login", zap.String("user", user.UserID), zap.String("role", string(user.Role)))
	writeJSON(w, http.StatusOK, map[string]any{
		"user":       user,
		"redirectTo": safeRedirect(req.RedirectTo, defaultRedirect),
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.allow(r, s.signupLimiter, "signup") {
		s.writeError(w, r, http.StatusTooManyRequests, codeRateLimited)
		return
	}

	var req credentialsRequest
	if err := parseJSON(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}
	if err := app.ValidateSignup(req.Email, req.Password, req.ConfirmPassword); err != nil {
		s.writeAppError(w, r, err)
		return
	}

	auth, viewers := s.authFor(r)
	user, err := auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.flushViewers(w, viewers); err != nil {
		s.writeAppError(w, r, err)
		return
	}

	if err := s.startSession(w, *user, req.RememberMe); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.logger.Info("signup", zap.String("user", user.UserID))
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":       user,
		"redirectTo": safeRedirect(req.RedirectTo, defaultRedirect),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "redirectTo": "/login"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := userFromContext(r.Context())
	if user == nil {
		s.unauthenticated(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled":     s.oidcConfig.Enabled,
		"defaultLanguage": s.defaults.Language,
		"defaultTheme":    s.defaults.Theme,
	})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		s.writeError(w, r, http.StatusNotFound, codeSSODisabled)
		return
	}
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.oidcConfig.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		s.writeError(w, r, http.StatusNotFound, codeSSODisabled)
		return
	}

	state, err := r.Cookie(stateCookieName)
	if err != nil || state.Value == "" || r.URL.Query().Get("state") != state.Value {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookieName, MaxAge: -1, Path: "/"})

	token, err := s.oidcConfig.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.logger.Warn("sso token exchange failed", zap.Error(err))
		s.writeError(w, r, http.StatusBadGateway, codeSSOFailed)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		s.writeError(w, r, http.StatusBadGateway, codeSSOFailed)
		return
	}

	idToken, err := s.oidcConfig.Provider.Verifier(&oidc.Config{ClientID: s.oidcConfig.OAuth2Config.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		s.logger.Warn("sso id token rejected", zap.Error(err))
		s.writeError(w, r, http.StatusUnauthorized, codeSSOFailed)
		return
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
	}
	if err = idToken.Claims(&claims); err != nil {
		s.writeError(w, r, http.StatusBadGateway, codeSSOFailed)
		return
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		s.writeError(w, r, http.StatusForbidden, codeForbidden)
		return
	}

	auth, _ := s.authFor(r)
	user, err := auth.ResolveSSO(r.Context(), claims.Email)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.startSession(w, *user, false); err != nil {
		s.writeAppError(w, r, err)
		return
	}

	http.Redirect(w, r, defaultRedirect, http.StatusFound)
}

func (s *Server) startSession(w http.ResponseWriter, user domain.SessionUser, remember bool) error {
	token, err := s.sessions.Issue(user, remember)
	if err != nil {
		return fmt.Errorf("issue session: %w", err)
	}
	s.setSessionCookie(w, token, remember)
	return nil
}

func (s *Server) allow(r *http.Request, limiter Limiter, action string) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(r.Context(), action+":"+clientIP(r))
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
