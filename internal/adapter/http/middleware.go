package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"novastore/internal/app"
	"novastore/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

const userContextKey contextKey = "user"

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	logger := s.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// sessionMiddleware resolves the session cookie, if any, and stores the user
// in the request context. Invalid cookies are treated as absent.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := s.currentUser(r); user != nil {
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) currentUser(r *http.Request) *domain.SessionUser {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	user, err := s.sessions.Parse(cookie.Value)
	if err != nil {
		if errors.Is(err, app.ErrSessionTampered) {
			s.logger.Warn("session cookie signature mismatch", zap.String("remote", clientIP(r)))
		}
		return nil
	}
	return user
}

func userFromContext(ctx context.Context) *domain.SessionUser {
	user, _ := ctx.Value(userContextKey).(*domain.SessionUser)
	return user
}

// requireUser rejects requests without a valid session.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()) == nil {
			s.unauthenticated(w, r)
			return
		}
		next(w, r)
	}
}

// requireRole rejects requests without a session carrying role.
func (s *Server) requireRole(role domain.Role, next http.HandlerFunc) http.HandlerFunc {
	return s.requireUser(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()).Role != role {
			s.writeError(w, r, http.StatusForbidden, codeForbidden)
			return
		}
		next(w, r)
	})
}

// isAdmin reports whether the request carries an admin session.
func isAdmin(r *http.Request) bool {
	user := userFromContext(r.Context())
	return user != nil && user.Role == domain.RoleAdmin
}

// unauthenticated sends page requests to the login screen and answers API
// requests with 401 and the login location.
func (s *Server) unauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, loginLocation(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}
	s.writeErrorFields(w, r, http.StatusUnauthorized, codeUnauthenticated, map[string]any{
		"redirectTo": loginLocation(returnPath(r)),
	})
}

func loginLocation(returnTo string) string {
	return "/login?redirectTo=" + url.QueryEscape(returnTo)
}

// returnPath picks the page an API client should come back to after login:
// the referring page when it is a local path, otherwise the dashboard.
func returnPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return defaultRedirect
	}
	return safeRedirect(ref.RequestURI(), defaultRedirect)
}

func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
