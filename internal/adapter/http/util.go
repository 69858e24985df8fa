package adapthttp

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
)

const defaultRedirect = "/dashboard"

// maxBodyBytes bounds JSON request bodies, including imports.
const maxBodyBytes = 5 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// safeRedirect returns to when it is a local absolute path, else fallback.
func safeRedirect(to, fallback string) string {
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.HasPrefix(to, "/\\") {
		return fallback
	}
	return to
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// spaFromDisk serves the single page app. Pages other than login and signup
// require a session; product editing pages require an admin.
func (s *Server) spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)
		user := userFromContext(r.Context())

		switch {
		case reqPath == "/":
			if user != nil {
				http.Redirect(w, r, defaultRedirect, http.StatusFound)
			} else {
				http.Redirect(w, r, "/login", http.StatusFound)
			}
			return
		case reqPath == "/login" || reqPath == "/signup":
			if user != nil {
				http.Redirect(w, r, safeRedirect(r.URL.Query().Get("redirectTo"), defaultRedirect), http.StatusFound)
				return
			}
			http.ServeFile(w, r, indexPath)
			return
		case isPage(reqPath):
			if user == nil {
				s.unauthenticated(w, r)
				return
			}
			if adminPage(reqPath) && !isAdmin(r) {
				s.writeError(w, r, http.StatusForbidden, codeForbidden)
				return
			}
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if _, err := os.Stat(staticPath); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, indexPath)
	})
}

func isPage(p string) bool {
	for _, prefix := range []string{"/dashboard", "/settings", "/products"} {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

func adminPage(p string) bool {
	return p == "/products/new" || (strings.HasPrefix(p, "/products/") && strings.HasSuffix(p, "/edit"))
}
