package adapthttp

import (
	"net/http"

	"novastore/internal/domain"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		items, err := s.categories.EnsureSeeded(ctx)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		if !isAdmin(r) {
			s.writeError(w, r, http.StatusForbidden, codeForbidden)
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := parseJSON(r, &body); err != nil {
			s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
			return
		}
		res, err := s.categories.Create(ctx, body.Name)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, res)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		profile, err := s.profiles.Load(ctx, *user)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile})

	case http.MethodPut:
		var profile domain.ProfileSettings
		if err := parseJSON(r, &profile); err != nil {
			s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
			return
		}
		if err := s.profiles.Save(ctx, *user, profile); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.preferences(r))

	case http.MethodPut:
		var body struct {
			Theme    *domain.Theme    `json:"theme"`
			Language *domain.Language `json:"language"`
		}
		if err := parseJSON(r, &body); err != nil {
			s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
			return
		}
		prefs := s.preferences(r)
		if body.Theme != nil {
			if !body.Theme.Valid() {
				s.writeError(w, r, http.StatusBadRequest, codeInvalidPreference)
				return
			}
			prefs.Theme = *body.Theme
		}
		if body.Language != nil {
			if !body.Language.Valid() {
				s.writeError(w, r, http.StatusBadRequest, codeInvalidPreference)
				return
			}
			prefs.Language = *body.Language
		}
		s.setPreferenceCookies(w, prefs)
		writeJSON(w, http.StatusOK, prefs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
