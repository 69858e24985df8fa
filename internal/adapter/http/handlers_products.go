package adapthttp

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"novastore/internal/app"
	"novastore/internal/domain"
)

const exportFileName = "products.json"

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		q, ok := parseProductQuery(r)
		if !ok {
			s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
			return
		}
		items, err := s.catalog.Query(ctx, q)
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
		var draft domain.ProductDraft
		if err := parseJSON(r, &draft); err != nil {
			s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
			return
		}
		created, err := s.catalog.Create(ctx, draft)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": created})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := s.catalog.Get(ctx, id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})

	case http.MethodPut:
		if !isAdmin(r) {
			s.writeError(w, r, http.StatusForbidden, codeForbidden)
			return
		}
		var draft domain.ProductDraft
		if err := parseJSON(r, &draft); err != nil {
			s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
			return
		}
		updated, err := s.catalog.Update(ctx, id, draft)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if !updated {
			s.writeError(w, r, http.StatusNotFound, codeNotFound)
			return
		}
		product, err := s.catalog.Get(ctx, id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})

	case http.MethodDelete:
		if !isAdmin(r) {
			s.writeError(w, r, http.StatusForbidden, codeForbidden)
			return
		}
		deleted, err := s.catalog.Delete(ctx, id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if !deleted {
			s.writeError(w, r, http.StatusNotFound, codeNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProductsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := s.catalog.Export(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func (s *Server) handleProductsImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}

	result, err := s.catalog.Import(r.Context(), raw)
	if errors.Is(err, app.ErrInvalidImport) {
		s.writeErrorFields(w, r, http.StatusUnprocessableEntity, codeInvalidImport, map[string]any{"errors": result.Errors})
		return
	}
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(result.Data)})
}

func parseProductQuery(r *http.Request) (app.ProductQuery, bool) {
	v := r.URL.Query()
	q := app.ProductQuery{
		Search: v.Get("q"),
		Sort:   v.Get("sort"),
	}
	if q.Sort == "" {
		q.Sort = app.SortNameAsc
	}
	if !app.ValidSort(q.Sort) {
		return q, false
	}
	if c := strings.TrimSpace(v.Get("categoryId")); c != "" && c != "all" {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil || id <= 0 {
			return q, false
		}
		q.CategoryID = id
	}
	return q, true
}
