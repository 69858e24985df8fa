package adapthttp

import (
	"errors"
	"net/http"

	"novastore/internal/app"
	"novastore/internal/domain"

	"go.uber.org/zap"
)

// Error codes returned in the "error" field of JSON responses.
const (
	codeUnauthenticated    = "unauthenticated"
	codeForbidden          = "forbidden"
	codeInvalidCredentials = "invalid_credentials"
	codeReservedEmail      = "reserved_email"
	codeEmailExists        = "email_exists"
	codeMissingFields      = "missing_fields"
	codePasswordTooShort   = "password_too_short"
	codePasswordMismatch   = "password_mismatch"
	codeInvalidImport      = "invalid_import"
	codeInvalidProduct     = "invalid_product"
	codeInvalidCategory    = "invalid_category"
	codeInvalidPreference  = "invalid_preference"
	codeBadRequest         = "bad_request"
	codeNotFound           = "not_found"
	codeSeedLoadFailure    = "seed_load_failure"
	codeRateLimited        = "rate_limited"
	codeSSODisabled        = "sso_disabled"
	codeSSOFailed          = "sso_failed"
	codeInternal           = "internal_error"
)

var messages = map[domain.Language]map[string]string{
	domain.LanguageEnglish: {
		codeUnauthenticated:    "Please sign in to continue.",
		codeForbidden:          "You are not authorized to perform this action.",
		codeInvalidCredentials: "Invalid email or password.",
		codeReservedEmail:      "This email address cannot be used.",
		codeEmailExists:        "An account with this email already exists.",
		codeMissingFields:      "Please fill in all required fields.",
		codePasswordTooShort:   "Password must be at least 6 characters.",
		codePasswordMismatch:   "Passwords do not match.",
		codeInvalidImport:      "The file does not contain a valid product list.",
		codeInvalidProduct:     "Please check the product fields.",
		codeInvalidCategory:    "Category name is required.",
		codeInvalidPreference:  "Unsupported preference value.",
		codeBadRequest:         "The request could not be read.",
		codeNotFound:           "Not found.",
		codeSeedLoadFailure:    "Failed to load catalog data.",
		codeRateLimited:        "Too many attempts. Please try again later.",
		codeSSODisabled:        "Single sign-on is not enabled.",
		codeSSOFailed:          "Single sign-on failed.",
		codeInternal:           "Something went wrong.",
	},
	domain.LanguageTurkish: {
		codeUnauthenticated:    "Devam etmek için lütfen giriş yapın.",
		codeForbidden:          "Bu işlem için yetkiniz yok.",
		codeInvalidCredentials: "E-posta veya şifre hatalı.",
		codeReservedEmail:      "Bu e-posta adresi kullanılamaz.",
		codeEmailExists:        "Bu e-posta ile kayıtlı bir hesap zaten var.",
		codeMissingFields:      "Lütfen tüm zorunlu alanları doldurun.",
		codePasswordTooShort:   "Şifre en az 6 karakter olmalıdır.",
		codePasswordMismatch:   "Şifreler eşleşmiyor.",
		codeInvalidImport:      "Dosya geçerli bir ürün listesi içermiyor.",
		codeInvalidProduct:     "Lütfen ürün alanlarını kontrol edin.",
		codeInvalidCategory:    "Kategori adı zorunludur.",
		codeInvalidPreference:  "Desteklenmeyen tercih değeri.",
		codeBadRequest:         "İstek okunamadı.",
		codeNotFound:           "Bulunamadı.",
		codeSeedLoadFailure:    "Katalog verileri yüklenemedi.",
		codeRateLimited:        "Çok fazla deneme. Lütfen daha sonra tekrar deneyin.",
		codeSSODisabled:        "Tek oturum açma etkin değil.",
		codeSSOFailed:          "Tek oturum açma başarısız oldu.",
		codeInternal:           "Bir şeyler ters gitti.",
	},
}

func message(lang domain.Language, code string) string {
	if m, ok := messages[lang][code]; ok {
		return m
	}
	return messages[domain.LanguageEnglish][code]
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	s.writeErrorFields(w, r, status, code, nil)
}

func (s *Server) writeErrorFields(w http.ResponseWriter, r *http.Request, status int, code string, fields map[string]any) {
	body := map[string]any{
		"error":   code,
		"message": message(s.preferences(r).Language, code),
	}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeAppError maps an application error to its HTTP response.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		s.writeError(w, r, http.StatusUnauthorized, codeInvalidCredentials)
	case errors.Is(err, app.ErrReservedEmail):
		s.writeError(w, r, http.StatusConflict, codeReservedEmail)
	case errors.Is(err, app.ErrEmailExists):
		s.writeError(w, r, http.StatusConflict, codeEmailExists)
	case errors.Is(err, app.ErrMissingFields):
		s.writeError(w, r, http.StatusBadRequest, codeMissingFields)
	case errors.Is(err, app.ErrPasswordTooShort):
		s.writeError(w, r, http.StatusBadRequest, codePasswordTooShort)
	case errors.Is(err, app.ErrPasswordMismatch):
		s.writeError(w, r, http.StatusBadRequest, codePasswordMismatch)
	case errors.Is(err, app.ErrSSOUnknownUser):
		s.writeError(w, r, http.StatusForbidden, codeForbidden)
	case errors.Is(err, app.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, codeNotFound)
	case errors.Is(err, app.ErrInvalidDraft):
		s.writeErrorFields(w, r, http.StatusBadRequest, codeInvalidProduct, map[string]any{"detail": err.Error()})
	case errors.Is(err, app.ErrInvalidCategory):
		s.writeError(w, r, http.StatusBadRequest, codeInvalidCategory)
	case errors.Is(err, app.ErrSeedLoad):
		s.logger.Error("seed load failed", zap.Error(err))
		s.writeError(w, r, http.StatusServiceUnavailable, codeSeedLoadFailure)
	default:
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, codeInternal)
	}
}
