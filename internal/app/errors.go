package app

import "errors"

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrReservedEmail indicates a signup attempt using the administrator email.
	ErrReservedEmail = errors.New("email is reserved")
	// ErrEmailExists indicates a signup attempt for an already registered email.
	ErrEmailExists = errors.New("email already registered")
	// ErrMissingFields indicates that a login or signup form was incomplete.
	ErrMissingFields = errors.New("email and password are required")
	// ErrPasswordTooShort indicates a signup password below the minimum length.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrPasswordMismatch indicates that the signup confirmation did not match.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrSSOUnknownUser indicates an SSO identity with no matching account.
	ErrSSOUnknownUser = errors.New("no account for sso identity")

	// ErrSessionInvalid indicates a missing, malformed or expired session token.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrSessionTampered indicates a session token whose signature did not verify.
	ErrSessionTampered = errors.New("session signature mismatch")

	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSeedLoad indicates that a seed document could not be loaded or was invalid.
	ErrSeedLoad = errors.New("seed load failure")
	// ErrInvalidImport indicates that an import payload failed validation.
	ErrInvalidImport = errors.New("invalid import payload")
	// ErrInvalidDraft indicates that a product draft failed validation.
	ErrInvalidDraft = errors.New("invalid product")
	// ErrInvalidCategory indicates an empty category name.
	ErrInvalidCategory = errors.New("category name is required")
)
