// Package common defines sentinel errors shared by the repositories, services
// and the HTTP layer. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound   = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")

	// service specific errors
	ErrorInternal = errors.New("internal error")

	// credential errors
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrDuplicateRegistration = errors.New("email already registered")
	ErrMalformedHash         = errors.New("malformed password hash")

	// token and identity errors
	ErrMissingToken      = errors.New("missing token")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrIdentityMismatch  = errors.New("identity mismatch")
	ErrInvalidClaimShape = errors.New("invalid claim shape")

	// upstream errors
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// translation input errors
	ErrNoInput              = errors.New("no text or audio provided")
	ErrUnsupportedAudioType = errors.New("unsupported audio type")
	ErrAudioTooLarge        = errors.New("audio file too large")
	ErrEmptyAudio           = errors.New("empty audio file")
	ErrEmptyText            = errors.New("no text to translate")
)
