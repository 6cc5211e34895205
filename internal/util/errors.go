package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrActorRequired      = errors.New("user_id is required")
	ErrInvalidLimit       = errors.New("limit must be an integer between 1 and 100")
	ErrInvalidOptions     = errors.New("options must keep the ids assigned at creation")
	ErrInvalidFile        = errors.New("invalid file")
	ErrConcurrentUpdate   = errors.New("document was modified concurrently, retry the request")
	ErrStoreUnavailable   = errors.New("document store unavailable")
)
