package auth

import "errors"

// ErrInvalidSubject is returned by Issue when the user record lacks the
// fields a token must carry. It indicates a programming error upstream and is
// the only token error callers ever see; every verification failure collapses
// to a nil identity instead.
var ErrInvalidSubject = errors.New("token subject requires id and email")

// Internal verification failure reasons. They reach the logs only; the
// response a client sees never distinguishes between them.
var (
	errMissingToken     = errors.New("no token provided")
	errMalformedToken   = errors.New("malformed token")
	errSignatureInvalid = errors.New("token signature invalid")
	errTokenExpired     = errors.New("token expired")
	errSubjectNotFound  = errors.New("token subject no longer exists")
)
