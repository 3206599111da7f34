package problems

import "errors"

// Sentinel errors returned by the lifecycle service. The api package maps
// these onto HTTP status codes; the messages travel to the client unchanged.
var (
	ErrNotFound       = errors.New("problem not found")
	ErrAlreadyClaimed = errors.New("this problem has already been claimed")
	ErrNotClaimer     = errors.New("you have not claimed this problem")
	ErrNotAllowed     = errors.New("you are not allowed to perform this action")
	ErrCannotResolve  = errors.New("You are not allowed to resolve this problem")

	ErrMissingFields   = errors.New("summary and description are required")
	ErrInvalidStatus   = errors.New("status must be open or closed")
	ErrNotReadyToClose = errors.New("only a problem that is ready for review can be closed")
	ErrNotClosed       = errors.New("only a closed problem can be reopened")

	// Comment validation messages match what the UI shows next to the
	// comment box.
	ErrCommentEmpty    = errors.New("Please type something before posting")
	ErrCommentTooShort = errors.New("The comment is too small")
	ErrCommentTooLong  = errors.New("The comment is too long")
)

// IsForbidden reports whether err is an authorization failure for an
// authenticated caller.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotAllowed) || errors.Is(err, ErrCannotResolve)
}

// IsConflict reports whether err is a claim-state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyClaimed) || errors.Is(err, ErrNotClaimer)
}

// IsValidation reports whether err was detected before any mutation and the
// request should be retried with corrected input.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrNotReadyToClose),
		errors.Is(err, ErrNotClosed),
		errors.Is(err, ErrCommentEmpty),
		errors.Is(err, ErrCommentTooShort),
		errors.Is(err, ErrCommentTooLong):
		return true
	}
	return false
}
