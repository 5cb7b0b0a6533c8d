package domain

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Validation errors
	ErrInvalidSessionID       = errors.New("invalid session id")
	ErrInvalidVariantID       = errors.New("invalid variant id")
	ErrInvalidDate            = errors.New("invalid date")
	ErrInvalidExhibitionTitle = errors.New("exhibition title is required")
	ErrInvalidExhibitionRange = errors.New("exhibition start date is after end date")

	// Booking flow errors
	ErrDateNotSelectable = errors.New("date is not selectable")
	ErrNoDateSelected    = errors.New("no visit date selected")
	ErrUnknownVariant    = errors.New("unknown product variant")
	ErrNoEligibleTicket  = errors.New("no gift aid eligible ticket in the basket")
	ErrNothingToSubmit   = errors.New("no tickets selected")
	ErrSubmitInProgress  = errors.New("a submit is already in progress")

	// Remote cart errors
	ErrRemoteCartFailed = errors.New("remote cart request failed")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidSessionID) ||
		errors.Is(err, ErrInvalidVariantID) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidExhibitionTitle) ||
		errors.Is(err, ErrInvalidExhibitionRange) ||
		errors.Is(err, ErrDateNotSelectable) ||
		errors.Is(err, ErrNoDateSelected) ||
		errors.Is(err, ErrUnknownVariant) ||
		errors.Is(err, ErrNoEligibleTicket) ||
		errors.Is(err, ErrNothingToSubmit)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSubmitInProgress)
}

// IsRemoteCartError checks if the error came from the remote cart service
func IsRemoteCartError(err error) bool {
	return errors.Is(err, ErrRemoteCartFailed)
}
