package service

import (
	"errors"
	"fmt"
)

// Error classes. Handlers branch on these with errors.Is; anything else is a
// storage failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrUserNotFound         = newAppError(ErrNotFound, "User does not exist!")
	ErrPlanNotFound         = newAppError(ErrNotFound, "Plan does not exist!")
	ErrInvalidDetails       = newAppError(ErrInvalidInput, "Invalid details!")
	ErrReferralCodeNotFound = newAppError(ErrInvalidInput, "Referral code does not exist!")
	ErrInvalidCredentials   = newAppError(ErrInvalidInput, "Invalid password!")
	ErrSelfReferral         = newAppError(ErrConflict, "You can't use your own referral code!")
	ErrReferralUsed         = newAppError(ErrConflict, "User already used a referral code!")
	ErrUsernameTaken        = newAppError(ErrConflict, "Username already taken!")
	ErrEmailTaken           = newAppError(ErrConflict, "Email already registered!")
	ErrMobileTaken          = newAppError(ErrConflict, "Mobile number already registered!")
	ErrUserBlocked          = newAppError(ErrConflict, "User is blocked!")
	ErrOtherDevice          = newAppError(ErrConflict, "You already Login with another device")
	ErrFakeUserNotFound     = newAppError(ErrNotFound, "Fake user does not exist!")
)

// appError carries a client-facing message and unwraps to its class.
type appError struct {
	class error
	msg   string
}

func newAppError(class error, msg string) *appError {
	return &appError{class: class, msg: msg}
}

func (e *appError) Error() string { return e.msg }

func (e *appError) Unwrap() error { return e.class }

// invalidInput builds an InvalidInput error with a custom message.
func invalidInput(format string, args ...any) error {
	return newAppError(ErrInvalidInput, fmt.Sprintf(format, args...))
}
