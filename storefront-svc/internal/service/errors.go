package service

import (
	"errors"
	"time"

	"huongque-storefront/storefront-svc/internal/storage"
)

var (
	ErrAuthRequired       = errors.New("login required to checkout")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidPromoCode   = errors.New("invalid promo code")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrNotFound           = errors.New("not found")
	ErrPastBooking        = errors.New("booking time is in the past")
)

// StoreWriteError is returned when a durable write fails.
type StoreWriteError = storage.StoreWriteError

// ValidationError is bad user input. Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PastDateError reports a candidate booking date before today. Today holds
// the value the caller should clamp to.
type PastDateError struct {
	Date  time.Time
	Today time.Time
}

func (e *PastDateError) Error() string {
	return "cannot book a table in the past"
}
