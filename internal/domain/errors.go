package domain

import (
	"errors"
	"fmt"
)

// ValidationError is a local, field-level failure. It blocks a wizard transition and names the
// first offending field.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// AuthError carries the message the backend returned for a failed sign-in or registration.
type AuthError struct {
	Status int
	Msg    string
	Err    error
}

func (e AuthError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return "authentication failed: " + e.Err.Error()
	}
	return "authentication failed"
}

func (e AuthError) Unwrap() error { return e.Err }

// FetchError means the backend was unreachable, timed out or answered with an unexpected status.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e FetchError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e FetchError) Unwrap() error { return e.Err }

// SlotUnavailableError is returned when the backend reports (HTTP 409) that the selected vehicle or
// time slot was taken between selection and submission.
type SlotUnavailableError struct {
	VehicleID string
	Msg       string
}

func (e SlotUnavailableError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.VehicleID != "" {
		return fmt.Sprintf("vehicle %s is no longer available", e.VehicleID)
	}
	return "slot no longer available"
}

// PaymentFailedError is a reservation the backend received but declined.
type PaymentFailedError struct {
	Status int
	Msg    string
}

func (e PaymentFailedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "payment failed"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target AuthError
	return errors.As(err, &target)
}

func IsFetch(err error) bool {
	var target FetchError
	return errors.As(err, &target)
}

func IsSlotUnavailable(err error) bool {
	var target SlotUnavailableError
	return errors.As(err, &target)
}

func IsPaymentFailed(err error) bool {
	var target PaymentFailedError
	return errors.As(err, &target)
}

// FieldOf returns the field named by a ValidationError, or "".
func FieldOf(err error) string {
	var target ValidationError
	if errors.As(err, &target) {
		return target.Field
	}
	return ""
}
