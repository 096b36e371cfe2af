package httperr

import "errors"

// Kind classifies a failure so callers can decide whether to re-prompt,
// retry or reconcile.
type Kind string

const (
	KindConflict           Kind = "conflict"
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindPersistence        Kind = "persistence"
	KindReconciliation     Kind = "reconciliation"
	KindPaymentUnavailable Kind = "payment_unavailable"
	KindPaymentDeclined    Kind = "payment_declined"
	KindPaymentCancelled   Kind = "payment_cancelled"
)

type BusinessError struct {
	Kind Kind
	Code string
	Err  error
}

func (e BusinessError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e BusinessError) Unwrap() error {
	return e.Err
}

// ErrBusiness is a validation failure identified only by its code.
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func ErrConflict(code string) error {
	return BusinessError{Kind: KindConflict, Code: code}
}

func ErrValidation(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func ErrNotFound(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

// ErrPersistence wraps a datastore failure. The operation that produced it
// must be treated as not applied.
func ErrPersistence(code string, err error) error {
	return BusinessError{Kind: KindPersistence, Code: code, Err: err}
}

// ErrReconciliation reports money that moved while local state did not.
func ErrReconciliation(code string, err error) error {
	return BusinessError{Kind: KindReconciliation, Code: code, Err: err}
}

func ErrPaymentUnavailable(code string, err error) error {
	return BusinessError{Kind: KindPaymentUnavailable, Code: code, Err: err}
}

func ErrPaymentDeclined(reason string) error {
	var cause error
	if reason != "" {
		cause = errors.New(reason)
	}
	return BusinessError{Kind: KindPaymentDeclined, Code: "payment_declined", Err: cause}
}

func ErrPaymentCancelled() error {
	return BusinessError{Kind: KindPaymentCancelled, Code: "payment_cancelled"}
}

func As(err error) (BusinessError, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return BusinessError{}, false
}

func IsBusiness(err error, code string) bool {
	if be, ok := As(err); ok {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	if be, ok := As(err); ok {
		return be.Kind == kind
	}
	return false
}

// Persist passes business errors through untouched and wraps anything else
// as a persistence failure.
func Persist(code string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return ErrPersistence(code, err)
}
