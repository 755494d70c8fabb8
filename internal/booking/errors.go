package booking

import (
	"errors"
	"fmt"
)

// Kind classifies a booking error so callers can map it to a response.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindGone
	KindPrecondition
	KindNotFound
	KindGateway
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindGone:
		return "gone"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindGateway:
		return "gateway"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches booking errors by code, so a wrapped copy of a sentinel still
// satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrSlotNotFound         = &Error{Kind: KindNotFound, Code: "slot_not_found", Message: "slot not found"}
	ErrSlotTaken            = &Error{Kind: KindConflict, Code: "slot_taken", Message: "slot is no longer available"}
	ErrBookingNotFound      = &Error{Kind: KindNotFound, Code: "booking_not_found", Message: "booking not found"}
	ErrAlreadyCancelled     = &Error{Kind: KindConflict, Code: "already_cancelled", Message: "booking is already cancelled"}
	ErrAlreadyRefunded      = &Error{Kind: KindConflict, Code: "already_refunded", Message: "booking has already been refunded"}
	ErrAlreadyCheckedIn     = &Error{Kind: KindConflict, Code: "already_checked_in", Message: "booking is already checked in"}
	ErrAlreadyCheckedOut    = &Error{Kind: KindConflict, Code: "already_checked_out", Message: "booking is already checked out"}
	ErrSessionOver          = &Error{Kind: KindGone, Code: "session_over", Message: "session has already completed"}
	ErrNotCheckedIn         = &Error{Kind: KindPrecondition, Code: "not_checked_in", Message: "booking has not been checked in"}
	ErrBookingCancelled     = &Error{Kind: KindPrecondition, Code: "booking_cancelled", Message: "booking is cancelled"}
	ErrPaymentNotSettled    = &Error{Kind: KindPrecondition, Code: "payment_not_settled", Message: "booking payment has not been settled"}
	ErrSessionActive        = &Error{Kind: KindPrecondition, Code: "session_active", Message: "session is in progress"}
	ErrSessionCompleted     = &Error{Kind: KindPrecondition, Code: "session_completed", Message: "session has already completed"}
	ErrNotDepositBooking    = &Error{Kind: KindPrecondition, Code: "not_deposit_booking", Message: "booking was not paid by deposit"}
	ErrVenuePaymentRecorded = &Error{Kind: KindConflict, Code: "venue_payment_recorded", Message: "venue payment already recorded"}
	ErrDepositExpired       = &Error{Kind: KindGone, Code: "deposit_expired", Message: "deposit booking has expired"}
	ErrConcurrentUpdate     = &Error{Kind: KindConflict, Code: "concurrent_update", Message: "booking was modified concurrently"}
	ErrCheckoutClosed       = &Error{Kind: KindConflict, Code: "checkout_closed", Message: "booking is no longer awaiting payment"}
)

func validationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: "validation_failed", Field: field, Message: message}
}

func persistenceError(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Code: "persistence_failed", Message: op, Err: err}
}

func gatewayError(err error) *Error {
	return &Error{Kind: KindGateway, Code: "gateway_failed", Message: "payment gateway unavailable", Err: err}
}

// KindOf returns the Kind of the first booking error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// asBookingError passes booking errors through and wraps anything else as a
// persistence failure.
func asBookingError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return persistenceError(op, err)
}
