// Package notify delivers admin-facing booking notifications. Delivery is
// best-effort: an Emitter never reports failure to the caller, and a
// notification is never the authoritative record of a state change.
package notify

import (
	"context"
	"time"
)

type Type string

const (
	TypeBookingCreated   Type = "booking_created"
	TypePaymentReceived  Type = "payment_received"
	TypePaymentFailed    Type = "payment_failed"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeRefundIssued     Type = "refund_issued"
	TypeCheckedIn        Type = "checked_in"
	TypeCheckedOut       Type = "checked_out"
	TypeSessionStarted   Type = "session_started"
	TypeSessionCompleted Type = "session_completed"
	TypeDepositExpired   Type = "deposit_expired"
	TypeVenuePayment     Type = "venue_payment_recorded"
)

type Notification struct {
	BookingID   int64     `json:"bookingId"`
	BookingCode string    `json:"bookingCode"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type Emitter interface {
	Notify(ctx context.Context, n Notification)
}

// Multi fans a notification out to every emitter in order.
type Multi []Emitter

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, e := range m {
		if e != nil {
			e.Notify(ctx, n)
		}
	}
}

type Nop struct{}

func (Nop) Notify(context.Context, Notification) {}

func detached(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
