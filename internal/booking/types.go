// Package booking owns the court booking lifecycle: slot claims, booking
// creation, payment reconciliation, session status progression, refunds,
// and the admin actions that move a booking between states.
package booking

import (
	"fmt"
	"strings"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Terminal reports whether no further payment transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCancelled || s == PaymentRefunded
}

type SessionStatus string

const (
	SessionUpcoming   SessionStatus = "UPCOMING"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionCancelled  SessionStatus = "CANCELLED"
)

func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

type PaymentChoice string

const (
	ChoiceUnspecified PaymentChoice = ""
	ChoiceFull        PaymentChoice = "FULL"
	ChoiceDeposit     PaymentChoice = "DEPOSIT"
)

// ParsePaymentChoice accepts FULL, DEPOSIT, or an empty value.
func ParsePaymentChoice(raw string) (PaymentChoice, error) {
	switch PaymentChoice(strings.ToUpper(strings.TrimSpace(raw))) {
	case ChoiceUnspecified:
		return ChoiceUnspecified, nil
	case ChoiceFull:
		return ChoiceFull, nil
	case ChoiceDeposit:
		return ChoiceDeposit, nil
	}
	return ChoiceUnspecified, fmt.Errorf("unknown payment choice %q", raw)
}

type RefundStatus string

const (
	// RefundPending marks a refund owed to the customer that staff still
	// have to pay out.
	RefundPending   RefundStatus = "PENDING"
	RefundProcessed RefundStatus = "PROCESSED"
)

const (
	reasonPaymentFailed  = "payment_failed"
	reasonDepositExpired = "deposit_expired"
)
