// Package payment talks to the hosted payment gateway and normalizes its
// status vocabulary into the outcomes the booking reconciler acts on.
package payment

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransactionNotFound is returned when the gateway has no transaction for
// an order reference.
var ErrTransactionNotFound = errors.New("payment transaction not found")

// Gateway is the subset of the hosted checkout API the booking flow needs.
type Gateway interface {
	CreateTransaction(ctx context.Context, checkout Checkout) (CheckoutResult, error)
	QueryStatus(ctx context.Context, orderRef string) (TransactionStatus, error)
}

type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type Item struct {
	ID       string
	Name     string
	Price    int64
	Quantity int32
}

type Checkout struct {
	OrderRef string
	Amount   int64
	Customer Customer
	Items    []Item
}

type CheckoutResult struct {
	Token       string
	RedirectURL string
}

// TransactionStatus is the gateway's view of one order, as reported by a
// status query or a webhook.
type TransactionStatus struct {
	OrderRef          string
	TransactionStatus string
	FraudStatus       string
	PaymentType       string
	TransactionID     string
	StatusCode        string
	GrossAmount       string
}

// GatewayError wraps an unexpected gateway failure: a 5xx, a malformed
// response, or a timeout.
type GatewayError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("payment gateway error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment gateway error: %s", e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
