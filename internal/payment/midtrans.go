package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog/log"
)

type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type coreAPI interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

type MidtransConfig struct {
	ServerKey   string
	Production  bool
	FinishURL   string
	Timeout     time.Duration
	ExpiryAfter time.Duration
}

// MidtransGateway implements Gateway over Midtrans Snap (checkout) and the
// Core API (status queries).
type MidtransGateway struct {
	snap      snapAPI
	core      coreAPI
	finishURL string
	timeout   time.Duration
	expiry    time.Duration
}

func NewMidtransGateway(cfg MidtransConfig) (*MidtransGateway, error) {
	if strings.TrimSpace(cfg.ServerKey) == "" {
		return nil, fmt.Errorf("midtrans server key is required")
	}
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}

	var snapClient snap.Client
	snapClient.New(cfg.ServerKey, env)
	var coreClient coreapi.Client
	coreClient.New(cfg.ServerKey, env)

	return newMidtransGateway(&snapClient, &coreClient, cfg), nil
}

func newMidtransGateway(s snapAPI, c coreAPI, cfg MidtransConfig) *MidtransGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MidtransGateway{
		snap:      s,
		core:      c,
		finishURL: cfg.FinishURL,
		timeout:   timeout,
		expiry:    cfg.ExpiryAfter,
	}
}

func (g *MidtransGateway) CreateTransaction(ctx context.Context, checkout Checkout) (CheckoutResult, error) {
	items := make([]midtrans.ItemDetails, 0, len(checkout.Items))
	for _, item := range checkout.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    item.ID,
			Name:  truncate(item.Name, 50),
			Price: item.Price,
			Qty:   item.Quantity,
		})
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  checkout.OrderRef,
			GrossAmt: checkout.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: checkout.Customer.FirstName,
			LName: checkout.Customer.LastName,
			Email: checkout.Customer.Email,
			Phone: checkout.Customer.Phone,
		},
		Items: &items,
	}
	if g.finishURL != "" {
		req.Callbacks = &snap.Callbacks{Finish: g.finishURL}
	}
	if g.expiry > 0 {
		req.Expiry = &snap.ExpiryDetails{
			Unit:     "minute",
			Duration: int64(g.expiry / time.Minute),
		}
	}

	resp, err := callWithTimeout(ctx, g.timeout, func() (*snap.Response, *midtrans.Error) {
		return g.snap.CreateTransaction(req)
	})
	if err != nil {
		return CheckoutResult{}, err
	}
	if resp == nil || resp.Token == "" {
		return CheckoutResult{}, &GatewayError{Message: "empty checkout response"}
	}

	log.Ctx(ctx).Debug().Str("order_ref", checkout.OrderRef).Msg("Gateway checkout created")
	return CheckoutResult{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (g *MidtransGateway) QueryStatus(ctx context.Context, orderRef string) (TransactionStatus, error) {
	resp, err := callWithTimeout(ctx, g.timeout, func() (*coreapi.TransactionStatusResponse, *midtrans.Error) {
		return g.core.CheckTransaction(orderRef)
	})
	if err != nil {
		return TransactionStatus{}, err
	}
	if resp == nil {
		return TransactionStatus{}, &GatewayError{Message: "empty status response"}
	}
	if resp.StatusCode == "404" {
		return TransactionStatus{}, ErrTransactionNotFound
	}

	return TransactionStatus{
		OrderRef:          orderRef,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		PaymentType:       resp.PaymentType,
		TransactionID:     resp.TransactionID,
		StatusCode:        resp.StatusCode,
		GrossAmount:       resp.GrossAmount,
	}, nil
}

// callWithTimeout runs a blocking SDK call and gives up when ctx or the
// per-call timeout expires. The SDK call itself cannot be cancelled, so an
// abandoned call finishes in the background and its result is discarded.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, call func() (T, *midtrans.Error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   *midtrans.Error
	}
	done := make(chan result, 1)
	go func() {
		value, err := call()
		done <- result{value: value, err: err}
	}()

	var zero T
	select {
	case <-ctx.Done():
		return zero, &GatewayError{Message: "request timed out", Err: ctx.Err()}
	case r := <-done:
		if r.err != nil {
			return zero, translateError(r.err)
		}
		return r.value, nil
	}
}

func translateError(err *midtrans.Error) error {
	if err.StatusCode == http.StatusNotFound {
		return ErrTransactionNotFound
	}
	return &GatewayError{
		StatusCode: err.StatusCode,
		Message:    err.Message,
		Err:        err.RawError,
	}
}

// truncate keeps at most n characters of s without splitting a rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
