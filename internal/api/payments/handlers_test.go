package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Padelicious/internal/booking"
	"github.com/codr1/Padelicious/internal/payment"
	"github.com/codr1/Padelicious/internal/testutil"
)

const testServerKey = "SB-Mid-server-test"

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type stubGateway struct {
	mu       sync.Mutex
	statuses map[string]string
}

func (g *stubGateway) CreateTransaction(_ context.Context, c payment.Checkout) (payment.CheckoutResult, error) {
	return payment.CheckoutResult{Token: "tok", RedirectURL: "https://pay.example.test/" + c.OrderRef}, nil
}

func (g *stubGateway) QueryStatus(_ context.Context, orderRef string) (payment.TransactionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.statuses[orderRef]
	if !ok {
		return payment.TransactionStatus{}, payment.ErrTransactionNotFound
	}
	return payment.TransactionStatus{OrderRef: orderRef, TransactionStatus: status}, nil
}

func setupPaymentsTest(t *testing.T) (*booking.Service, *stubGateway, string) {
	t.Helper()

	database := testutil.NewTestDB(t)
	gateway := &stubGateway{statuses: map[string]string{}}
	svc := booking.NewService(database, gateway, nil, nil, booking.DefaultPolicy(), booking.WithClock(func() time.Time { return testNow }))

	service = nil
	serverKey = ""
	serviceOnce = sync.Once{}
	InitHandlers(svc, testServerKey)

	slotID := testutil.SeedSlot(t, database, testutil.SlotSeed{Date: "2026-03-12", Price: 150000})
	ctx := context.Background()
	b, err := svc.CreateBooking(ctx, booking.CreateBookingInput{
		SlotID:        slotID,
		CustomerName:  "Budi Santoso",
		CustomerEmail: "budi@example.com",
		CustomerPhone: "081298765432",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := svc.StartCheckout(ctx, b); err != nil {
		t.Fatalf("start checkout: %v", err)
	}
	return svc, gateway, b.BookingCode
}

func notificationBody(t *testing.T, orderID, status, key string) string {
	t.Helper()
	n := payment.Notification{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       "150000.00",
		TransactionStatus: status,
		TransactionID:     "txn-1",
		PaymentType:       "bank_transfer",
	}
	n.SignatureKey = payment.Sign(key, n.OrderID, n.StatusCode, n.GrossAmount)
	raw, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal notification: %v", err)
	}
	// The gateway sends fields we do not model.
	return strings.TrimSuffix(string(raw), "}") + `,"currency":"IDR"}`
}

func postNotification(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notifications", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	HandleNotification(recorder, req)
	return recorder
}

func paymentStatus(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var resp statusResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.PaymentStatus
}

func TestHandleNotification_Settlement(t *testing.T) {
	svc, _, code := setupPaymentsTest(t)

	for i := 0; i < 2; i++ {
		recorder := postNotification(notificationBody(t, code, "settlement", testServerKey))
		if recorder.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected status 200, got %d: %s", i+1, recorder.Code, recorder.Body.String())
		}
		if got := paymentStatus(t, recorder); got != "PAID" {
			t.Fatalf("delivery %d: expected PAID, got %q", i+1, got)
		}
	}

	recorder := postNotification(notificationBody(t, code, "expire", testServerKey))
	if got := paymentStatus(t, recorder); got != "PAID" {
		t.Fatalf("late failure must not override PAID, got %q", got)
	}

	b, err := svc.GetBookingByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if b.PaymentStatus != "PAID" || !b.PaidAt.Valid {
		t.Fatalf("unexpected booking: %+v", b)
	}
}

func TestHandleNotification_Rejects(t *testing.T) {
	svc, _, code := setupPaymentsTest(t)

	recorder := postNotification(notificationBody(t, code, "settlement", "wrong-key"))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
	b, err := svc.GetBookingByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if b.PaymentStatus != "PENDING" {
		t.Fatalf("forged notification changed status to %s", b.PaymentStatus)
	}

	if recorder := postNotification(`{"order_id":`); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}

	recorder = postNotification(notificationBody(t, "PB-UNKNOWN", "settlement", testServerKey))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown order, got %d", recorder.Code)
	}
}

func TestHandleFinish(t *testing.T) {
	tests := []struct {
		name    string
		gateway string
		want    string
	}{
		{name: "settled", gateway: "settlement", want: "PAID"},
		{name: "still pending", gateway: "pending", want: "PENDING"},
		{name: "unknown to gateway", gateway: "", want: "CANCELLED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, gateway, code := setupPaymentsTest(t)
			if tt.gateway != "" {
				gateway.statuses[code] = tt.gateway
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/finish?order_id="+code, nil)
			recorder := httptest.NewRecorder()
			HandleFinish(recorder, req)

			if recorder.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
			}
			if got := paymentStatus(t, recorder); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestHandleFinish_WebhookAndPollConverge(t *testing.T) {
	_, gateway, code := setupPaymentsTest(t)
	gateway.statuses[code] = "settlement"

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/finish?order_id="+code, nil)
	recorder := httptest.NewRecorder()
	HandleFinish(recorder, req)
	if got := paymentStatus(t, recorder); got != "PAID" {
		t.Fatalf("poll: expected PAID, got %s", got)
	}

	recorder = postNotification(notificationBody(t, code, "settlement", testServerKey))
	if got := paymentStatus(t, recorder); got != "PAID" {
		t.Fatalf("webhook after poll: expected PAID, got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payments/finish", nil)
	recorder = httptest.NewRecorder()
	HandleFinish(recorder, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without order_id, got %d", recorder.Code)
	}
}
