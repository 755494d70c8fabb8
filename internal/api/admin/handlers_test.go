package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Padelicious/internal/api/apiutil"
	"github.com/codr1/Padelicious/internal/api/authz"
	"github.com/codr1/Padelicious/internal/booking"
	"github.com/codr1/Padelicious/internal/db"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
	"github.com/codr1/Padelicious/internal/payment"
	"github.com/codr1/Padelicious/internal/testutil"
)

type stubGateway struct{}

func (stubGateway) CreateTransaction(_ context.Context, c payment.Checkout) (payment.CheckoutResult, error) {
	return payment.CheckoutResult{Token: "tok", RedirectURL: "https://pay.example.test/" + c.OrderRef}, nil
}

func (stubGateway) QueryStatus(context.Context, string) (payment.TransactionStatus, error) {
	return payment.TransactionStatus{}, payment.ErrTransactionNotFound
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	svc   *booking.Service
	db    *db.DB
	clock *testClock
}

func setupAdminTest(t *testing.T) *testEnv {
	t.Helper()

	database := testutil.NewTestDB(t)
	clock := &testClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc := booking.NewService(database, stubGateway{}, nil, nil, booking.DefaultPolicy(), booking.WithClock(clock.Now))

	service = nil
	serviceOnce = sync.Once{}
	InitHandlers(svc)

	return &testEnv{svc: svc, db: database, clock: clock}
}

// paidBooking creates a booking for a 10:00-11:00 slot on court and settles it.
func (e *testEnv) paidBooking(t *testing.T, court, choice string) dbgen.Booking {
	t.Helper()
	ctx := context.Background()

	slotID := testutil.SeedSlot(t, e.db, testutil.SlotSeed{
		CourtName:       court,
		Date:            "2026-03-10",
		StartTime:       "10:00",
		EndTime:         "11:00",
		Price:           200000,
		DepositEligible: true,
	})
	b, err := e.svc.CreateBooking(ctx, booking.CreateBookingInput{
		SlotID:        slotID,
		CustomerName:  "Citra Lestari",
		CustomerEmail: "citra@example.com",
		CustomerPhone: "081234567890",
		PaymentChoice: choice,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if _, err := e.svc.Reconcile(ctx, payment.SignalFromStatus(payment.SourceWebhook, payment.TransactionStatus{
		OrderRef:          b.BookingCode,
		TransactionStatus: "settlement",
	})); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	b, err = e.svc.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	return b
}

func staffRequest(method, target, body string, id int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if id > 0 {
		req.SetPathValue("id", strconv.FormatInt(id, 10))
	}
	ctx := authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: "staff-1", Email: "desk@venue.test", Role: authz.RoleStaff})
	return req.WithContext(ctx)
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	return recorder
}

func decodeView(t *testing.T, recorder *httptest.ResponseRecorder) apiutil.AdminBookingView {
	t.Helper()
	var view apiutil.AdminBookingView
	if err := json.NewDecoder(recorder.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return view
}

func TestAdminHandlersRequireStaff(t *testing.T) {
	setupAdminTest(t)

	handlers := map[string]http.HandlerFunc{
		"list":          HandleListBookings,
		"check-in":      HandleCheckIn,
		"check-out":     HandleCheckOut,
		"cancel":        HandleCancel,
		"refund":        HandleRefund,
		"venue-payment": HandleVenuePayment,
		"sweep":         HandleSweep,
	}
	for name, handler := range handlers {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/"+name, nil)
		req.SetPathValue("id", "1")
		if recorder := serve(handler, req); recorder.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected status 401, got %d", name, recorder.Code)
		}
	}
}

func TestHandleCheckInCheckOut(t *testing.T) {
	env := setupAdminTest(t)
	b := env.paidBooking(t, "Court 1", "FULL")
	target := "/api/v1/admin/bookings/" + strconv.FormatInt(b.ID, 10)

	recorder := serve(HandleCheckOut, staffRequest(http.MethodPost, target+"/check-out", "", b.ID))
	if recorder.Code != http.StatusPreconditionFailed {
		t.Fatalf("check-out before check-in: expected status 412, got %d", recorder.Code)
	}

	recorder = serve(HandleCheckIn, staffRequest(http.MethodPost, target+"/check-in", "", b.ID))
	if recorder.Code != http.StatusOK {
		t.Fatalf("check-in: expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	view := decodeView(t, recorder)
	if view.SessionStatus != "IN_PROGRESS" || view.CheckedInAt == nil {
		t.Fatalf("unexpected booking after check-in: %+v", view)
	}

	recorder = serve(HandleCheckIn, staffRequest(http.MethodPost, target+"/check-in", "", b.ID))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("repeat check-in: expected status 409, got %d", recorder.Code)
	}

	recorder = serve(HandleCheckOut, staffRequest(http.MethodPost, target+"/check-out", "", b.ID))
	if recorder.Code != http.StatusOK {
		t.Fatalf("check-out: expected status 200, got %d", recorder.Code)
	}
	if view := decodeView(t, recorder); view.SessionStatus != "COMPLETED" {
		t.Fatalf("expected COMPLETED, got %s", view.SessionStatus)
	}

	recorder = serve(HandleCheckIn, staffRequest(http.MethodPost, target+"/check-in", "", 999))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown booking: expected status 404, got %d", recorder.Code)
	}

	req := staffRequest(http.MethodPost, "/api/v1/admin/bookings/abc/check-in", "", 0)
	req.SetPathValue("id", "abc")
	if recorder := serve(HandleCheckIn, req); recorder.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected status 400, got %d", recorder.Code)
	}
}

func TestHandleCancel(t *testing.T) {
	env := setupAdminTest(t)
	b := env.paidBooking(t, "Court 1", "FULL")
	target := "/api/v1/admin/bookings/" + strconv.FormatInt(b.ID, 10) + "/cancel"

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "missing reason", body: `{"reason":""}`, status: http.StatusBadRequest},
		{name: "refund above total", body: `{"reason":"court flooded","refundAmount":999999999,"refundMethod":"bank_transfer"}`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"reason":"x","force":true}`, status: http.StatusBadRequest},
		{name: "cancel with refund", body: `{"reason":"court flooded","refundAmount":100000,"refundMethod":"bank_transfer"}`, status: http.StatusOK},
		{name: "already cancelled", body: `{"reason":"again"}`, status: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(HandleCancel, staffRequest(http.MethodPost, target, tt.body, b.ID))
			if recorder.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, recorder.Code, recorder.Body.String())
			}
		})
	}

	after, err := env.svc.GetBooking(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if after.PaymentStatus != "REFUNDED" || after.RefundAmount != 100000 || after.SessionStatus != "CANCELLED" {
		t.Fatalf("unexpected booking after cancel: %+v", after)
	}
	if !testutil.SlotAvailable(t, env.db, after.SlotID) {
		t.Fatalf("slot should be released")
	}
}

func TestHandleRefund(t *testing.T) {
	env := setupAdminTest(t)
	b := env.paidBooking(t, "Court 1", "FULL")
	target := "/api/v1/admin/bookings/" + strconv.FormatInt(b.ID, 10) + "/refund"

	recorder := serve(HandleRefund, staffRequest(http.MethodPost, target, `{"amount":0,"reason":"goodwill","method":"cash"}`, b.ID))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("zero refund: expected status 400, got %d", recorder.Code)
	}

	body := `{"amount":` + strconv.FormatInt(b.TotalAmount, 10) + `,"reason":"goodwill","method":"cash"}`
	recorder = serve(HandleRefund, staffRequest(http.MethodPost, target, body, b.ID))
	if recorder.Code != http.StatusOK {
		t.Fatalf("refund: expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	view := decodeView(t, recorder)
	if view.PaymentStatus != "REFUNDED" || view.RefundMethod != "cash" || view.RefundAmount != b.TotalAmount {
		t.Fatalf("unexpected booking after refund: %+v", view)
	}

	recorder = serve(HandleRefund, staffRequest(http.MethodPost, target, body, b.ID))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("second refund: expected status 409, got %d", recorder.Code)
	}
}

func TestHandleVenuePayment(t *testing.T) {
	env := setupAdminTest(t)
	b := env.paidBooking(t, "Court 1", "DEPOSIT")
	target := "/api/v1/admin/bookings/" + strconv.FormatInt(b.ID, 10) + "/venue-payment"

	recorder := serve(HandleVenuePayment, staffRequest(http.MethodPost, target, `{"amount":1,"method":"cash"}`, b.ID))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("wrong amount: expected status 400, got %d", recorder.Code)
	}

	body := `{"amount":` + strconv.FormatInt(b.RemainingBalance, 10) + `,"method":"cash"}`
	recorder = serve(HandleVenuePayment, staffRequest(http.MethodPost, target, body, b.ID))
	if recorder.Code != http.StatusOK {
		t.Fatalf("venue payment: expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	view := decodeView(t, recorder)
	if !view.VenuePaymentReceived || view.RemainingBalance != 0 || view.VenuePaymentAmount != b.RemainingBalance {
		t.Fatalf("unexpected booking after venue payment: %+v", view)
	}

	recorder = serve(HandleVenuePayment, staffRequest(http.MethodPost, target, body, b.ID))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("repeat venue payment: expected status 409, got %d", recorder.Code)
	}
}

func TestHandleListBookings(t *testing.T) {
	env := setupAdminTest(t)
	env.paidBooking(t, "Court 1", "FULL")
	env.paidBooking(t, "Court 2", "DEPOSIT")

	recorder := serve(HandleListBookings, staffRequest(http.MethodGet, "/api/v1/admin/bookings?payment_status=paid", "", 0))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp listBookingsResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(resp.Bookings))
	}

	recorder = serve(HandleListBookings, staffRequest(http.MethodGet, "/api/v1/admin/bookings?payment_status=LOST", "", 0))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: expected 400, got %d", recorder.Code)
	}
}

func TestHandleSweep(t *testing.T) {
	env := setupAdminTest(t)
	env.paidBooking(t, "Court 1", "FULL")
	env.paidBooking(t, "Court 2", "DEPOSIT")

	env.clock.Set(time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC))
	recorder := serve(HandleSweep, staffRequest(http.MethodPost, "/api/v1/admin/sessions/sweep", "", 0))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp sweepResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// The deposit booking still owes its balance, so it does not auto start.
	if resp.Scanned != 2 || resp.Updated != 1 || resp.Unchanged != 1 || resp.Rules["auto_start"] != 1 {
		t.Fatalf("unexpected sweep result: %+v", resp)
	}
}
