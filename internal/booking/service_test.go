package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Padelicious/internal/db"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
	"github.com/codr1/Padelicious/internal/email"
	"github.com/codr1/Padelicious/internal/notify"
	"github.com/codr1/Padelicious/internal/payment"
	"github.com/codr1/Padelicious/internal/testutil"
)

var baseTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

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

type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	queryErr  error
	statuses  map[string]string
	checkouts []payment.Checkout
}

func (g *fakeGateway) CreateTransaction(_ context.Context, c payment.Checkout) (payment.CheckoutResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return payment.CheckoutResult{}, g.createErr
	}
	g.checkouts = append(g.checkouts, c)
	return payment.CheckoutResult{
		Token:       "tok-" + c.OrderRef,
		RedirectURL: "https://pay.example.test/" + c.OrderRef,
	}, nil
}

func (g *fakeGateway) QueryStatus(_ context.Context, orderRef string) (payment.TransactionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.queryErr != nil {
		return payment.TransactionStatus{}, g.queryErr
	}
	status, ok := g.statuses[orderRef]
	if !ok {
		return payment.TransactionStatus{}, payment.ErrTransactionNotFound
	}
	return payment.TransactionStatus{OrderRef: orderRef, TransactionStatus: status}, nil
}

func (g *fakeGateway) setStatus(orderRef, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statuses == nil {
		g.statuses = make(map[string]string)
	}
	g.statuses[orderRef] = status
}

type recordingEmitter struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (e *recordingEmitter) Notify(_ context.Context, n notify.Notification) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, n)
}

func (e *recordingEmitter) count(typ notify.Type) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.sent {
		if s.Type == typ {
			n++
		}
	}
	return n
}

type recordingMailer struct {
	mu    sync.Mutex
	calls map[string][]email.BookingDetails
}

func (m *recordingMailer) record(kind string, d email.BookingDetails) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string][]email.BookingDetails)
	}
	m.calls[kind] = append(m.calls[kind], d)
}

func (m *recordingMailer) SendConfirmation(_ context.Context, d email.BookingDetails) {
	m.record("confirmation", d)
}

func (m *recordingMailer) SendReminder(_ context.Context, d email.BookingDetails) {
	m.record("reminder", d)
}

func (m *recordingMailer) SendCancellationNotice(_ context.Context, d email.BookingDetails) {
	m.record("cancellation", d)
}

func (m *recordingMailer) SendRefundNotice(_ context.Context, d email.BookingDetails) {
	m.record("refund", d)
}

func (m *recordingMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls[kind])
}

type harness struct {
	svc     *Service
	db      *db.DB
	gateway *fakeGateway
	events  *recordingEmitter
	mailer  *recordingMailer
	clock   *testClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		db:      testutil.NewTestDB(t),
		gateway: &fakeGateway{},
		events:  &recordingEmitter{},
		mailer:  &recordingMailer{},
		clock:   &testClock{now: baseTime},
	}
	policy := DefaultPolicy()
	policy.CheckoutExpiry = time.Hour
	h.svc = NewService(h.db, h.gateway, h.events, h.mailer, policy, WithClock(h.clock.Now))
	return h
}

func (h *harness) seedSlot(t *testing.T, court, date, start, end string, depositEligible bool) int64 {
	t.Helper()
	return testutil.SeedSlot(t, h.db, testutil.SlotSeed{
		CourtName:       court,
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		Price:           200000,
		DepositEligible: depositEligible,
	})
}

func (h *harness) create(t *testing.T, slotID int64, choice PaymentChoice) dbgen.Booking {
	t.Helper()
	b, err := h.svc.CreateBooking(context.Background(), CreateBookingInput{
		SlotID:        slotID,
		CustomerName:  "Ana  Putri",
		CustomerEmail: "ana@example.com",
		CustomerPhone: "0812 3456 7890",
		PaymentChoice: string(choice),
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func (h *harness) pay(t *testing.T, b dbgen.Booking) dbgen.Booking {
	t.Helper()
	status, err := h.svc.Reconcile(context.Background(), settlement(b.BookingCode))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if status != PaymentPaid {
		t.Fatalf("payment status: got %s want PAID", status)
	}
	return h.reload(t, b.ID)
}

func (h *harness) reload(t *testing.T, id int64) dbgen.Booking {
	t.Helper()
	b, err := h.svc.GetBooking(context.Background(), id)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	return b
}

func settlement(code string) payment.Signal {
	return payment.SignalFromStatus(payment.SourceWebhook, payment.TransactionStatus{
		OrderRef:          code,
		TransactionStatus: "settlement",
	})
}

func webhook(code, status string) payment.Signal {
	return payment.SignalFromStatus(payment.SourceWebhook, payment.TransactionStatus{
		OrderRef:          code,
		TransactionStatus: status,
	})
}

func TestCreateBooking_DepositClaimsSlot(t *testing.T) {
	h := newHarness(t)
	slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", true)

	b := h.create(t, slotID, ChoiceDeposit)

	if b.PaymentStatus != string(PaymentPending) || b.SessionStatus != string(SessionUpcoming) {
		t.Fatalf("statuses: %s/%s", b.PaymentStatus, b.SessionStatus)
	}
	if b.TotalAmount != 100000 || b.DepositAmount != 100000 || b.RemainingBalance != 100000 || b.FullAmount != 200000 {
		t.Fatalf("amounts: total=%d deposit=%d balance=%d full=%d", b.TotalAmount, b.DepositAmount, b.RemainingBalance, b.FullAmount)
	}
	if b.CustomerName != "Ana Putri" {
		t.Fatalf("name not normalized: %q", b.CustomerName)
	}
	if b.CustomerPhone != "+6281234567890" {
		t.Fatalf("phone not normalized: %q", b.CustomerPhone)
	}
	if len(b.BookingCode) != len("PDL")+15 {
		t.Fatalf("booking code: %q", b.BookingCode)
	}
	if testutil.SlotAvailable(t, h.db, slotID) {
		t.Fatalf("slot should be claimed")
	}
	if h.events.count(notify.TypeBookingCreated) != 1 {
		t.Fatalf("expected booking_created notification")
	}
}

func TestCreateBooking_SecondClaimConflicts(t *testing.T) {
	h := newHarness(t)
	slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)
	h.create(t, slotID, ChoiceFull)

	_, err := h.svc.CreateBooking(context.Background(), CreateBookingInput{
		SlotID:        slotID,
		CustomerName:  "Budi",
		CustomerEmail: "budi@example.com",
		CustomerPhone: "+6281298765432",
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if KindOf(err) != KindConflict {
		t.Fatalf("kind: %s", KindOf(err))
	}
}

func TestCreateBooking_ConcurrentClaimsYieldOneBooking(t *testing.T) {
	h := newHarness(t)
	slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)

	const contenders = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.CreateBooking(context.Background(), CreateBookingInput{
				SlotID:        slotID,
				CustomerName:  "Racer",
				CustomerEmail: "racer@example.com",
				CustomerPhone: "+6281234567890",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotTaken):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if successes != 1 || conflicts != contenders-1 {
		t.Fatalf("got %d successes and %d conflicts", successes, conflicts)
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	h := newHarness(t)
	plain := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)
	started := h.seedSlot(t, "Court 2", "2026-03-10", "08:00", "10:00", true)

	tests := []struct {
		name string
		in   CreateBookingInput
	}{
		{"missing name", CreateBookingInput{SlotID: plain, CustomerEmail: "a@example.com", CustomerPhone: "+6281234567890"}},
		{"bad email", CreateBookingInput{SlotID: plain, CustomerName: "A", CustomerEmail: "not-an-email", CustomerPhone: "+6281234567890"}},
		{"bad phone", CreateBookingInput{SlotID: plain, CustomerName: "A", CustomerEmail: "a@example.com", CustomerPhone: "12"}},
		{"unknown choice", CreateBookingInput{SlotID: plain, CustomerName: "A", CustomerEmail: "a@example.com", CustomerPhone: "+6281234567890", PaymentChoice: "LATER"}},
		{"deposit not offered", CreateBookingInput{SlotID: plain, CustomerName: "A", CustomerEmail: "a@example.com", CustomerPhone: "+6281234567890", PaymentChoice: "DEPOSIT"}},
		{"slot already started", CreateBookingInput{SlotID: started, CustomerName: "A", CustomerEmail: "a@example.com", CustomerPhone: "+6281234567890"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.CreateBooking(context.Background(), tt.in)
			if KindOf(err) != KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if !testutil.SlotAvailable(t, h.db, plain) || !testutil.SlotAvailable(t, h.db, started) {
		t.Fatalf("rejected bookings must not claim slots")
	}

	_, err := h.svc.CreateBooking(context.Background(), CreateBookingInput{
		SlotID: 9999, CustomerName: "A", CustomerEmail: "a@example.com", CustomerPhone: "+6281234567890",
	})
	if !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestStartCheckout_RecordsPaymentAttempt(t *testing.T) {
	h := newHarness(t)
	slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)
	b := h.create(t, slotID, ChoiceFull)

	b, err := h.svc.StartCheckout(context.Background(), b)
	if err != nil {
		t.Fatalf("start checkout: %v", err)
	}
	if b.PaymentToken.String != "tok-"+b.BookingCode || !b.PaymentRedirectUrl.Valid {
		t.Fatalf("checkout not stored: %+v", b)
	}
	if len(h.gateway.checkouts) != 1 || h.gateway.checkouts[0].Amount != b.TotalAmount {
		t.Fatalf("gateway checkout: %+v", h.gateway.checkouts)
	}
	payments, err := h.db.Queries.ListPaymentsByBookingID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 || payments[0].Status != "PENDING" {
		t.Fatalf("payments: %+v", payments)
	}

	paid := h.pay(t, b)
	payments, err = h.db.Queries.ListPaymentsByBookingID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if payments[0].Status != "SUCCESS" {
		t.Fatalf("payment attempt not settled: %s", payments[0].Status)
	}

	if _, err := h.svc.StartCheckout(context.Background(), paid); !errors.Is(err, ErrCheckoutClosed) || KindOf(err) != KindConflict {
		t.Fatalf("checkout for a paid booking: %v", err)
	}
	if len(h.gateway.checkouts) != 1 {
		t.Fatalf("paid booking reached the gateway again: %d checkouts", len(h.gateway.checkouts))
	}
}

func TestStartCheckout_GatewayFailureReleasesSlot(t *testing.T) {
	h := newHarness(t)
	h.gateway.createErr = &payment.GatewayError{StatusCode: 503, Message: "unavailable"}
	slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)
	b := h.create(t, slotID, ChoiceFull)

	_, err := h.svc.StartCheckout(context.Background(), b)
	if KindOf(err) != KindGateway {
		t.Fatalf("expected gateway error, got %v", err)
	}

	b = h.reload(t, b.ID)
	if b.PaymentStatus != string(PaymentCancelled) || b.SessionStatus != string(SessionCancelled) {
		t.Fatalf("statuses: %s/%s", b.PaymentStatus, b.SessionStatus)
	}
	if !testutil.SlotAvailable(t, h.db, slotID) {
		t.Fatalf("slot should be released")
	}
}

func TestReconcile_SuccessIsIdempotent(t *testing.T) {
	h := newHarness(t)
	slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)
	b := h.create(t, slotID, ChoiceFull)

	for i := 0; i < 3; i++ {
		status, err := h.svc.Reconcile(context.Background(), settlement(b.BookingCode))
		if err != nil {
			t.Fatalf("reconcile %d: %v", i, err)
		}
		if status != PaymentPaid {
			t.Fatalf("reconcile %d: %s", i, status)
		}
	}

	b = h.reload(t, b.ID)
	if !b.PaidAt.Valid {
		t.Fatalf("paid_at not set")
	}
	if h.events.count(notify.TypePaymentReceived) != 1 {
		t.Fatalf("payment_received emitted %d times", h.events.count(notify.TypePaymentReceived))
	}
	if h.mailer.count("confirmation") != 1 {
		t.Fatalf("confirmation sent %d times", h.mailer.count("confirmation"))
	}

	status, err := h.svc.Reconcile(context.Background(), webhook(b.BookingCode, "expire"))
	if err != nil {
		t.Fatalf("late failure: %v", err)
	}
	if status != PaymentPaid {
		t.Fatalf("late failure moved a paid booking to %s", status)
	}
	if testutil.SlotAvailable(t, h.db, slotID) {
		t.Fatalf("paid booking must keep its slot")
	}
}

func TestReconcile_FailureReleasesSlot(t *testing.T) {
	h := newHarness(t)
	slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)
	b := h.create(t, slotID, ChoiceFull)

	status, err := h.svc.Reconcile(context.Background(), webhook(b.BookingCode, "deny"))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if status != PaymentCancelled {
		t.Fatalf("status: %s", status)
	}
	b = h.reload(t, b.ID)
	if b.CancellationReason.String != "payment_deny" {
		t.Fatalf("reason: %q", b.CancellationReason.String)
	}
	if !testutil.SlotAvailable(t, h.db, slotID) {
		t.Fatalf("slot should be released")
	}

	status, err = h.svc.Reconcile(context.Background(), webhook(b.BookingCode, "deny"))
	if err != nil {
		t.Fatalf("replayed failure: %v", err)
	}
	if status != PaymentCancelled {
		t.Fatalf("replayed failure status: %s", status)
	}
	if n := h.events.count(notify.TypePaymentFailed); n != 1 {
		t.Fatalf("payment_failed notifications: got %d want 1", n)
	}
	if n := h.mailer.count("cancellation"); n != 1 {
		t.Fatalf("cancellation emails: got %d want 1", n)
	}

	status, err = h.svc.Reconcile(context.Background(), settlement(b.BookingCode))
	if err != nil {
		t.Fatalf("late success: %v", err)
	}
	if status != PaymentCancelled {
		t.Fatalf("late success revived a cancelled booking: %s", status)
	}

	h.create(t, slotID, ChoiceFull)
}

func TestReconcile_PendingAndIgnoredLeaveBookingAlone(t *testing.T) {
	h := newHarness(t)
	slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)
	b := h.create(t, slotID, ChoiceFull)

	for _, status := range []string{"pending", "refund", "authorize"} {
		got, err := h.svc.Reconcile(context.Background(), webhook(b.BookingCode, status))
		if err != nil {
			t.Fatalf("%s: %v", status, err)
		}
		if got != PaymentPending {
			t.Fatalf("%s moved booking to %s", status, got)
		}
	}
}

func TestReconcile_UnknownOrder(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Reconcile(context.Background(), settlement("PDL000000000000000"))
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestPoll(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		queryErr   error
		want       PaymentStatus
		wantReason string
	}{
		{name: "settled", status: "settlement", want: PaymentPaid},
		{name: "still pending", status: "pending", want: PaymentPending},
		{name: "unknown transaction", want: PaymentCancelled, wantReason: "transaction_not_found"},
		{name: "gateway down", queryErr: &payment.GatewayError{StatusCode: 500, Message: "boom"}, want: PaymentCancelled, wantReason: "gateway_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)
			b := h.create(t, slotID, ChoiceFull)
			if tt.status != "" {
				h.gateway.setStatus(b.BookingCode, tt.status)
			}
			h.gateway.queryErr = tt.queryErr

			got, err := h.svc.Poll(context.Background(), b.BookingCode)
			if err != nil {
				t.Fatalf("poll: %v", err)
			}
			if got != tt.want {
				t.Fatalf("status: got %s want %s", got, tt.want)
			}
			if tt.wantReason != "" {
				if reason := h.reload(t, b.ID).CancellationReason.String; reason != tt.wantReason {
					t.Fatalf("reason: got %q want %q", reason, tt.wantReason)
				}
			}
		})
	}
}

func TestPoll_SettledBookingSkipsGateway(t *testing.T) {
	h := newHarness(t)
	slotID := h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false)
	b := h.pay(t, h.create(t, slotID, ChoiceFull))
	h.gateway.queryErr = errors.New("must not be called")

	got, err := h.svc.Poll(context.Background(), b.BookingCode)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if got != PaymentPaid {
		t.Fatalf("status: %s", got)
	}
}

func TestReconcileStalePending(t *testing.T) {
	h := newHarness(t)
	abandoned := h.create(t, h.seedSlot(t, "Court 1", "2026-03-12", "19:00", "20:00", false), ChoiceFull)
	settled := h.create(t, h.seedSlot(t, "Court 2", "2026-03-12", "19:00", "20:00", false), ChoiceFull)
	h.gateway.setStatus(abandoned.BookingCode, "expire")
	h.gateway.setStatus(settled.BookingCode, "settlement")

	h.clock.Set(baseTime.Add(90 * time.Minute))
	fresh := h.create(t, h.seedSlot(t, "Court 3", "2026-03-12", "19:00", "20:00", false), ChoiceFull)

	res, err := h.svc.ReconcileStalePending(context.Background(), baseTime.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("reconcile stale: %v", err)
	}
	if res.Scanned != 2 || res.Paid != 1 || res.Cancelled != 1 {
		t.Fatalf("result: %+v", res)
	}
	if got := h.reload(t, fresh.ID).PaymentStatus; got != string(PaymentPending) {
		t.Fatalf("fresh booking touched: %s", got)
	}
}
