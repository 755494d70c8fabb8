package booking

import (
	"context"
	"testing"
	"time"

	"github.com/codr1/Padelicious/internal/notify"
	"github.com/codr1/Padelicious/internal/testutil"
)

func TestSweepSessions_DepositLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	fullSlot := h.seedSlot(t, "Court 1", "2026-03-10", "10:00", "11:00", true)
	owingSlot := h.seedSlot(t, "Court 2", "2026-03-10", "10:00", "11:00", true)
	settledSlot := h.seedSlot(t, "Court 3", "2026-03-10", "10:00", "11:00", true)

	full := h.pay(t, h.create(t, fullSlot, ChoiceFull))
	owing := h.pay(t, h.create(t, owingSlot, ChoiceDeposit))
	settled := h.pay(t, h.create(t, settledSlot, ChoiceDeposit))
	if _, err := h.svc.RecordVenuePayment(ctx, settled.ID, VenuePaymentInput{
		Amount: settled.RemainingBalance, Method: "cash", RecordedBy: "desk",
	}); err != nil {
		t.Fatalf("record venue payment: %v", err)
	}

	before, err := h.svc.SweepSessions(ctx, baseTime)
	if err != nil {
		t.Fatalf("sweep before start: %v", err)
	}
	if before.Scanned != 3 || before.Updated != 0 {
		t.Fatalf("sweep before start: %+v", before)
	}

	during := time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)
	res, err := h.svc.SweepSessions(ctx, during)
	if err != nil {
		t.Fatalf("sweep during: %v", err)
	}
	if res.Updated != 2 || res.Unchanged != 1 || res.Rules[RuleAutoStart] != 2 {
		t.Fatalf("sweep during: %+v", res)
	}
	if got := h.reload(t, owing.ID).SessionStatus; got != string(SessionUpcoming) {
		t.Fatalf("deposit with balance outstanding started: %s", got)
	}

	again, err := h.svc.SweepSessions(ctx, during)
	if err != nil {
		t.Fatalf("repeat sweep: %v", err)
	}
	if again.Updated != 0 {
		t.Fatalf("repeat sweep changed state: %+v", again)
	}

	end := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	res, err = h.svc.SweepSessions(ctx, end)
	if err != nil {
		t.Fatalf("sweep at end: %v", err)
	}
	if res.Updated != 3 || res.Rules[RuleAutoCompleteInProgress] != 2 || res.Rules[RuleDepositExpired] != 1 {
		t.Fatalf("sweep at end: %+v", res)
	}

	expired := h.reload(t, owing.ID)
	if expired.SessionStatus != string(SessionCancelled) || !expired.VenuePaymentExpired {
		t.Fatalf("deposit booking not expired: %s expired=%v", expired.SessionStatus, expired.VenuePaymentExpired)
	}
	if expired.PaymentStatus != string(PaymentPaid) || expired.CancellationReason.String != "deposit_expired" {
		t.Fatalf("expired booking: %s %q", expired.PaymentStatus, expired.CancellationReason.String)
	}
	if !testutil.SlotAvailable(t, h.db, owingSlot) {
		t.Fatalf("expired deposit should release its slot")
	}
	for _, id := range []int64{full.ID, settled.ID} {
		if got := h.reload(t, id); got.SessionStatus != string(SessionCompleted) || !got.CheckedOutAt.Valid {
			t.Fatalf("booking %d: %s", id, got.SessionStatus)
		}
	}
	if h.events.count(notify.TypeDepositExpired) != 1 || h.events.count(notify.TypeSessionCompleted) != 2 {
		t.Fatalf("sweep notifications missing")
	}

	final, err := h.svc.SweepSessions(ctx, end)
	if err != nil {
		t.Fatalf("final sweep: %v", err)
	}
	if final.Scanned != 0 || final.Updated != 0 {
		t.Fatalf("final sweep: %+v", final)
	}

	if _, err := h.svc.RecordVenuePayment(ctx, owing.ID, VenuePaymentInput{
		Amount: owing.RemainingBalance, Method: "cash", RecordedBy: "desk",
	}); KindOf(err) != KindGone {
		t.Fatalf("venue payment after expiry: %v", err)
	}
}

func TestSweepSessions_VenuePaymentAfterReadVoidsExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	slotID := h.seedSlot(t, "Court 1", "2026-03-10", "10:00", "11:00", true)
	b := h.pay(t, h.create(t, slotID, ChoiceDeposit))

	candidates, err := h.db.Queries.ListSessionSweepCandidates(ctx)
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != b.ID {
		t.Fatalf("candidates: %+v", candidates)
	}
	stale := candidates[0]

	if _, err := h.svc.RecordVenuePayment(ctx, b.ID, VenuePaymentInput{
		Amount: b.RemainingBalance, Method: "cash", RecordedBy: "desk",
	}); err != nil {
		t.Fatalf("record venue payment: %v", err)
	}

	end := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	w, err := BookingWindow(stale.SlotDate, stale.SlotStartTime, stale.SlotEndTime, h.svc.policy.Location)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	tr, ok := DeriveSessionState(SessionInput{
		PaymentStatus:        PaymentStatus(stale.PaymentStatus),
		SessionStatus:        SessionStatus(stale.SessionStatus),
		PaymentChoice:        PaymentChoice(stale.PaymentChoice.String),
		VenuePaymentReceived: stale.VenuePaymentReceived,
		VenuePaymentExpired:  stale.VenuePaymentExpired,
		Window:               w,
	}, end)
	if !ok || tr.Rule != RuleDepositExpired {
		t.Fatalf("stale row should derive deposit expiry, got %+v ok=%v", tr, ok)
	}

	applied, err := h.svc.applyTransition(ctx, stale, tr, end)
	if err != nil {
		t.Fatalf("apply transition: %v", err)
	}
	if applied {
		t.Fatalf("expiry applied to a booking whose balance was already collected")
	}
	got := h.reload(t, b.ID)
	if got.VenuePaymentExpired || got.SessionStatus != string(SessionUpcoming) || !got.VenuePaymentReceived {
		t.Fatalf("booking after voided expiry: session=%s expired=%v received=%v", got.SessionStatus, got.VenuePaymentExpired, got.VenuePaymentReceived)
	}
	if testutil.SlotAvailable(t, h.db, slotID) {
		t.Fatalf("settled booking lost its slot")
	}
	if h.events.count(notify.TypeDepositExpired) != 0 {
		t.Fatalf("deposit_expired emitted for a settled booking")
	}

	res, err := h.svc.SweepSessions(ctx, end)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Rules[RuleAutoCompleteUpcoming] != 1 {
		t.Fatalf("sweep after venue payment: %+v", res)
	}
	if got := h.reload(t, b.ID).SessionStatus; got != string(SessionCompleted) {
		t.Fatalf("session: %s", got)
	}
}

func TestSweepSessions_CompletesMissedSession(t *testing.T) {
	h := newHarness(t)
	b := h.pay(t, h.create(t, h.seedSlot(t, "Court 1", "2026-03-10", "10:00", "11:00", false), ChoiceFull))

	res, err := h.svc.SweepSessions(context.Background(), time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Rules[RuleAutoCompleteUpcoming] != 1 {
		t.Fatalf("sweep: %+v", res)
	}
	got := h.reload(t, b.ID)
	if got.SessionStatus != string(SessionCompleted) || got.CheckedInAt.Valid || !got.CheckedOutAt.Valid {
		t.Fatalf("missed session: %s in=%v out=%v", got.SessionStatus, got.CheckedInAt.Valid, got.CheckedOutAt.Valid)
	}
}

func TestSweepSessions_IgnoresUnpaidBookings(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, h.seedSlot(t, "Court 1", "2026-03-10", "10:00", "11:00", false), ChoiceFull)

	res, err := h.svc.SweepSessions(context.Background(), time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Scanned != 0 {
		t.Fatalf("unpaid booking swept: %+v", res)
	}
	if got := h.reload(t, b.ID).SessionStatus; got != string(SessionUpcoming) {
		t.Fatalf("session: %s", got)
	}
}

func TestSendDueReminders(t *testing.T) {
	h := newHarness(t)
	soon := h.pay(t, h.create(t, h.seedSlot(t, "Court 1", "2026-03-11", "08:00", "09:00", false), ChoiceFull))
	h.pay(t, h.create(t, h.seedSlot(t, "Court 2", "2026-03-12", "19:00", "20:00", false), ChoiceFull))
	h.create(t, h.seedSlot(t, "Court 3", "2026-03-11", "08:00", "09:00", false), ChoiceFull)

	sent, err := h.svc.SendDueReminders(context.Background(), baseTime)
	if err != nil {
		t.Fatalf("send reminders: %v", err)
	}
	if sent != 1 || h.mailer.count("reminder") != 1 {
		t.Fatalf("sent %d reminders", sent)
	}
	if h.mailer.calls["reminder"][0].BookingCode != soon.BookingCode {
		t.Fatalf("reminded the wrong booking")
	}

	sent, err = h.svc.SendDueReminders(context.Background(), baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("send reminders again: %v", err)
	}
	if sent != 0 {
		t.Fatalf("reminder repeated")
	}
}
