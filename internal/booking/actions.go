package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/db"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
	"github.com/codr1/Padelicious/internal/notify"
)

// CheckIn moves a paid, upcoming booking to IN_PROGRESS.
func (s *Service) CheckIn(ctx context.Context, bookingID int64, actor string) (dbgen.Booking, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return dbgen.Booking{}, err
	}
	if err := checkInAllowed(b); err != nil {
		return b, err
	}

	now := s.now()
	rows, err := s.db.Queries.TransitionBookingSession(ctx, dbgen.TransitionBookingSessionParams{
		SessionStatus:         string(SessionInProgress),
		CheckedInAt:           nullTime(now),
		UpdatedAt:             now.UTC(),
		ID:                    b.ID,
		ExpectedSessionStatus: string(SessionUpcoming),
	})
	if err != nil {
		return b, persistenceError("check in booking", err)
	}
	if rows == 0 {
		return s.raceOutcome(ctx, b.ID, checkInAllowed)
	}

	log.Ctx(ctx).Info().Int64("booking_id", b.ID).Str("actor", actor).Msg("Booking checked in")
	b, err = s.GetBooking(ctx, b.ID)
	if err != nil {
		return b, err
	}
	s.emit(ctx, b, notify.TypeCheckedIn, "Checked in", fmt.Sprintf("%s checked in by %s", b.CustomerName, actorOrSystem(actor)))
	return b, nil
}

func checkInAllowed(b dbgen.Booking) error {
	switch SessionStatus(b.SessionStatus) {
	case SessionInProgress:
		return ErrAlreadyCheckedIn
	case SessionCompleted:
		return ErrSessionOver
	case SessionCancelled:
		return ErrBookingCancelled
	}
	if PaymentStatus(b.PaymentStatus) != PaymentPaid {
		return ErrPaymentNotSettled
	}
	return nil
}

// CheckOut moves an in-progress booking to COMPLETED.
func (s *Service) CheckOut(ctx context.Context, bookingID int64, actor string) (dbgen.Booking, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return dbgen.Booking{}, err
	}
	if err := checkOutAllowed(b); err != nil {
		return b, err
	}

	now := s.now()
	rows, err := s.db.Queries.TransitionBookingSession(ctx, dbgen.TransitionBookingSessionParams{
		SessionStatus:         string(SessionCompleted),
		CheckedOutAt:          nullTime(now),
		UpdatedAt:             now.UTC(),
		ID:                    b.ID,
		ExpectedSessionStatus: string(SessionInProgress),
	})
	if err != nil {
		return b, persistenceError("check out booking", err)
	}
	if rows == 0 {
		return s.raceOutcome(ctx, b.ID, checkOutAllowed)
	}

	log.Ctx(ctx).Info().Int64("booking_id", b.ID).Str("actor", actor).Msg("Booking checked out")
	b, err = s.GetBooking(ctx, b.ID)
	if err != nil {
		return b, err
	}
	s.emit(ctx, b, notify.TypeCheckedOut, "Checked out", fmt.Sprintf("%s checked out by %s", b.CustomerName, actorOrSystem(actor)))
	return b, nil
}

func checkOutAllowed(b dbgen.Booking) error {
	switch SessionStatus(b.SessionStatus) {
	case SessionCompleted:
		return ErrAlreadyCheckedOut
	case SessionUpcoming:
		return ErrNotCheckedIn
	case SessionCancelled:
		return ErrBookingCancelled
	}
	return nil
}

// raceOutcome explains a conditional write that matched no row by re-reading
// the booking and re-running the precondition.
func (s *Service) raceOutcome(ctx context.Context, id int64, allowed func(dbgen.Booking) error) (dbgen.Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return dbgen.Booking{}, err
	}
	if err := allowed(b); err != nil {
		return b, err
	}
	return b, ErrConcurrentUpdate
}

type AdminCancelInput struct {
	Reason       string
	RefundAmount int64
	RefundMethod string
	Actor        string
}

// AdminCancel cancels an upcoming booking on behalf of staff. A positive
// refund amount, bounded by the amount paid, marks the booking REFUNDED;
// otherwise it is CANCELLED. The slot is released either way.
func (s *Service) AdminCancel(ctx context.Context, bookingID int64, in AdminCancelInput) (dbgen.Booking, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return dbgen.Booking{}, validationError("reason", "reason is required")
	}
	if in.RefundAmount < 0 {
		return dbgen.Booking{}, validationError("refundAmount", "refund amount cannot be negative")
	}

	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return dbgen.Booking{}, err
	}
	if err := cancelAllowed(b); err != nil {
		return b, err
	}
	if in.RefundAmount > 0 {
		if PaymentStatus(b.PaymentStatus) != PaymentPaid {
			return b, ErrPaymentNotSettled
		}
		if err := ValidateAdminRefundAmount(in.RefundAmount, b.TotalAmount); err != nil {
			return b, err
		}
	}

	now := s.now()
	params := dbgen.CancelBookingParams{
		PaymentStatus:         string(PaymentCancelled),
		CancelledAt:           nullTime(now),
		CancellationReason:    nullString(reason),
		UpdatedAt:             now.UTC(),
		ID:                    b.ID,
		ExpectedPaymentStatus: b.PaymentStatus,
	}
	if in.RefundAmount > 0 {
		params.PaymentStatus = string(PaymentRefunded)
		params.RefundStatus = nullString(string(RefundProcessed))
		params.RefundAmount = in.RefundAmount
		params.RefundDate = nullTime(now)
		params.RefundReason = nullString(reason)
		params.RefundMethod = nullString(strings.TrimSpace(in.RefundMethod))
	}

	b, err = s.cancel(ctx, b, params)
	if err != nil {
		return b, err
	}

	log.Ctx(ctx).Info().
		Int64("booking_id", b.ID).
		Str("actor", in.Actor).
		Int64("refund_amount", in.RefundAmount).
		Msg("Booking cancelled by staff")

	if in.RefundAmount > 0 {
		s.emit(ctx, b, notify.TypeRefundIssued, "Booking cancelled with refund",
			fmt.Sprintf("%s refunded %s: %s", b.CustomerName, s.formatAmount(in.RefundAmount), reason))
	} else {
		s.emit(ctx, b, notify.TypeBookingCancelled, "Booking cancelled", fmt.Sprintf("%s: %s", b.CustomerName, reason))
	}
	s.mailer.SendCancellationNotice(ctx, s.emailDetails(ctx, b))
	return b, nil
}

func cancelAllowed(b dbgen.Booking) error {
	if PaymentStatus(b.PaymentStatus).Terminal() {
		return ErrAlreadyCancelled
	}
	switch SessionStatus(b.SessionStatus) {
	case SessionCancelled:
		return ErrAlreadyCancelled
	case SessionInProgress:
		return ErrSessionActive
	case SessionCompleted:
		return ErrSessionCompleted
	}
	return nil
}

// cancel applies a cancellation write, releases the slot, and closes any
// open payment attempt, all in one transaction.
func (s *Service) cancel(ctx context.Context, b dbgen.Booking, params dbgen.CancelBookingParams) (dbgen.Booking, error) {
	now := s.now()
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		rows, err := tx.Queries.CancelBooking(ctx, params)
		if err != nil {
			return persistenceError("cancel booking", err)
		}
		if rows == 0 {
			current, err := loadBookingByID(ctx, tx.Queries, b.ID)
			if err != nil {
				return err
			}
			if err := cancelAllowed(current); err != nil {
				return err
			}
			return ErrConcurrentUpdate
		}
		if err := s.ledger.Release(ctx, tx.Queries, b.SlotID, now); err != nil {
			return err
		}
		if PaymentStatus(b.PaymentStatus) == PaymentPending {
			if _, err := tx.Queries.SettlePendingPayments(ctx, dbgen.SettlePendingPaymentsParams{
				Status:        "FAILED",
				GatewayStatus: nullString("cancelled"),
				UpdatedAt:     now.UTC(),
				BookingID:     b.ID,
			}); err != nil {
				return persistenceError("close payment attempt", err)
			}
		}
		return nil
	})
	if err != nil {
		return b, asBookingError("cancel booking", err)
	}
	return s.GetBooking(ctx, b.ID)
}

type RefundInput struct {
	Amount int64
	Reason string
	Method string
	Actor  string
}

// Refund records an admin refund of a paid booking. Only one refund may
// succeed per booking. The session is cancelled unless it already
// completed, and the slot is released.
func (s *Service) Refund(ctx context.Context, bookingID int64, in RefundInput) (dbgen.Booking, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return dbgen.Booking{}, validationError("reason", "reason is required")
	}

	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return dbgen.Booking{}, err
	}
	if err := refundAllowed(b); err != nil {
		return b, err
	}
	if err := ValidateAdminRefundAmount(in.Amount, b.TotalAmount); err != nil {
		return b, err
	}

	now := s.now()
	err = s.db.RunInTx(ctx, func(tx *db.DB) error {
		rows, err := tx.Queries.RefundBooking(ctx, dbgen.RefundBookingParams{
			RefundDate:   nullTime(now),
			RefundStatus: nullString(string(RefundProcessed)),
			RefundAmount: in.Amount,
			RefundReason: nullString(reason),
			RefundMethod: nullString(strings.TrimSpace(in.Method)),
			UpdatedAt:    now.UTC(),
			ID:           b.ID,
		})
		if err != nil {
			return persistenceError("refund booking", err)
		}
		if rows == 0 {
			current, err := loadBookingByID(ctx, tx.Queries, b.ID)
			if err != nil {
				return err
			}
			if err := refundAllowed(current); err != nil {
				return err
			}
			return ErrConcurrentUpdate
		}
		if SessionStatus(b.SessionStatus) != SessionCompleted {
			return s.ledger.Release(ctx, tx.Queries, b.SlotID, now)
		}
		return nil
	})
	if err != nil {
		return b, asBookingError("refund booking", err)
	}

	log.Ctx(ctx).Info().
		Int64("booking_id", b.ID).
		Str("actor", in.Actor).
		Int64("refund_amount", in.Amount).
		Msg("Booking refunded")

	b, err = s.GetBooking(ctx, b.ID)
	if err != nil {
		return b, err
	}
	s.emit(ctx, b, notify.TypeRefundIssued, "Refund issued",
		fmt.Sprintf("%s refunded %s: %s", b.CustomerName, s.formatAmount(in.Amount), reason))
	details := s.emailDetails(ctx, b)
	details.Reason = reason
	s.mailer.SendRefundNotice(ctx, details)
	return b, nil
}

func refundAllowed(b dbgen.Booking) error {
	if b.RefundStatus.Valid || PaymentStatus(b.PaymentStatus) == PaymentRefunded {
		return ErrAlreadyRefunded
	}
	if PaymentStatus(b.PaymentStatus) != PaymentPaid {
		return ErrPaymentNotSettled
	}
	return nil
}

type CancellationResult struct {
	Booking  dbgen.Booking
	Refund   RefundDecision
	Refunded bool
}

// CustomerCancel lets a customer cancel their own booking, identified by
// reference and email. A paid booking cancelled more than the refund window
// before its start is refunded in full; otherwise no refund is owed.
func (s *Service) CustomerCancel(ctx context.Context, code, customerEmail, reason string) (CancellationResult, error) {
	b, err := s.GetBookingByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return CancellationResult{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(customerEmail), b.CustomerEmail) {
		return CancellationResult{}, ErrBookingNotFound
	}
	if err := cancelAllowed(b); err != nil {
		return CancellationResult{Booking: b}, err
	}

	slot, err := loadSlot(ctx, s.db.Queries, b.SlotID)
	if err != nil {
		return CancellationResult{Booking: b}, err
	}
	w, err := s.window(slot)
	if err != nil {
		return CancellationResult{Booking: b}, persistenceError("resolve slot window", err)
	}

	now := s.now()
	decision := ComputeCancellationRefund(CancellationInput{
		PaymentStatus: PaymentStatus(b.PaymentStatus),
		TotalAmount:   b.TotalAmount,
		Start:         w.Start,
	}, now, s.policy.RefundWindow)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Cancelled by customer"
	}
	params := dbgen.CancelBookingParams{
		PaymentStatus:         string(PaymentCancelled),
		CancelledAt:           nullTime(now),
		CancellationReason:    nullString(reason),
		UpdatedAt:             now.UTC(),
		ID:                    b.ID,
		ExpectedPaymentStatus: b.PaymentStatus,
	}
	if decision.Eligible && decision.Amount > 0 {
		params.PaymentStatus = string(PaymentRefunded)
		params.RefundStatus = nullString(string(RefundPending))
		params.RefundAmount = decision.Amount
		params.RefundDate = nullTime(now)
		params.RefundReason = nullString(reason)
	}

	b, err = s.cancel(ctx, b, params)
	if err != nil {
		return CancellationResult{Booking: b}, err
	}

	res := CancellationResult{
		Booking:  b,
		Refund:   decision,
		Refunded: PaymentStatus(b.PaymentStatus) == PaymentRefunded,
	}
	log.Ctx(ctx).Info().
		Int64("booking_id", b.ID).
		Bool("refund_eligible", decision.Eligible).
		Float64("hours_until_start", decision.HoursUntilStart).
		Msg("Booking cancelled by customer")

	msg := fmt.Sprintf("%s cancelled %.0fh before start, no refund", b.CustomerName, decision.HoursUntilStart)
	if res.Refunded {
		msg = fmt.Sprintf("%s cancelled %.0fh before start, refund of %s owed", b.CustomerName, decision.HoursUntilStart, s.formatAmount(decision.Amount))
	}
	s.emit(ctx, b, notify.TypeBookingCancelled, "Customer cancellation", msg)
	s.mailer.SendCancellationNotice(ctx, s.emailDetails(ctx, b))
	return res, nil
}

type VenuePaymentInput struct {
	Amount     int64
	Method     string
	RecordedBy string
}

// RecordVenuePayment records collection of a deposit booking's balance at
// the venue. The amount must match the outstanding balance exactly; the
// venue payment row and the booking update commit together or not at all.
func (s *Service) RecordVenuePayment(ctx context.Context, bookingID int64, in VenuePaymentInput) (dbgen.Booking, error) {
	method := strings.TrimSpace(in.Method)
	if method == "" {
		return dbgen.Booking{}, validationError("method", "payment method is required")
	}
	recordedBy := strings.TrimSpace(in.RecordedBy)
	if recordedBy == "" {
		return dbgen.Booking{}, validationError("recordedBy", "recorder is required")
	}

	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return dbgen.Booking{}, err
	}
	if err := venuePaymentAllowed(b); err != nil {
		return b, err
	}
	if in.Amount != b.RemainingBalance {
		return b, validationError("amount", fmt.Sprintf("amount must equal the remaining balance (%d)", b.RemainingBalance))
	}

	if err := s.storeVenuePayment(ctx, b, in.Amount, method, recordedBy, s.now()); err != nil {
		return b, asBookingError("record venue payment", err)
	}

	log.Ctx(ctx).Info().
		Int64("booking_id", b.ID).
		Int64("amount", in.Amount).
		Str("method", method).
		Msg("Venue payment recorded")

	b, err = s.GetBooking(ctx, b.ID)
	if err != nil {
		return b, err
	}
	s.emit(ctx, b, notify.TypeVenuePayment, "Venue payment received",
		fmt.Sprintf("%s paid %s at the venue (%s)", b.CustomerName, s.formatAmount(in.Amount), method))
	return b, nil
}

// storeVenuePayment inserts the venue payment row and settles the booking
// balance in one transaction. b is the snapshot the caller validated; if the
// booking changed since, nothing is written.
func (s *Service) storeVenuePayment(ctx context.Context, b dbgen.Booking, amount int64, method, recordedBy string, now time.Time) error {
	return s.db.RunInTx(ctx, func(tx *db.DB) error {
		if _, err := tx.Queries.CreateVenuePayment(ctx, dbgen.CreateVenuePaymentParams{
			BookingID:  b.ID,
			Amount:     amount,
			Method:     method,
			RecordedBy: recordedBy,
			PaidAt:     now.UTC(),
			CreatedAt:  now.UTC(),
		}); err != nil {
			if db.IsUniqueViolation(err) {
				return ErrVenuePaymentRecorded
			}
			return persistenceError("record venue payment", err)
		}
		rows, err := tx.Queries.RecordBookingVenuePayment(ctx, dbgen.RecordBookingVenuePaymentParams{
			VenuePaymentAmount: amount,
			VenuePaymentMethod: nullString(method),
			VenuePaymentDate:   nullTime(now),
			UpdatedAt:          now.UTC(),
			ID:                 b.ID,
		})
		if err != nil {
			return persistenceError("update booking balance", err)
		}
		if rows == 0 {
			current, err := loadBookingByID(ctx, tx.Queries, b.ID)
			if err != nil {
				return err
			}
			if err := venuePaymentAllowed(current); err != nil {
				return err
			}
			return ErrConcurrentUpdate
		}
		return nil
	})
}

func venuePaymentAllowed(b dbgen.Booking) error {
	if PaymentStatus(b.PaymentStatus) != PaymentPaid {
		return ErrPaymentNotSettled
	}
	if PaymentChoice(b.PaymentChoice.String) != ChoiceDeposit {
		return ErrNotDepositBooking
	}
	if b.VenuePaymentReceived {
		return ErrVenuePaymentRecorded
	}
	if b.VenuePaymentExpired {
		return ErrDepositExpired
	}
	return nil
}

func actorOrSystem(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return "system"
	}
	return actor
}
