package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/db"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
	"github.com/codr1/Padelicious/internal/notify"
	"github.com/codr1/Padelicious/internal/payment"
)

// Reconcile applies a payment signal to the booking it refers to. It is the
// only way a booking leaves PENDING because of a payment, so webhooks,
// redirect polls, and the stale-checkout job all converge on the same
// result. Replaying a signal, or delivering conflicting signals after the
// booking settled, returns the settled status without side effects.
func (s *Service) Reconcile(ctx context.Context, sig payment.Signal) (PaymentStatus, error) {
	ref := strings.TrimSpace(sig.OrderRef)
	if ref == "" {
		return "", validationError("order_id", "order reference is required")
	}
	logger := log.Ctx(ctx).With().
		Str("order_ref", ref).
		Str("signal_source", string(sig.Source)).
		Str("signal_outcome", sig.Outcome.String()).
		Logger()

	now := s.now()
	var (
		booking dbgen.Booking
		result  PaymentStatus
		applied bool
	)
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		b, err := tx.Queries.GetBookingByCode(ctx, ref)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBookingNotFound
			}
			return persistenceError("load booking", err)
		}
		booking = b
		result = PaymentStatus(b.PaymentStatus)
		if result != PaymentPending {
			if sig.Outcome == payment.OutcomeSuccess && result.Terminal() {
				logger.Warn().
					Str("payment_status", string(result)).
					Msg("Payment succeeded for a booking that is no longer payable")
			}
			return nil
		}

		switch sig.Outcome {
		case payment.OutcomeSuccess:
			rows, err := tx.Queries.MarkBookingPaid(ctx, dbgen.MarkBookingPaidParams{
				PaidAt:    nullTime(now),
				UpdatedAt: now.UTC(),
				ID:        b.ID,
			})
			if err != nil {
				return persistenceError("mark booking paid", err)
			}
			if rows == 0 {
				return s.reloadStatus(ctx, tx.Queries, b.ID, &result)
			}
			if err := settlePayments(ctx, tx.Queries, b.ID, "SUCCESS", sig, now); err != nil {
				return err
			}
			result, applied = PaymentPaid, true

		case payment.OutcomeFailure:
			reason := sig.Reason
			if reason == "" {
				reason = reasonPaymentFailed
			}
			rows, err := tx.Queries.MarkBookingPaymentFailed(ctx, dbgen.MarkBookingPaymentFailedParams{
				CancelledAt:        nullTime(now),
				CancellationReason: nullString(reason),
				UpdatedAt:          now.UTC(),
				ID:                 b.ID,
			})
			if err != nil {
				return persistenceError("cancel unpaid booking", err)
			}
			if rows == 0 {
				return s.reloadStatus(ctx, tx.Queries, b.ID, &result)
			}
			if err := s.ledger.Release(ctx, tx.Queries, b.SlotID, now); err != nil {
				return err
			}
			if err := settlePayments(ctx, tx.Queries, b.ID, "FAILED", sig, now); err != nil {
				return err
			}
			booking.CancellationReason = nullString(reason)
			result, applied = PaymentCancelled, true
		}
		return nil
	})
	if err != nil {
		return "", asBookingError("reconcile payment", err)
	}

	if !applied {
		logger.Debug().Str("payment_status", string(result)).Msg("Payment signal produced no transition")
		return result, nil
	}

	logger.Info().
		Int64("booking_id", booking.ID).
		Str("payment_status", string(result)).
		Msg("Payment reconciled")

	booking.PaymentStatus = string(result)
	switch result {
	case PaymentPaid:
		s.emit(ctx, booking, notify.TypePaymentReceived, "Payment received",
			fmt.Sprintf("%s paid %s online", booking.CustomerName, s.formatAmount(booking.TotalAmount)))
		s.mailer.SendConfirmation(ctx, s.emailDetails(ctx, booking))
	case PaymentCancelled:
		s.emit(ctx, booking, notify.TypePaymentFailed, "Payment failed",
			fmt.Sprintf("Booking cancelled and slot released (%s)", booking.CancellationReason.String))
		s.mailer.SendCancellationNotice(ctx, s.emailDetails(ctx, booking))
	}
	return result, nil
}

func (s *Service) reloadStatus(ctx context.Context, q *dbgen.Queries, id int64, out *PaymentStatus) error {
	b, err := loadBookingByID(ctx, q, id)
	if err != nil {
		return err
	}
	*out = PaymentStatus(b.PaymentStatus)
	return nil
}

func settlePayments(ctx context.Context, q *dbgen.Queries, bookingID int64, status string, sig payment.Signal, now time.Time) error {
	_, err := q.SettlePendingPayments(ctx, dbgen.SettlePendingPaymentsParams{
		Status:        status,
		TransactionID: nullString(sig.Status.TransactionID),
		PaymentType:   nullString(sig.Status.PaymentType),
		FraudStatus:   nullString(sig.Status.FraudStatus),
		GatewayStatus: nullString(sig.Status.TransactionStatus),
		UpdatedAt:     now.UTC(),
		BookingID:     bookingID,
	})
	if err != nil {
		return persistenceError("settle payment records", err)
	}
	return nil
}

// Poll asks the gateway for the current status of orderRef and reconciles
// it. A transaction the gateway does not know, or a gateway that cannot be
// reached in time, resolves the booking as a failed payment.
func (s *Service) Poll(ctx context.Context, orderRef string) (PaymentStatus, error) {
	b, err := s.GetBookingByCode(ctx, strings.TrimSpace(orderRef))
	if err != nil {
		return "", err
	}
	if current := PaymentStatus(b.PaymentStatus); current != PaymentPending {
		return current, nil
	}
	return s.Reconcile(ctx, s.querySignal(ctx, payment.SourcePoll, b.BookingCode))
}

func (s *Service) querySignal(ctx context.Context, source payment.Source, orderRef string) payment.Signal {
	if s.gateway == nil {
		return payment.FailureSignal(source, orderRef, "gateway_error")
	}
	gwCtx, cancel := s.gatewayContext(ctx)
	defer cancel()

	status, err := s.gateway.QueryStatus(gwCtx, orderRef)
	switch {
	case errors.Is(err, payment.ErrTransactionNotFound):
		return payment.FailureSignal(source, orderRef, "transaction_not_found")
	case err != nil:
		log.Ctx(ctx).Warn().Err(err).Str("order_ref", orderRef).Msg("Payment status query failed")
		return payment.FailureSignal(source, orderRef, "gateway_error")
	}
	if status.OrderRef == "" {
		status.OrderRef = orderRef
	}
	return payment.SignalFromStatus(source, status)
}

type PendingResult struct {
	Scanned      int
	Paid         int
	Cancelled    int
	StillPending int
	Failed       int
}

// ReconcileStalePending polls every booking still PENDING after the checkout
// expiry, so abandoned checkouts release their slots even when neither a
// webhook nor a redirect ever arrives.
func (s *Service) ReconcileStalePending(ctx context.Context, now time.Time) (PendingResult, error) {
	var res PendingResult
	cutoff := now.Add(-s.policy.CheckoutExpiry).UTC()
	stale, err := s.db.Queries.ListStalePendingBookings(ctx, cutoff)
	if err != nil {
		return res, persistenceError("list stale bookings", err)
	}

	for _, b := range stale {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Scanned++
		status, err := s.Reconcile(ctx, s.querySignal(ctx, payment.SourceSweep, b.BookingCode))
		if err != nil {
			res.Failed++
			log.Ctx(ctx).Error().Err(err).Str("booking_code", b.BookingCode).Msg("Failed to reconcile stale booking")
			continue
		}
		switch status {
		case PaymentPaid:
			res.Paid++
		case PaymentCancelled:
			res.Cancelled++
		default:
			res.StillPending++
		}
	}
	return res, nil
}
