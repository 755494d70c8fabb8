package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/db"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
	"github.com/codr1/Padelicious/internal/notify"
)

type SweepResult struct {
	Scanned   int
	Updated   int
	Unchanged int
	Failed    int
	Rules     map[SessionRule]int
}

// SweepSessions applies the automatic session rules to every paid booking
// that is still upcoming or in progress. Each booking is updated in its own
// transaction, so one failure does not hold back the rest. Running the sweep
// twice at the same instant changes nothing the second time.
func (s *Service) SweepSessions(ctx context.Context, now time.Time) (SweepResult, error) {
	res := SweepResult{Rules: make(map[SessionRule]int)}
	candidates, err := s.db.Queries.ListSessionSweepCandidates(ctx)
	if err != nil {
		return res, persistenceError("list sweep candidates", err)
	}

	for _, c := range candidates {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Scanned++

		logger := log.Ctx(ctx).With().Int64("booking_id", c.ID).Str("booking_code", c.BookingCode).Logger()
		w, err := BookingWindow(c.SlotDate, c.SlotStartTime, c.SlotEndTime, s.policy.Location)
		if err != nil {
			res.Failed++
			logger.Error().Err(err).Msg("Skipping booking with unreadable slot times")
			continue
		}

		tr, ok := DeriveSessionState(SessionInput{
			PaymentStatus:        PaymentStatus(c.PaymentStatus),
			SessionStatus:        SessionStatus(c.SessionStatus),
			PaymentChoice:        PaymentChoice(c.PaymentChoice.String),
			VenuePaymentReceived: c.VenuePaymentReceived,
			VenuePaymentExpired:  c.VenuePaymentExpired,
			Window:               w,
		}, now)
		if !ok {
			res.Unchanged++
			continue
		}

		applied, err := s.applyTransition(ctx, c, tr, now)
		if err != nil {
			res.Failed++
			logger.Error().Err(err).Str("rule", string(tr.Rule)).Msg("Failed to apply session transition")
			continue
		}
		if !applied {
			res.Unchanged++
			continue
		}

		res.Updated++
		res.Rules[tr.Rule]++
		logger.Info().
			Str("rule", string(tr.Rule)).
			Str("from", string(tr.From)).
			Str("to", string(tr.To)).
			Msg("Session status advanced")
		s.notifyTransition(ctx, c.ID, tr)
	}

	if res.Updated > 0 || res.Failed > 0 {
		log.Ctx(ctx).Info().
			Int("scanned", res.Scanned).
			Int("updated", res.Updated).
			Int("failed", res.Failed).
			Msg("Session sweep finished")
	}
	return res, nil
}

// applyTransition writes tr for one booking. It reports false when the
// booking moved on since it was read.
func (s *Service) applyTransition(ctx context.Context, c dbgen.ListSessionSweepCandidatesRow, tr SessionTransition, now time.Time) (bool, error) {
	// The write only lands if the booking still matches the state it was read in.
	params := dbgen.TransitionBookingSessionParams{
		SessionStatus:                string(tr.To),
		VenuePaymentExpired:          tr.ExpireDeposit,
		UpdatedAt:                    now.UTC(),
		ID:                           c.ID,
		ExpectedSessionStatus:        string(tr.From),
		ExpectedVenuePaymentReceived: c.VenuePaymentReceived,
	}
	if tr.SetCheckedIn {
		params.CheckedInAt = nullTime(now)
	}
	if tr.SetCheckedOut {
		params.CheckedOutAt = nullTime(now)
	}
	if tr.ExpireDeposit {
		params.CancelledAt = nullTime(now)
		params.CancellationReason = nullString(reasonDepositExpired)
	}

	var applied bool
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		rows, err := tx.Queries.TransitionBookingSession(ctx, params)
		if err != nil {
			return persistenceError("transition session", err)
		}
		if rows == 0 {
			return nil
		}
		applied = true
		if tr.ExpireDeposit {
			return s.ledger.Release(ctx, tx.Queries, c.SlotID, now)
		}
		return nil
	})
	if err != nil {
		return false, asBookingError("transition session", err)
	}
	return applied, nil
}

func (s *Service) notifyTransition(ctx context.Context, bookingID int64, tr SessionTransition) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Int64("booking_id", bookingID).Msg("Could not load booking for notification")
		return
	}
	switch tr.Rule {
	case RuleDepositExpired:
		s.emit(ctx, b, notify.TypeDepositExpired, "Deposit booking expired",
			fmt.Sprintf("%s never paid the %s balance; slot released", b.CustomerName, s.formatAmount(b.RemainingBalance)))
	case RuleAutoStart:
		s.emit(ctx, b, notify.TypeSessionStarted, "Session started", fmt.Sprintf("%s session started", b.CustomerName))
	case RuleAutoCompleteUpcoming, RuleAutoCompleteInProgress:
		s.emit(ctx, b, notify.TypeSessionCompleted, "Session completed", fmt.Sprintf("%s session completed", b.CustomerName))
	}
}
