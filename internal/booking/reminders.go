package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	dbgen "github.com/codr1/Padelicious/internal/db/generated"
	"github.com/codr1/Padelicious/internal/email"
)

// SendDueReminders emails every paid, upcoming booking whose session starts
// within the reminder lead time. A booking is reminded at most once.
func (s *Service) SendDueReminders(ctx context.Context, now time.Time) (int, error) {
	local := now.In(s.policy.Location)
	horizon := local.Add(s.policy.ReminderLead)
	rows, err := s.db.Queries.ListReminderCandidates(ctx, dbgen.ListReminderCandidatesParams{
		FromDate: local.Format("2006-01-02"),
		ToDate:   horizon.Format("2006-01-02"),
	})
	if err != nil {
		return 0, persistenceError("list reminder candidates", err)
	}

	sent := 0
	for _, r := range rows {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		w, err := BookingWindow(r.SlotDate, r.SlotStartTime, r.SlotEndTime, s.policy.Location)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Int64("booking_id", r.ID).Msg("Skipping reminder for unreadable slot times")
			continue
		}
		if !w.Start.After(now) || w.Start.After(horizon) {
			continue
		}

		claimed, err := s.db.Queries.MarkReminderSent(ctx, dbgen.MarkReminderSentParams{
			ReminderSentAt: nullTime(now),
			ID:             r.ID,
		})
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Int64("booking_id", r.ID).Msg("Failed to mark reminder sent")
			continue
		}
		if claimed == 0 {
			continue
		}

		s.mailer.SendReminder(ctx, email.BookingDetails{
			BookingCode:      r.BookingCode,
			CustomerName:     r.CustomerName,
			CustomerEmail:    r.CustomerEmail,
			CourtName:        r.CourtName,
			Date:             w.Start.Format("Monday, Jan 2, 2006"),
			TimeRange:        fmt.Sprintf("%s - %s", w.Start.Format("15:04"), w.End.Format("15:04")),
			Currency:         s.policy.Currency,
			TotalAmount:      r.TotalAmount,
			RemainingBalance: r.RemainingBalance,
			DepositPayment:   PaymentChoice(r.PaymentChoice.String) == ChoiceDeposit,
		})
		sent++
	}

	if sent > 0 {
		log.Ctx(ctx).Info().Int("count", sent).Msg("Sent session reminders")
	}
	return sent, nil
}
