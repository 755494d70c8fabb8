package booking

import (
	"fmt"
	"strings"
	"time"
)

// SessionWindow is the wall-clock interval a slot covers.
type SessionWindow struct {
	Start time.Time
	End   time.Time
}

// BookingWindow resolves a slot's date and "HH:MM" (or "HH:MM:SS") times in
// loc. An end at or before the start is read as ending the next day.
func BookingWindow(date, startTime, endTime string, loc *time.Location) (SessionWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
	if err != nil {
		return SessionWindow{}, fmt.Errorf("invalid slot date %q: %w", date, err)
	}
	start, err := clockOffset(startTime)
	if err != nil {
		return SessionWindow{}, fmt.Errorf("invalid slot start time: %w", err)
	}
	end, err := clockOffset(endTime)
	if err != nil {
		return SessionWindow{}, fmt.Errorf("invalid slot end time: %w", err)
	}
	if end <= start {
		end += 24 * time.Hour
	}
	return SessionWindow{
		Start: atOffset(day, start, loc),
		End:   atOffset(day, end, loc),
	}, nil
}

func clockOffset(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("%q is not HH:MM", raw)
}

// atOffset builds the local wall-clock time offset from midnight of day, so
// DST shifts move the instant rather than the displayed time.
func atOffset(day time.Time, offset time.Duration, loc *time.Location) time.Time {
	days := int(offset / (24 * time.Hour))
	rem := offset % (24 * time.Hour)
	return time.Date(day.Year(), day.Month(), day.Day()+days,
		int(rem/time.Hour), int(rem%time.Hour/time.Minute), int(rem%time.Minute/time.Second), 0, loc)
}

// SessionRule names the automatic transition that fired for a booking.
type SessionRule string

const (
	RuleNone                   SessionRule = ""
	RuleDepositExpired         SessionRule = "deposit_expired"
	RuleAutoCompleteUpcoming   SessionRule = "auto_complete_upcoming"
	RuleAutoStart              SessionRule = "auto_start"
	RuleAutoCompleteInProgress SessionRule = "auto_complete_in_progress"
)

// SessionInput is everything the session rules read from a booking.
type SessionInput struct {
	PaymentStatus        PaymentStatus
	SessionStatus        SessionStatus
	PaymentChoice        PaymentChoice
	VenuePaymentReceived bool
	VenuePaymentExpired  bool
	Window               SessionWindow
}

// SessionTransition is the change a sweep should apply.
type SessionTransition struct {
	Rule          SessionRule
	From          SessionStatus
	To            SessionStatus
	ExpireDeposit bool
	SetCheckedIn  bool
	SetCheckedOut bool
}

func (in SessionInput) depositOutstanding() bool {
	return in.PaymentChoice == ChoiceDeposit && !in.VenuePaymentReceived
}

// DeriveSessionState returns the transition the rules require at now, if
// any. Rules are evaluated in precedence order and at most one fires:
//
//  1. a paid deposit booking whose balance was never collected expires once
//     its end time passes;
//  2. an upcoming paid booking whose end time passed completes without a
//     check-in stamp, so the no-show stays visible;
//  3. an upcoming paid booking inside its window starts, unless its deposit
//     balance is still outstanding;
//  4. an in-progress booking whose end time passed completes.
//
// Applying the returned transition and calling again with the same now
// yields no further transition.
func DeriveSessionState(in SessionInput, now time.Time) (SessionTransition, bool) {
	if in.SessionStatus.Terminal() || in.VenuePaymentExpired {
		return SessionTransition{}, false
	}
	ended := !now.Before(in.Window.End)
	paid := in.PaymentStatus == PaymentPaid

	if paid && ended && in.depositOutstanding() {
		return SessionTransition{
			Rule:          RuleDepositExpired,
			From:          in.SessionStatus,
			To:            SessionCancelled,
			ExpireDeposit: true,
		}, true
	}

	if in.SessionStatus == SessionUpcoming && paid {
		if ended {
			return SessionTransition{
				Rule:          RuleAutoCompleteUpcoming,
				From:          SessionUpcoming,
				To:            SessionCompleted,
				SetCheckedOut: true,
			}, true
		}
		if !now.Before(in.Window.Start) && !in.depositOutstanding() {
			return SessionTransition{
				Rule:         RuleAutoStart,
				From:         SessionUpcoming,
				To:           SessionInProgress,
				SetCheckedIn: true,
			}, true
		}
	}

	if in.SessionStatus == SessionInProgress && ended {
		return SessionTransition{
			Rule:          RuleAutoCompleteInProgress,
			From:          SessionInProgress,
			To:            SessionCompleted,
			SetCheckedOut: true,
		}, true
	}

	return SessionTransition{}, false
}
