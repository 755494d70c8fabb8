package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codr1/Padelicious/internal/db"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
	"github.com/codr1/Padelicious/internal/email"
	"github.com/codr1/Padelicious/internal/notify"
	"github.com/codr1/Padelicious/internal/payment"
)

// Mailer sends customer-facing booking emails. Implementations must not
// block the caller on delivery.
type Mailer interface {
	SendConfirmation(ctx context.Context, d email.BookingDetails)
	SendReminder(ctx context.Context, d email.BookingDetails)
	SendCancellationNotice(ctx context.Context, d email.BookingDetails)
	SendRefundNotice(ctx context.Context, d email.BookingDetails)
}

type nopMailer struct{}

func (nopMailer) SendConfirmation(context.Context, email.BookingDetails) {}
func (nopMailer) SendReminder(context.Context, email.BookingDetails) {}
func (nopMailer) SendCancellationNotice(context.Context, email.BookingDetails) {}
func (nopMailer) SendRefundNotice(context.Context, email.BookingDetails) {}

// Policy holds the venue's commercial rules.
type Policy struct {
	DepositPercentage    int64
	PaymentFeeFlat       int64
	PaymentFeePercentBps int64
	RefundWindow         time.Duration
	CheckoutExpiry       time.Duration
	GatewayTimeout       time.Duration
	ReminderLead         time.Duration
	PhoneRegion          string
	Currency             string
	Location             *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		DepositPercentage: 50,
		RefundWindow:      24 * time.Hour,
		CheckoutExpiry:    time.Hour,
		GatewayTimeout:    10 * time.Second,
		ReminderLead:      24 * time.Hour,
		PhoneRegion:       "ID",
		Currency:          "IDR",
		Location:          time.UTC,
	}
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service coordinates the booking lifecycle over the database, the payment
// gateway, and the notification and email collaborators.
type Service struct {
	db       *db.DB
	ledger   Ledger
	gateway  payment.Gateway
	notifier notify.Emitter
	mailer   Mailer
	policy   Policy
	now      func() time.Time
}

func NewService(database *db.DB, gateway payment.Gateway, notifier notify.Emitter, mailer Mailer, policy Policy, opts ...Option) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if mailer == nil {
		mailer = nopMailer{}
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	s := &Service{
		db:       database,
		gateway:  gateway,
		notifier: notifier,
		mailer:   mailer,
		policy:   policy,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Now is the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// GetBooking loads a booking by ID.
func (s *Service) GetBooking(ctx context.Context, id int64) (dbgen.Booking, error) {
	return loadBookingByID(ctx, s.db.Queries, id)
}

// GetBookingByCode loads a booking by its customer-facing reference.
func (s *Service) GetBookingByCode(ctx context.Context, code string) (dbgen.Booking, error) {
	b, err := s.db.Queries.GetBookingByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Booking{}, ErrBookingNotFound
		}
		return dbgen.Booking{}, persistenceError("load booking", err)
	}
	return b, nil
}

// ListBookings pages through bookings, newest first, optionally filtered by
// payment status.
func (s *Service) ListBookings(ctx context.Context, status PaymentStatus, limit, offset int64) ([]dbgen.Booking, error) {
	switch status {
	case "", PaymentPending, PaymentPaid, PaymentCancelled, PaymentRefunded:
	default:
		return nil, validationError("payment_status", fmt.Sprintf("unknown payment status %q", status))
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	bookings, err := s.db.Queries.ListBookings(ctx, dbgen.ListBookingsParams{
		PaymentStatus: string(status),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, persistenceError("list bookings", err)
	}
	return bookings, nil
}

// ListSlots returns every slot on date with its court and availability.
func (s *Service) ListSlots(ctx context.Context, date string) ([]dbgen.ListSlotsByDateRow, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, validationError("date", "date must be YYYY-MM-DD")
	}
	slots, err := s.db.Queries.ListSlotsByDate(ctx, date)
	if err != nil {
		return nil, persistenceError("list slots", err)
	}
	return slots, nil
}

func loadBookingByID(ctx context.Context, q *dbgen.Queries, id int64) (dbgen.Booking, error) {
	b, err := q.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Booking{}, ErrBookingNotFound
		}
		return dbgen.Booking{}, persistenceError("load booking", err)
	}
	return b, nil
}

func loadSlot(ctx context.Context, q *dbgen.Queries, id int64) (dbgen.GetSlotByIDRow, error) {
	slot, err := q.GetSlotByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.GetSlotByIDRow{}, ErrSlotNotFound
		}
		return dbgen.GetSlotByIDRow{}, persistenceError("load slot", err)
	}
	return slot, nil
}

func (s *Service) window(slot dbgen.GetSlotByIDRow) (SessionWindow, error) {
	return BookingWindow(slot.Date, slot.StartTime, slot.EndTime, s.policy.Location)
}

// emailDetails builds the customer email view. A missing slot leaves the
// session fields blank rather than suppressing the email.
func (s *Service) emailDetails(ctx context.Context, b dbgen.Booking) email.BookingDetails {
	d := email.BookingDetails{
		BookingCode:      b.BookingCode,
		CustomerName:     b.CustomerName,
		CustomerEmail:    b.CustomerEmail,
		Currency:         s.policy.Currency,
		TotalAmount:      b.TotalAmount,
		RemainingBalance: b.RemainingBalance,
		DepositPayment:   PaymentChoice(b.PaymentChoice.String) == ChoiceDeposit,
		RefundAmount:     b.RefundAmount,
		Reason:           b.CancellationReason.String,
	}
	slot, err := s.db.Queries.GetSlotByID(ctx, b.SlotID)
	if err != nil {
		return d
	}
	d.CourtName = slot.CourtName
	if w, err := s.window(slot); err == nil {
		d.Date = w.Start.Format("Monday, Jan 2, 2006")
		d.TimeRange = fmt.Sprintf("%s - %s", w.Start.Format("15:04"), w.End.Format("15:04"))
	}
	return d
}

func (s *Service) emit(ctx context.Context, b dbgen.Booking, typ notify.Type, title, message string) {
	s.notifier.Notify(ctx, notify.Notification{
		BookingID:   b.ID,
		BookingCode: b.BookingCode,
		Type:        typ,
		Title:       title,
		Message:     message,
		OccurredAt:  s.now().UTC(),
	})
}

func (s *Service) formatAmount(amount int64) string {
	return email.FormatAmount(amount, s.policy.Currency)
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
