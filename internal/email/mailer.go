package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const sendTimeout = 5 * time.Second

// Mailer sends booking emails in the background. Delivery failures are
// logged and never reach the caller.
type Mailer struct {
	client       EmailSender
	sender       string
	facilityName string
	timeout      time.Duration
}

// NewMailer returns a Mailer over client. A nil client yields a Mailer that
// drops every message.
func NewMailer(client EmailSender, sender, facilityName string) *Mailer {
	return &Mailer{
		client:       client,
		sender:       sender,
		facilityName: facilityName,
		timeout:      sendTimeout,
	}
}

func (m *Mailer) SendConfirmation(ctx context.Context, d BookingDetails) {
	m.dispatch(ctx, "confirmation", d, BuildConfirmationEmail)
}

func (m *Mailer) SendReminder(ctx context.Context, d BookingDetails) {
	m.dispatch(ctx, "reminder", d, BuildReminderEmail)
}

func (m *Mailer) SendCancellationNotice(ctx context.Context, d BookingDetails) {
	m.dispatch(ctx, "cancellation", d, BuildCancellationEmail)
}

func (m *Mailer) SendRefundNotice(ctx context.Context, d BookingDetails) {
	m.dispatch(ctx, "refund", d, BuildRefundEmail)
}

func (m *Mailer) dispatch(ctx context.Context, kind string, d BookingDetails, build func(BookingDetails) Message) {
	if m == nil || m.client == nil {
		return
	}
	recipient := strings.TrimSpace(d.CustomerEmail)
	if recipient == "" {
		return
	}
	if d.FacilityName == "" {
		d.FacilityName = m.facilityName
	}
	msg := build(d)

	go func() {
		sendCtx, cancel := newEmailContext(ctx, m.timeout)
		defer cancel()
		logger := log.Ctx(sendCtx).With().
			Str("email_kind", kind).
			Str("booking_code", d.BookingCode).
			Logger()
		if err := m.client.SendFrom(sendCtx, recipient, msg.Subject, msg.Body, m.sender); err != nil {
			logger.Error().Err(err).Msg("Failed to send booking email")
			return
		}
		logger.Info().Msg("Booking email sent")
	}()
}

// newEmailContext detaches from the caller's cancellation so a finished HTTP
// request does not abort an in-flight send, while keeping its values.
func newEmailContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
