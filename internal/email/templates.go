package email

import (
	"fmt"
	"strconv"
	"strings"
)

type Message struct {
	Subject string
	Body    string
}

// BookingDetails is the customer-facing view of a booking used by every
// booking email.
type BookingDetails struct {
	FacilityName     string
	BookingCode      string
	CustomerName     string
	CustomerEmail    string
	CourtName        string
	Date             string
	TimeRange        string
	Currency         string
	TotalAmount      int64
	RemainingBalance int64
	DepositPayment   bool
	RefundAmount     int64
	Reason           string
}

// FormatAmount renders a whole-unit amount. Rupiah uses the local
// "Rp200.000" form; other currencies use comma grouping with the code suffix.
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	sep := ","
	if currency == "" || currency == "IDR" {
		sep = "."
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	if currency == "" || currency == "IDR" {
		return sign + "Rp" + b.String()
	}
	return fmt.Sprintf("%s%s %s", sign, b.String(), currency)
}

func orTBD(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "TBD"
	}
	return value
}

func (d BookingDetails) facility() string {
	name := strings.TrimSpace(d.FacilityName)
	if name == "" {
		return "Padelicious"
	}
	return name
}

func (d BookingDetails) greeting() string {
	name := strings.TrimSpace(d.CustomerName)
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

func (d BookingDetails) sessionLines() []string {
	return []string{
		fmt.Sprintf("Booking code: %s", orTBD(d.BookingCode)),
		fmt.Sprintf("Court: %s", orTBD(d.CourtName)),
		fmt.Sprintf("Date: %s", orTBD(d.Date)),
		fmt.Sprintf("Time: %s", orTBD(d.TimeRange)),
	}
}

func BuildConfirmationEmail(d BookingDetails) Message {
	lines := []string{
		d.greeting(),
		"",
		fmt.Sprintf("Your court booking at %s is confirmed.", d.facility()),
		"",
	}
	lines = append(lines, d.sessionLines()...)
	lines = append(lines, fmt.Sprintf("Paid online: %s", FormatAmount(d.TotalAmount, d.Currency)))
	if d.DepositPayment && d.RemainingBalance > 0 {
		lines = append(lines,
			fmt.Sprintf("Balance due at the venue: %s", FormatAmount(d.RemainingBalance, d.Currency)),
			"Please settle the balance before your session starts.",
		)
	}

	return Message{
		Subject: fmt.Sprintf("Booking Confirmed - %s", d.facility()),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildReminderEmail(d BookingDetails) Message {
	lines := []string{
		d.greeting(),
		"",
		"This is a reminder of your upcoming padel session.",
		"",
	}
	lines = append(lines, d.sessionLines()...)
	if d.DepositPayment && d.RemainingBalance > 0 {
		lines = append(lines, fmt.Sprintf("Balance due at the venue: %s", FormatAmount(d.RemainingBalance, d.Currency)))
	}

	return Message{
		Subject: fmt.Sprintf("Session Reminder - %s", d.facility()),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildCancellationEmail(d BookingDetails) Message {
	lines := []string{
		d.greeting(),
		"",
		"Your court booking has been cancelled.",
		"",
	}
	lines = append(lines, d.sessionLines()...)
	if reason := strings.TrimSpace(d.Reason); reason != "" {
		lines = append(lines, fmt.Sprintf("Reason: %s", reason))
	}
	if d.RefundAmount > 0 {
		lines = append(lines, fmt.Sprintf("Refund: %s", FormatAmount(d.RefundAmount, d.Currency)))
	} else {
		lines = append(lines, "Refund: not eligible")
	}

	return Message{
		Subject: fmt.Sprintf("Booking Cancelled - %s", d.facility()),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildRefundEmail(d BookingDetails) Message {
	lines := []string{
		d.greeting(),
		"",
		fmt.Sprintf("A refund of %s has been issued for your booking.", FormatAmount(d.RefundAmount, d.Currency)),
		"",
	}
	lines = append(lines, d.sessionLines()...)
	if reason := strings.TrimSpace(d.Reason); reason != "" {
		lines = append(lines, fmt.Sprintf("Reason: %s", reason))
	}

	return Message{
		Subject: fmt.Sprintf("Refund Issued - %s", d.facility()),
		Body:    strings.Join(lines, "\n"),
	}
}
