package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/db"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
	"github.com/codr1/Padelicious/internal/notify"
	"github.com/codr1/Padelicious/internal/payment"
)

type CreateBookingInput struct {
	SlotID        int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PaymentChoice string
	Notes         string
}

const maxNotesLength = 500

// CreateBooking claims the slot and records a PENDING booking in one
// transaction. Amounts are derived from the slot price and the venue policy.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (dbgen.Booking, error) {
	logger := log.Ctx(ctx).With().Int64("slot_id", in.SlotID).Logger()

	if in.SlotID <= 0 {
		return dbgen.Booking{}, validationError("slotId", "slotId must be a positive integer")
	}
	name, err := normalizeName(in.CustomerName)
	if err != nil {
		return dbgen.Booking{}, validationError("customerName", err.Error())
	}
	emailAddr, err := NormalizeEmail(in.CustomerEmail)
	if err != nil {
		return dbgen.Booking{}, validationError("customerEmail", err.Error())
	}
	phone, err := NormalizePhone(in.CustomerPhone, s.policy.PhoneRegion)
	if err != nil {
		return dbgen.Booking{}, validationError("customerPhone", err.Error())
	}
	choice, err := ParsePaymentChoice(in.PaymentChoice)
	if err != nil {
		return dbgen.Booking{}, validationError("paymentChoice", err.Error())
	}
	notes := strings.TrimSpace(in.Notes)
	if len(notes) > maxNotesLength {
		return dbgen.Booking{}, validationError("notes", fmt.Sprintf("notes must be at most %d characters", maxNotesLength))
	}

	now := s.now()
	var created dbgen.Booking
	err = s.db.RunInTx(ctx, func(tx *db.DB) error {
		slot, err := loadSlot(ctx, tx.Queries, in.SlotID)
		if err != nil {
			return err
		}
		w, err := s.window(slot)
		if err != nil {
			return persistenceError("resolve slot window", err)
		}
		if !now.Before(w.Start) {
			return validationError("slotId", "slot has already started")
		}
		if choice == ChoiceDeposit && !slot.DepositEligible {
			return validationError("paymentChoice", "deposit payment is not offered for this slot")
		}
		amounts, err := ComputeAmounts(slot.Price, s.policy, choice)
		if err != nil {
			return validationError("paymentChoice", err.Error())
		}

		if err := s.ledger.Claim(ctx, tx.Queries, slot.ID, now); err != nil {
			return err
		}

		code, err := generateBookingCode(ctx, tx.Queries, now.In(s.policy.Location))
		if err != nil {
			return err
		}

		created, err = tx.Queries.CreateBooking(ctx, dbgen.CreateBookingParams{
			BookingCode:      code,
			SlotID:           slot.ID,
			CustomerName:     name,
			CustomerEmail:    emailAddr,
			CustomerPhone:    phone,
			Subtotal:         amounts.Subtotal,
			PaymentFee:       amounts.PaymentFee,
			TotalAmount:      amounts.TotalAmount,
			DepositAmount:    amounts.DepositAmount,
			RemainingBalance: amounts.RemainingBalance,
			FullAmount:       amounts.FullAmount,
			PaymentChoice:    nullString(string(choice)),
			Notes:            nullString(notes),
			CreatedAt:        now.UTC(),
			UpdatedAt:        now.UTC(),
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrSlotTaken
			}
			return persistenceError("create booking", err)
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindConflict {
			logger.Info().Msg("Slot already claimed")
		}
		return dbgen.Booking{}, asBookingError("create booking", err)
	}

	logger.Info().
		Int64("booking_id", created.ID).
		Str("booking_code", created.BookingCode).
		Int64("total_amount", created.TotalAmount).
		Msg("Booking created")

	s.emit(ctx, created, notify.TypeBookingCreated, "New booking",
		fmt.Sprintf("%s booked slot %d, %s due online", created.CustomerName, created.SlotID, s.formatAmount(created.TotalAmount)))

	return created, nil
}

// StartCheckout opens a hosted checkout for a PENDING booking and records the
// payment attempt. If the gateway refuses, the booking is resolved as a
// failed payment, which cancels it and releases the slot.
func (s *Service) StartCheckout(ctx context.Context, b dbgen.Booking) (dbgen.Booking, error) {
	logger := log.Ctx(ctx).With().Str("booking_code", b.BookingCode).Logger()

	if PaymentStatus(b.PaymentStatus) != PaymentPending {
		return b, ErrCheckoutClosed
	}
	slot, err := loadSlot(ctx, s.db.Queries, b.SlotID)
	if err != nil {
		return b, err
	}
	if s.gateway == nil {
		return b, gatewayError(fmt.Errorf("no payment gateway configured"))
	}

	first, last := splitName(b.CustomerName)
	gwCtx, cancel := s.gatewayContext(ctx)
	defer cancel()
	result, err := s.gateway.CreateTransaction(gwCtx, payment.Checkout{
		OrderRef: b.BookingCode,
		Amount:   b.TotalAmount,
		Customer: payment.Customer{
			FirstName: first,
			LastName:  last,
			Email:     b.CustomerEmail,
			Phone:     b.CustomerPhone,
		},
		Items: []payment.Item{{
			ID:       fmt.Sprintf("slot-%d", slot.ID),
			Name:     fmt.Sprintf("%s %s %s-%s", slot.CourtName, slot.Date, slot.StartTime, slot.EndTime),
			Price:    b.TotalAmount,
			Quantity: 1,
		}},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create gateway checkout")
		if _, rErr := s.Reconcile(ctx, payment.FailureSignal(payment.SourceCheckout, b.BookingCode, "checkout_failed")); rErr != nil {
			logger.Error().Err(rErr).Msg("Failed to cancel booking after checkout failure")
		}
		return b, gatewayError(err)
	}

	now := s.now().UTC()
	err = s.db.RunInTx(ctx, func(tx *db.DB) error {
		rows, err := tx.Queries.SetBookingCheckout(ctx, dbgen.SetBookingCheckoutParams{
			PaymentToken:       nullString(result.Token),
			PaymentRedirectUrl: nullString(result.RedirectURL),
			UpdatedAt:          now,
			ID:                 b.ID,
		})
		if err != nil {
			return persistenceError("store checkout", err)
		}
		if rows == 0 {
			// Settled by a webhook before we got here.
			return nil
		}
		if _, err := tx.Queries.CreatePayment(ctx, dbgen.CreatePaymentParams{
			BookingID:   b.ID,
			OrderRef:    b.BookingCode,
			GrossAmount: b.TotalAmount,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return persistenceError("record payment attempt", err)
		}
		return nil
	})
	if err != nil {
		return b, asBookingError("store checkout", err)
	}

	logger.Info().Msg("Checkout started")
	return loadBookingByID(ctx, s.db.Queries, b.ID)
}

func (s *Service) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.policy.GatewayTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.policy.GatewayTimeout)
}
