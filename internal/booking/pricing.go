package booking

import (
	"fmt"
	"time"
)

// PaymentSplit is how a booking's full amount is divided between the online
// payment and the balance collected at the venue.
type PaymentSplit struct {
	DepositAmount    int64
	RemainingBalance int64
}

// ComputePaymentSplit divides fullAmount for the given choice. A deposit is
// rounded half-up to the whole currency unit; the balance takes the rest so
// the two always sum to fullAmount. FULL and unspecified choices carry no
// deposit.
func ComputePaymentSplit(fullAmount, depositPercentage int64, choice PaymentChoice) (PaymentSplit, error) {
	if fullAmount < 0 {
		return PaymentSplit{}, fmt.Errorf("full amount cannot be negative")
	}
	if choice != ChoiceDeposit {
		return PaymentSplit{}, nil
	}
	if depositPercentage <= 0 || depositPercentage >= 100 {
		return PaymentSplit{}, fmt.Errorf("deposit percentage must be between 1 and 99, got %d", depositPercentage)
	}
	deposit := (fullAmount*depositPercentage + 50) / 100
	return PaymentSplit{
		DepositAmount:    deposit,
		RemainingBalance: fullAmount - deposit,
	}, nil
}

// ComputePaymentFee returns the gateway fee for subtotal: a flat part plus a
// proportional part in basis points, rounded half-up.
func ComputePaymentFee(subtotal, flat, percentBps int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	return flat + (subtotal*percentBps+5000)/10000
}

// Amounts is the monetary breakdown persisted on a booking.
type Amounts struct {
	Subtotal         int64
	PaymentFee       int64
	FullAmount       int64
	TotalAmount      int64
	DepositAmount    int64
	RemainingBalance int64
}

// ComputeAmounts derives the full breakdown from a slot price.
func ComputeAmounts(price int64, policy Policy, choice PaymentChoice) (Amounts, error) {
	fee := ComputePaymentFee(price, policy.PaymentFeeFlat, policy.PaymentFeePercentBps)
	full := price + fee
	split, err := ComputePaymentSplit(full, policy.DepositPercentage, choice)
	if err != nil {
		return Amounts{}, err
	}
	total := full
	if choice == ChoiceDeposit {
		total = split.DepositAmount
	}
	a := Amounts{
		Subtotal:         price,
		PaymentFee:       fee,
		FullAmount:       full,
		TotalAmount:      total,
		DepositAmount:    split.DepositAmount,
		RemainingBalance: split.RemainingBalance,
	}
	return a, ValidateAmounts(a, choice)
}

// ValidateAmounts checks the balance invariants of a breakdown.
func ValidateAmounts(a Amounts, choice PaymentChoice) error {
	if a.Subtotal < 0 || a.PaymentFee < 0 || a.TotalAmount < 0 || a.DepositAmount < 0 || a.RemainingBalance < 0 {
		return fmt.Errorf("amounts cannot be negative")
	}
	if a.FullAmount != a.Subtotal+a.PaymentFee {
		return fmt.Errorf("full amount %d does not equal subtotal %d plus fee %d", a.FullAmount, a.Subtotal, a.PaymentFee)
	}
	if choice == ChoiceDeposit {
		if a.DepositAmount+a.RemainingBalance != a.FullAmount {
			return fmt.Errorf("deposit %d plus balance %d does not equal full amount %d", a.DepositAmount, a.RemainingBalance, a.FullAmount)
		}
		if a.RemainingBalance != a.FullAmount-a.TotalAmount {
			return fmt.Errorf("balance %d does not equal full amount %d minus total %d", a.RemainingBalance, a.FullAmount, a.TotalAmount)
		}
		return nil
	}
	if a.TotalAmount != a.FullAmount || a.RemainingBalance != 0 {
		return fmt.Errorf("full payment must charge the full amount with no balance")
	}
	return nil
}

type CancellationInput struct {
	PaymentStatus PaymentStatus
	TotalAmount   int64
	Start         time.Time
}

type RefundDecision struct {
	Eligible        bool
	Amount          int64
	HoursUntilStart float64
}

// ComputeCancellationRefund applies the self-service policy: a paid booking
// cancelled strictly more than window before its start is refunded in full;
// anything later, or any unpaid booking, gets nothing.
func ComputeCancellationRefund(in CancellationInput, now time.Time, window time.Duration) RefundDecision {
	until := in.Start.Sub(now)
	d := RefundDecision{HoursUntilStart: until.Hours()}
	if in.PaymentStatus != PaymentPaid {
		return d
	}
	if until > window {
		d.Eligible = true
		d.Amount = in.TotalAmount
	}
	return d
}

// ValidateAdminRefundAmount enforces 0 < amount <= total for admin refunds.
func ValidateAdminRefundAmount(amount, total int64) error {
	if amount <= 0 {
		return validationError("amount", "refund amount must be positive")
	}
	if amount > total {
		return validationError("amount", fmt.Sprintf("refund amount cannot exceed the amount paid (%d)", total))
	}
	return nil
}
