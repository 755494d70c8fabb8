package booking

import (
	"testing"
	"time"
)

func TestComputeAmounts(t *testing.T) {
	tests := []struct {
		name        string
		price       int64
		policy      Policy
		choice      PaymentChoice
		wantTotal   int64
		wantDeposit int64
		wantBalance int64
		wantFull    int64
	}{
		{
			name:      "full payment without fee",
			price:     200000,
			policy:    Policy{DepositPercentage: 50},
			choice:    ChoiceFull,
			wantTotal: 200000,
			wantFull:  200000,
		},
		{
			name:        "half deposit",
			price:       200000,
			policy:      Policy{DepositPercentage: 50},
			choice:      ChoiceDeposit,
			wantTotal:   100000,
			wantDeposit: 100000,
			wantBalance: 100000,
			wantFull:    200000,
		},
		{
			name:        "deposit rounds half up",
			price:       333335,
			policy:      Policy{DepositPercentage: 30},
			choice:      ChoiceDeposit,
			wantTotal:   100001,
			wantDeposit: 100001,
			wantBalance: 233334,
			wantFull:    333335,
		},
		{
			name:      "flat and proportional fee",
			price:     100000,
			policy:    Policy{DepositPercentage: 50, PaymentFeeFlat: 4000, PaymentFeePercentBps: 70},
			choice:    ChoiceUnspecified,
			wantTotal: 104700,
			wantFull:  104700,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeAmounts(tt.price, tt.policy, tt.choice)
			if err != nil {
				t.Fatalf("ComputeAmounts: %v", err)
			}
			if got.TotalAmount != tt.wantTotal {
				t.Fatalf("total: got %d want %d", got.TotalAmount, tt.wantTotal)
			}
			if got.DepositAmount != tt.wantDeposit {
				t.Fatalf("deposit: got %d want %d", got.DepositAmount, tt.wantDeposit)
			}
			if got.RemainingBalance != tt.wantBalance {
				t.Fatalf("balance: got %d want %d", got.RemainingBalance, tt.wantBalance)
			}
			if got.FullAmount != tt.wantFull {
				t.Fatalf("full: got %d want %d", got.FullAmount, tt.wantFull)
			}
		})
	}
}

func TestComputePaymentSplit_RejectsBadPercentage(t *testing.T) {
	for _, pct := range []int64{0, 100, -5} {
		if _, err := ComputePaymentSplit(100000, pct, ChoiceDeposit); err == nil {
			t.Fatalf("expected error for deposit percentage %d", pct)
		}
	}
}

func TestValidateAmounts_CatchesDrift(t *testing.T) {
	a := Amounts{Subtotal: 100, FullAmount: 100, TotalAmount: 50, DepositAmount: 50, RemainingBalance: 40}
	if err := ValidateAmounts(a, ChoiceDeposit); err == nil {
		t.Fatalf("expected error when deposit and balance do not sum to the full amount")
	}
	a = Amounts{Subtotal: 100, FullAmount: 100, TotalAmount: 90}
	if err := ValidateAmounts(a, ChoiceFull); err == nil {
		t.Fatalf("expected error when full payment undercharges")
	}
}

func TestComputeCancellationRefund(t *testing.T) {
	start := time.Date(2026, 3, 12, 19, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	tests := []struct {
		name         string
		status       PaymentStatus
		now          time.Time
		wantEligible bool
		wantAmount   int64
	}{
		{"well before start", PaymentPaid, start.Add(-48 * time.Hour), true, 150000},
		{"exactly at the window", PaymentPaid, start.Add(-24 * time.Hour), false, 0},
		{"inside the window", PaymentPaid, start.Add(-2 * time.Hour), false, 0},
		{"after start", PaymentPaid, start.Add(time.Hour), false, 0},
		{"unpaid booking", PaymentPending, start.Add(-72 * time.Hour), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCancellationRefund(CancellationInput{
				PaymentStatus: tt.status,
				TotalAmount:   150000,
				Start:         start,
			}, tt.now, window)
			if got.Eligible != tt.wantEligible || got.Amount != tt.wantAmount {
				t.Fatalf("got eligible=%v amount=%d, want eligible=%v amount=%d",
					got.Eligible, got.Amount, tt.wantEligible, tt.wantAmount)
			}
		})
	}
}

func TestValidateAdminRefundAmount(t *testing.T) {
	if err := ValidateAdminRefundAmount(0, 1000); KindOf(err) != KindValidation {
		t.Fatalf("zero amount: got %v", err)
	}
	if err := ValidateAdminRefundAmount(1001, 1000); KindOf(err) != KindValidation {
		t.Fatalf("over total: got %v", err)
	}
	if err := ValidateAdminRefundAmount(1000, 1000); err != nil {
		t.Fatalf("full refund: %v", err)
	}
}
