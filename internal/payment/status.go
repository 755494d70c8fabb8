package payment

import "strings"

// Outcome is the reconciler-facing meaning of a gateway status.
type Outcome int

const (
	// OutcomeIgnored covers statuses that must not move a booking, such as
	// refunds reported after the fact.
	OutcomeIgnored Outcome = iota
	OutcomePending
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "ignored"
	}
}

// Classify maps a gateway transaction status onto an Outcome.
func Classify(s TransactionStatus) Outcome {
	fraud := strings.ToLower(strings.TrimSpace(s.FraudStatus))
	switch strings.ToLower(strings.TrimSpace(s.TransactionStatus)) {
	case "settlement":
		return OutcomeSuccess
	case "capture":
		switch fraud {
		case "", "accept":
			return OutcomeSuccess
		case "challenge":
			return OutcomePending
		default:
			return OutcomeFailure
		}
	case "pending":
		return OutcomePending
	case "deny", "cancel", "expire", "failure":
		return OutcomeFailure
	default:
		return OutcomeIgnored
	}
}

// Source records which channel produced a Signal.
type Source string

const (
	SourceWebhook  Source = "webhook"
	SourcePoll     Source = "poll"
	SourceCheckout Source = "checkout"
	SourceSweep    Source = "sweep"
)

// Signal is a normalized payment observation for one order.
type Signal struct {
	OrderRef string
	Source   Source
	Outcome  Outcome
	Status   TransactionStatus
	Reason   string
}

// SignalFromStatus classifies status into a Signal.
func SignalFromStatus(source Source, status TransactionStatus) Signal {
	outcome := Classify(status)
	reason := ""
	if outcome == OutcomeFailure {
		reason = "payment_" + strings.ToLower(strings.TrimSpace(status.TransactionStatus))
	}
	return Signal{
		OrderRef: status.OrderRef,
		Source:   source,
		Outcome:  outcome,
		Status:   status,
		Reason:   reason,
	}
}

// FailureSignal builds a failure Signal for orders the gateway cannot vouch
// for, such as unknown transactions or unreachable gateways.
func FailureSignal(source Source, orderRef, reason string) Signal {
	return Signal{
		OrderRef: orderRef,
		Source:   source,
		Outcome:  OutcomeFailure,
		Status:   TransactionStatus{OrderRef: orderRef},
		Reason:   reason,
	}
}
