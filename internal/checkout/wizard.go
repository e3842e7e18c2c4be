package checkout

import "errors"

// Step is a stage of the checkout flow. Transitions only move one step at a
// time and each forward move is guarded.
type Step int

const (
	StepDeliveryInfo Step = iota
	StepReview
	StepPayment
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepDeliveryInfo:
		return "delivery_info"
	case StepReview:
		return "review"
	case StepPayment:
		return "payment"
	case StepSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

var (
	ErrStepBlocked  = errors.New("checkout: current step has unresolved problems")
	ErrOTPRequired  = errors.New("checkout: phone verification required before payment")
	ErrFlowFinished = errors.New("checkout: flow already submitted")
	ErrCannotGoBack = errors.New("checkout: no previous step")
)

// Wizard tracks progress through the checkout steps. It holds no order data
// itself; callers feed it the gate outcomes for the current step.
type Wizard struct {
	step        Step
	otpRequired bool
}

func NewWizard(otpRequired bool) *Wizard {
	return &Wizard{step: StepDeliveryInfo, otpRequired: otpRequired}
}

func (w *Wizard) Step() Step { return w.step }

// Advance moves forward one step. Leaving the delivery step requires an empty
// field-error map, and leaving the payment step requires phone verification
// when the store demands it.
func (w *Wizard) Advance(fieldErrors map[string]string, otpVerified bool) error {
	switch w.step {
	case StepDeliveryInfo:
		if len(fieldErrors) > 0 {
			return ErrStepBlocked
		}
		w.step = StepReview
	case StepReview:
		w.step = StepPayment
	case StepPayment:
		if w.otpRequired && !otpVerified {
			return ErrOTPRequired
		}
		w.step = StepSubmitted
	case StepSubmitted:
		return ErrFlowFinished
	}
	return nil
}

// Back returns to the previous step. A submitted flow cannot be reopened.
func (w *Wizard) Back() error {
	switch w.step {
	case StepDeliveryInfo:
		return ErrCannotGoBack
	case StepSubmitted:
		return ErrFlowFinished
	default:
		w.step--
	}
	return nil
}
