package checkout

import "strings"

// Step is the checkout page the client is showing. The server reports it
// back but never enforces the order of steps.
type Step string

const (
	StepDetails      Step = "details"
	StepDelivery     Step = "delivery"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

var Steps = []Step{StepDetails, StepDelivery, StepPayment, StepConfirmation}

// ParseStep maps a query value to a Step, defaulting to details.
func ParseStep(s string) Step {
	st := Step(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Steps {
		if v == st {
			return st
		}
	}
	return StepDetails
}
