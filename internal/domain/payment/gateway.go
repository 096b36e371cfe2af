package payment

import "context"

type OutcomeKind string

const (
	OutcomeSuccess            OutcomeKind = "success"
	OutcomeDeclined           OutcomeKind = "declined"
	OutcomePresentationFailed OutcomeKind = "presentation_failed"
	OutcomeCancelled          OutcomeKind = "cancelled"
)

// Outcome is the single answer a gateway gives for one authorization.
type Outcome struct {
	Kind      OutcomeKind
	Reason    string
	Reference string
}

func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess
}

// Gateway authorizes charges. Authorize returns at once; the channel
// receives exactly one Outcome and is then closed.
type Gateway interface {
	IsAvailable(ctx context.Context) bool
	Authorize(ctx context.Context, amount float64, description string) <-chan Outcome
}

// Deliver sends o on a fresh buffered channel and closes it. Adapters use
// it to report synchronous results through the async contract.
func Deliver(o Outcome) <-chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- o
	close(ch)
	return ch
}
