// Package fulfillment delivers redemption benefit requests to external
// systems. The ledger core hands off a request after the redemption debit has
// committed and never observes the delivery outcome.
package fulfillment

// Request names the benefit action to invoke for an account.
type Request struct {
	Account string `json:"account"`
	Benefit string `json:"benefit"`
	Action  string `json:"action"`
}

// Fulfiller accepts benefit fulfillment requests. Implementations must not
// block the caller beyond enqueueing; delivery happens out of band.
type Fulfiller interface {
	Dispatch(req Request) error
}

// Noop discards all fulfillment requests. Used by tests and by nodes running
// without a configured fulfillment endpoint.
type Noop struct{}

// Dispatch implements the Fulfiller interface.
func (Noop) Dispatch(Request) error { return nil }
