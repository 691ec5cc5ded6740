package domain

type TransitionOutcome int

const (
	TransitionCommitted TransitionOutcome = iota
	TransitionAborted
)

func (o TransitionOutcome) String() string {
	if o == TransitionCommitted {
		return "committed"
	}
	return "aborted"
}

// TransitionResult is the outcome of moving a product between visibility lists.
// An aborted transition carries the reason and left no trace in the store.
type TransitionResult struct {
	Outcome TransitionOutcome
	From    ProductStatus
	To      ProductStatus
	Reason  error
}

func Committed(from, to ProductStatus) TransitionResult {
	return TransitionResult{Outcome: TransitionCommitted, From: from, To: to}
}

func Aborted(from, to ProductStatus, reason error) TransitionResult {
	return TransitionResult{Outcome: TransitionAborted, From: from, To: to, Reason: reason}
}

func (r TransitionResult) IsCommitted() bool {
	return r.Outcome == TransitionCommitted
}

// Err returns nil for a committed transition and the abort reason otherwise.
func (r TransitionResult) Err() error {
	if r.IsCommitted() {
		return nil
	}
	return r.Reason
}
