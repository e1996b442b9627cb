package chat

import "fmt"

type FaultKind string

const (
	FaultStorage    FaultKind = "storage"
	FaultGeneration FaultKind = "generation"
)

// Fault is any failure inside Handle. Callers outside the package only ever
// see ApologyReply; the kind is kept for logs, metrics and tests.
type Fault struct {
	Kind FaultKind
	Op   string
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault during %s: %v", f.Kind, f.Op, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

func storageFault(op string, err error) error {
	return &Fault{Kind: FaultStorage, Op: op, Err: err}
}

func generationFault(op string, err error) error {
	return &Fault{Kind: FaultGeneration, Op: op, Err: err}
}
