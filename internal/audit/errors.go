package audit

import "fmt"

// Validation failure reasons, each a distinct user-reportable message.
const (
	ReasonNoDataset = "no dataset loaded"
	ReasonNoX       = "no X column selected"
	ReasonNoY       = "no Y column selected"
	ReasonEmptyRows = "working row set is empty"
)

// ValidationError aborts the current trigger only; the orchestrator
// returns to idle and no Analysis Result is produced.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("audit blocked: %s", e.Reason)
}

// ComputationError wraps a failure inside a computation run. The
// orchestrator recovers from background-path failures transparently
// via the synchronous fallback; only a failure of the fallback itself
// surfaces.
type ComputationError struct {
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed: %v", e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
