package payment

import "fmt"

// ProcessorError wraps a failed processor call. It carries the idempotency
// key that was used so the caller can retry the exact same operation.
type ProcessorError struct {
	Op             string
	IdempotencyKey string
	Err            error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("payment processor %s failed (idempotency key %s): %v", e.Op, e.IdempotencyKey, e.Err)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

func newProcessorError(op, key string, err error) *ProcessorError {
	return &ProcessorError{Op: op, IdempotencyKey: key, Err: err}
}
