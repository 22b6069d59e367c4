package retry

// Stop wraps an error to classify it as non-retryable at the operation
// boundary. The retry loop immediately propagates the unwrapped error,
// regardless of the configured condition or remaining attempts.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &stopError{err: err}
}

// stopError wraps an error that should not be retried.
type stopError struct {
	err error
}

func (e *stopError) Error() string {
	return e.err.Error()
}

func (e *stopError) Unwrap() error {
	return e.err
}
