package retry

import (
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Condition determines whether an error should be retried.
type Condition func(error) bool

// Not inverts a condition.
func Not(cond Condition) Condition {
	return func(err error) bool {
		return !cond(err)
	}
}

// AnyOf combines conditions with OR logic.
func AnyOf(conds ...Condition) Condition {
	return func(err error) bool {
		for _, cond := range conds {
			if cond(err) {
				return true
			}
		}
		return false
	}
}

// AllOf combines conditions with AND logic. An empty set never retries.
func AllOf(conds ...Condition) Condition {
	return func(err error) bool {
		if len(conds) == 0 {
			return false
		}
		for _, cond := range conds {
			if !cond(err) {
				return false
			}
		}
		return true
	}
}

// RetryOnErrors retries when the failure matches one of the target errors
// via errors.Is.
func RetryOnErrors(targets ...error) Condition {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// RetryOnNetworkErrors retries on transient network failures: timeouts,
// connection resets and refusals, and unexpected connection closes.
func RetryOnNetworkErrors() Condition {
	return func(err error) bool {
		if err == nil {
			return false
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}

		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return true
		}

		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return urlErr.Timeout() || urlErr.Temporary()
		}

		if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
			return true
		}

		return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
	}
}

// RetryOnTimeout retries on timeout errors from the net package or a gRPC
// deadline.
func RetryOnTimeout() Condition {
	return func(err error) bool {
		if err == nil {
			return false
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}

		st, ok := status.FromError(err)
		return ok && st.Code() == codes.DeadlineExceeded
	}
}

// RetryOnGRPCCodes retries when the failure carries one of the given gRPC
// status codes.
func RetryOnGRPCCodes(grpcCodes ...codes.Code) Condition {
	codeSet := make(map[codes.Code]bool, len(grpcCodes))
	for _, code := range grpcCodes {
		codeSet[code] = true
	}
	return func(err error) bool {
		if err == nil {
			return false
		}
		st, ok := status.FromError(err)
		return ok && codeSet[st.Code()]
	}
}

// RetryableGRPCCodes retries on the gRPC status codes that usually indicate
// a transient condition.
func RetryableGRPCCodes() Condition {
	return RetryOnGRPCCodes(
		codes.Unavailable,
		codes.ResourceExhausted,
		codes.Aborted,
		codes.DeadlineExceeded,
	)
}
