package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrTimeout       = errors.New("vision request timed out")
	ErrRateLimited   = errors.New("vision rate limit exceeded")
	ErrAuth          = errors.New("vision authentication failed")
	ErrEmptyResponse = errors.New("vision response empty")
	ErrUpstream      = errors.New("vision request failed")
)

// classifyStatus maps an HTTP status returned by a provider onto a vision error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	default:
		return ErrUpstream
	}
}

// classifyCode maps a gRPC status code onto a vision error.
func classifyCode(code codes.Code) error {
	switch code {
	case codes.ResourceExhausted:
		return ErrRateLimited
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrAuth
	case codes.DeadlineExceeded:
		return ErrTimeout
	default:
		return ErrUpstream
	}
}

// wrap classifies err and returns it wrapped in the matching sentinel.
// A context deadline always classifies as ErrTimeout.
func wrap(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return fmt.Errorf("%w: %v", classifyCode(st.Code()), err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
