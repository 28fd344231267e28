package gateway

import (
	"fmt"
	"net/http"
)

// Category classifies a failed gateway call.
type Category string

const (
	CategoryRateLimited     Category = "rate_limited"
	CategoryPaymentRequired Category = "payment_required"
	CategoryUpstreamError   Category = "upstream_error"
	CategoryNetworkError    Category = "network_error"
)

// Error is returned by Client.Complete whenever the upstream call does not
// produce a 2xx response.
type Error struct {
	Category   Category
	HTTPStatus int // zero for network errors
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CategoryForStatus maps a non-2xx status code to its category.
func CategoryForStatus(status int) Category {
	switch status {
	case http.StatusTooManyRequests:
		return CategoryRateLimited
	case http.StatusPaymentRequired:
		return CategoryPaymentRequired
	default:
		return CategoryUpstreamError
	}
}

func newStatusError(status int, err error) *Error {
	return &Error{
		Category:   CategoryForStatus(status),
		HTTPStatus: status,
		Message:    fmt.Sprintf("AI gateway error: %d", status),
		Err:        err,
	}
}

func newNetworkError(err error) *Error {
	return &Error{
		Category: CategoryNetworkError,
		Message:  fmt.Sprintf("AI gateway unreachable: %v", err),
		Err:      err,
	}
}

func newUpstreamError(err error) *Error {
	return &Error{
		Category: CategoryUpstreamError,
		Message:  fmt.Sprintf("AI gateway error: %v", err),
		Err:      err,
	}
}
