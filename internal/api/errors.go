package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lokah-app/lokah/internal/gateway"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *AppError) Error() string {
	return e.Message
}

const (
	MsgRateLimited     = "Rate limit exceeded. Please try again in a moment."
	MsgPaymentRequired = "AI credits depleted. Please add credits to continue."
)

var (
	ErrBadRequest      = &AppError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrUnauthorized    = &AppError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrInvalidToken    = &AppError{Code: http.StatusUnauthorized, Message: "invalid or expired token"}
	ErrForbidden       = &AppError{Code: http.StatusForbidden, Message: "forbidden"}
	ErrInternalServer  = &AppError{Code: http.StatusInternalServerError, Message: "internal server error"}
	ErrRateLimited     = &AppError{Code: http.StatusTooManyRequests, Message: MsgRateLimited}
	ErrPaymentRequired = &AppError{Code: http.StatusPaymentRequired, Message: MsgPaymentRequired}
)

func NewBadRequestError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func NewValidationError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func NewInternalError(msg string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: msg}
}

// FromGatewayError maps a pipeline failure to the response the web client
// sees. Rate limiting and exhausted credits keep their status codes; every
// other failure, categorised or not, becomes a 500 carrying the raw message.
func FromGatewayError(err error) *AppError {
	if err == nil {
		return nil
	}
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		switch gwErr.Category {
		case gateway.CategoryRateLimited:
			return ErrRateLimited
		case gateway.CategoryPaymentRequired:
			return ErrPaymentRequired
		}
	}
	return NewInternalError(Message(err))
}

// Message is the diagnostic text shown for a 500: the gateway's own message
// when err wraps a gateway failure, err.Error() otherwise.
func Message(err error) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	return err.Error()
}

func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSONErrorMessage(w, appErr.Code, appErr.Message)
		return
	}
	slog.Error("unhandled error", "error", err)
	JSONErrorMessage(w, http.StatusInternalServerError, "internal server error")
}
