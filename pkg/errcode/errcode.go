package errcode

import (
	"fmt"
	"net/http"
)

// Error represents a business error
type Error struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("errcode: %d, msg: %s", e.Code, e.Msg)
}

// New creates a new error with code and message
func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap wraps an error with additional context
func (e *Error) Wrap(err error) *Error {
	if err == nil {
		return e
	}
	return &Error{
		Code: e.Code,
		Msg:  fmt.Sprintf("%s: %v", e.Msg, err),
	}
}

// Common error codes
var (
	// Success
	ErrSuccess = New(0, "success")

	// Common errors (1xxx)
	ErrInvalidParam    = New(1001, "invalid parameter")
	ErrInternalServer  = New(1002, "internal server error")
	ErrUnauthorized    = New(1003, "unauthorized")
	ErrForbidden       = New(1004, "forbidden")
	ErrNotFound        = New(1005, "not found")
	ErrTooManyRequests = New(1006, "too many requests")
	ErrNoPermission    = New(1007, "no permission to access this resource")

	// Auth errors (2xxx)
	ErrTokenInvalid  = New(2001, "token invalid")
	ErrTokenExpired  = New(2002, "token expired")
	ErrTokenMissing  = New(2003, "token missing")
	ErrTokenMismatch = New(2004, "token user mismatch")
	ErrUserNotFound  = New(2005, "user not found")

	// Conversation errors (3xxx)
	ErrConvNotFound       = New(3001, "conversation not found")
	ErrNotParticipant     = New(3002, "not a conversation participant")
	ErrSelfConversation   = New(3003, "cannot open a conversation with yourself")
	ErrInvalidParticipant = New(3004, "participant role mismatch")

	// Message errors (4xxx)
	ErrMessageNotFound = New(4001, "message not found")
	ErrEmptyContent    = New(4002, "empty message content")
	ErrContentTooLong  = New(4003, "message content too long")
	ErrBadMessageType  = New(4004, "unknown message type")
	ErrSeqAllocFailed  = New(4005, "seq allocation failed")
	ErrSendFailed      = New(4006, "message send failed")

	// WebSocket errors (5xxx)
	ErrConnOverLimit   = New(5001, "connection over max limit")
	ErrConnClosed      = New(5002, "connection closed")
	ErrInvalidProtocol = New(5003, "invalid protocol")
	ErrNotInRoom       = New(5004, "join the conversation before sending events")
)

// HTTPStatus maps a business error code to an HTTP status code.
func HTTPStatus(code int) int {
	switch code {
	case 0:
		return http.StatusOK
	case ErrInvalidParam.Code, ErrSelfConversation.Code, ErrInvalidParticipant.Code,
		ErrEmptyContent.Code, ErrContentTooLong.Code, ErrBadMessageType.Code:
		return http.StatusBadRequest
	case ErrUnauthorized.Code, ErrTokenInvalid.Code, ErrTokenExpired.Code,
		ErrTokenMissing.Code, ErrTokenMismatch.Code:
		return http.StatusUnauthorized
	case ErrForbidden.Code, ErrNoPermission.Code, ErrNotParticipant.Code:
		return http.StatusForbidden
	case ErrNotFound.Code, ErrConvNotFound.Code, ErrMessageNotFound.Code, ErrUserNotFound.Code:
		return http.StatusNotFound
	case ErrTooManyRequests.Code:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
