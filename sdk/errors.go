package sdk

import "fmt"

// Error represents an API error
type Error struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

// NewError creates a new error
func NewError(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// IsSuccess checks if the error code indicates success
func (e *Error) IsSuccess() bool {
	return e.Code == 0
}

// Common error codes
const (
	// Success
	CodeSuccess = 0

	// Common errors (1xxx)
	CodeInvalidParam    = 1001
	CodeInternalServer  = 1002
	CodeUnauthorized    = 1003
	CodeForbidden       = 1004
	CodeNotFound        = 1005
	CodeTooManyRequests = 1006
	CodeNoPermission    = 1007

	// Auth errors (2xxx)
	CodeTokenInvalid  = 2001
	CodeTokenExpired  = 2002
	CodeTokenMissing  = 2003
	CodeTokenMismatch = 2004
	CodeUserNotFound  = 2005

	// Conversation errors (3xxx)
	CodeConvNotFound       = 3001
	CodeNotParticipant     = 3002
	CodeSelfConversation   = 3003
	CodeInvalidParticipant = 3004

	// Message errors (4xxx)
	CodeMessageNotFound = 4001
	CodeEmptyContent    = 4002
	CodeContentTooLong  = 4003
	CodeBadMessageType  = 4004
	CodeSeqAllocFailed  = 4005
	CodeSendFailed      = 4006

	// WebSocket errors (5xxx)
	CodeConnOverLimit   = 5001
	CodeConnClosed      = 5002
	CodeInvalidProtocol = 5003
	CodeNotInRoom       = 5004
)

// Predefined errors
var (
	ErrInvalidParam    = NewError(CodeInvalidParam, "invalid parameter")
	ErrInternalServer  = NewError(CodeInternalServer, "internal server error")
	ErrUnauthorized    = NewError(CodeUnauthorized, "unauthorized")
	ErrForbidden       = NewError(CodeForbidden, "forbidden")
	ErrNotFound        = NewError(CodeNotFound, "not found")
	ErrNoPermission    = NewError(CodeNoPermission, "no permission to access this resource")

	ErrTokenInvalid = NewError(CodeTokenInvalid, "token invalid")
	ErrTokenExpired = NewError(CodeTokenExpired, "token expired")
	ErrTokenMissing = NewError(CodeTokenMissing, "token missing")
	ErrUserNotFound = NewError(CodeUserNotFound, "user not found")

	ErrConvNotFound   = NewError(CodeConvNotFound, "conversation not found")
	ErrNotParticipant = NewError(CodeNotParticipant, "not a conversation participant")

	ErrEmptyContent   = NewError(CodeEmptyContent, "message content is empty")
	ErrContentTooLong = NewError(CodeContentTooLong, "message content too long")
	ErrBadMessageType = NewError(CodeBadMessageType, "unsupported message type")
)
