package usecases

import "fmt"

type ErrorCode string

const (
	ErrorTransportSend ErrorCode = "TRANSPORT_SEND"
	ErrorTranscription ErrorCode = "TRANSCRIPTION"
	ErrorCompletion    ErrorCode = "COMPLETION"
	ErrorConfigRead    ErrorCode = "CONFIG_READ"
	ErrorHandler       ErrorCode = "HANDLER"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("engine: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("engine: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
