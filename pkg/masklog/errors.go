package masklog

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Result codes and messages used when the caller supplies none.
const (
	DefaultSuccessCode    = "20000"
	DefaultSuccessMessage = "Success"
	DefaultErrorCode      = "50000"

	resultCodeLength = 5
)

// Coder is implemented by errors that carry a result code.
type Coder interface {
	ResultCode() string
}

// Error is a structured error for FlushError. Code is normalized to five
// characters; ErrorStack, when set, is attached to the summary verbatim.
type Error struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	ErrorStack string `json:"errorStack,omitempty"`
	Cause      error  `json:"-"`
}

// NewError returns an Error with a code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError attaches a result code to err and records a stack trace.
func WrapError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	e := &Error{Code: code, Cause: err}
	e.ErrorStack = stackOf(errors.WithStack(err))
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return ""
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// ResultCode implements Coder.
func (e *Error) ResultCode() string {
	return e.Code
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackOf renders the innermost pkg/errors stack trace in err's chain.
func stackOf(err error) string {
	var found stackTracer
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if st, ok := cur.(stackTracer); ok {
			found = st
		}
	}
	if found == nil {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprintf("%+v", found.StackTrace()), "\n")
}

// errorStack picks the stack attached to a flushed error.
func errorStack(err error) string {
	var e *Error
	if errors.As(err, &e) && e.ErrorStack != "" {
		return e.ErrorStack
	}
	return stackOf(err)
}

// errorCode extracts a result code from err's chain.
func errorCode(err error) string {
	var c Coder
	if errors.As(err, &c) {
		return normalizeResultCode(c.ResultCode(), DefaultErrorCode)
	}
	return DefaultErrorCode
}

// errorMessage returns err's message, or its JSON encoding when the message
// is empty.
func errorMessage(err error) string {
	if err != nil {
		if msg := err.Error(); msg != "" {
			return msg
		}
	}
	b, jerr := json.Marshal(err)
	if jerr != nil {
		return fmt.Sprintf("%+v", err)
	}
	return string(b)
}

// normalizeResultCode right-pads code with '0' and truncates it to five
// characters. Zero values (nil, 0, "") select def.
func normalizeResultCode(code any, def string) string {
	if code == nil {
		return def
	}
	if rv := reflect.ValueOf(code); rv.IsZero() {
		return def
	}

	s := strings.TrimSpace(fmt.Sprint(code))
	if s == "" {
		return def
	}
	if n := utf8.RuneCountInString(s); n < resultCodeLength {
		return s + strings.Repeat("0", resultCodeLength-n)
	}
	return string([]rune(s)[:resultCodeLength])
}
