package olympus

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedCommand   = errors.New("unsupported command")
	ErrUnsupportedParameter = errors.New("unsupported parameter")
	ErrUnsupportedValue     = errors.New("unsupported parameter value")
	ErrMissingPostData      = errors.New("missing post data")
	ErrPayloadType          = errors.New("invalid payload type")

	// ErrUnreachable is matched by every ConnectivityError.
	ErrUnreachable = errors.New("camera unreachable")
)

// RequestError is a local usage error. It is returned before anything is sent
// to the camera and leaves the session usable.
type RequestError struct {
	Kind     error
	Command  string
	Msg      string
	Accepted []string // alternatives the camera would have accepted, if any
}

func (e *RequestError) Error() string {
	return e.Msg
}

func (e *RequestError) Unwrap() error {
	return e.Kind
}

func newRequestError(kind error, command string, accepted []string, format string, args ...interface{}) *RequestError {
	return &RequestError{Kind: kind, Command: command, Accepted: accepted, Msg: fmt.Sprintf(format, args...)}
}

// ResultError reports a non-success status returned by the camera.
type ResultError struct {
	StatusCode int
	URL        string
	Message    string
	Response   *Response
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("error #%d for url %s: %s.", e.StatusCode, e.URL, e.Message)
}

// ConnectivityError means the discovery request never reached the camera.
type ConnectivityError struct {
	Address string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("camera at %s is unreachable: %v", e.Address, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

func (e *ConnectivityError) Is(target error) bool {
	return target == ErrUnreachable
}
