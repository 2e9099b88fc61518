package lint

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFileType is returned for files whose extension cannot carry
// lintable markup. The pipeline does not run for them.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// RequestErrorKind classifies failures talking to the lint service.
type RequestErrorKind int

const (
	// KindTransport covers network, DNS, timeout and non-200 responses.
	KindTransport RequestErrorKind = iota
	// KindMalformedResponse is a 200 response that is not a JSON findings array.
	KindMalformedResponse
)

func (k RequestErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RequestError is a failed lint service call.
type RequestError struct {
	Kind       RequestErrorKind
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

// SecretsError reports that normalized markup was not uploaded because it
// contains likely credentials.
type SecretsError struct {
	Count int
}

func (e *SecretsError) Error() string {
	return fmt.Sprintf("markup contains %d potential secret(s)", e.Count)
}
