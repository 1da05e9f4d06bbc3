package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument marks caller-supplied parameters that were rejected
// before any network call was made.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// UpstreamError is a non-2xx response or a transport failure from an
// external API. StatusCode is 0 for transport failures.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	b.WriteString(e.Service)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " http %d", e.StatusCode)
	} else {
		b.WriteString(" request failed")
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError is a response body that could not be decoded.
type ParseError struct {
	Service string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Service, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
