package check

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrCheckFailed     = errors.New("check failed")
	ErrStrictViolation = errors.New("critical first principles violations")
	ErrInvalid         = errors.New("invalid input")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindFailed    ErrorKind = "failed"
	KindViolation ErrorKind = "violation"
	KindInvalid   ErrorKind = "invalid"
)

// OpError wraps an underlying error with the suite or operation it came from.
type OpError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind classifies an error without unwrapping by hand.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

func failedChecks(n int) error {
	return fmt.Errorf("%d checks did not pass: %w", n, ErrCheckFailed)
}

func violations(chapter, n int) error {
	return fmt.Errorf("chapter %d has %d %w", chapter, n, ErrStrictViolation)
}

func errUnknownVariant(s string) error {
	return fmt.Errorf("unknown variant %q: %w", s, ErrInvalid)
}
