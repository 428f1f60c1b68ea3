package diagram

import (
	"errors"
	"fmt"
	"os"
)

// Sentinel errors wrapped by every mutator rejection. Callers match with
// errors.Is and map them onto their own status space.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrDuplicateSignal  = errors.New("duplicate signal")
	ErrInvalidField     = errors.New("invalid field")
	ErrPortNotNumeric   = errors.New("port id must be a numeric string")
	ErrPortConnected    = errors.New("port already connected")
	ErrEndpointMismatch = errors.New("connection endpoints do not match")
	ErrDanglingReply    = errors.New("reply has no matching invoke")
	ErrInvalidDocument  = errors.New("diagram document could not be parsed")
)

// ErrorCollector accumulates validation findings so a whole diagram can be
// reported in one pass instead of failing on the first problem.
type ErrorCollector struct {
	Errors []error

	// Max errors to keep. 0 => no limit.
	MaxErrors int
}

func (c *ErrorCollector) HasErrors() bool {
	return len(c.Errors) > 0
}

func (c *ErrorCollector) PrintErrors() {
	for _, err := range c.Errors {
		fmt.Fprintln(os.Stderr, err)
	}
}

func (c *ErrorCollector) AddErrors(errs ...error) {
	for _, err := range errs {
		if c.MaxErrors > 0 && len(c.Errors) >= c.MaxErrors {
			return
		}
		c.Errors = append(c.Errors, err)
	}
}

func (c *ErrorCollector) Errorf(format string, args ...any) bool {
	c.AddErrors(fmt.Errorf(format, args...))
	return false
}
