// Package validation collects required-field checks performed before any
// store access.
package validation

import (
	"fmt"
	"strings"
)

// Error reports the set of required fields that were missing or blank.
type Error struct {
	Missing []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// Messages returns one human-readable message per missing field.
func (e *Error) Messages() []string {
	msgs := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		msgs = append(msgs, f+" must not be empty")
	}
	return msgs
}

// Check accumulates required-field violations in declaration order.
type Check struct {
	missing []string
}

// Require records a violation when value is empty or whitespace-only.
func (c *Check) Require(name, value string) {
	if strings.TrimSpace(value) == "" {
		c.missing = append(c.missing, name)
	}
}

// Err returns the accumulated *Error, or nil when all checks passed.
func (c *Check) Err() error {
	if len(c.missing) == 0 {
		return nil
	}
	return &Error{Missing: c.missing}
}
