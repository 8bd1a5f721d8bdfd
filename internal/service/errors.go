package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/iliyamo/lab-booking/internal/access"
)

// Error taxonomy shared by the services.  Anything not listed here is an
// internal failure and is reported to clients without detail.
var (
	// ErrInvalidCredentials covers both an unknown phone and a wrong
	// password; callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrPhoneExists        = errors.New("phone already registered")
	ErrForbidden          = access.ErrForbidden
)

// ValidationError lists offending input fields with a short reason each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "invalid input: " + strings.Join(names, ", ")
}

// validator accumulates field errors.
type validator map[string]string

func (v validator) check(ok bool, field, reason string) {
	if !ok {
		if _, seen := v[field]; !seen {
			v[field] = reason
		}
	}
}

func (v validator) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}
