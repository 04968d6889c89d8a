package planner

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	// ErrInvalidConfig is returned by constructors for out-of-range options
	ErrInvalidConfig = errors.New("invalid planner config")
	// ErrInvariantViolation is returned by Solve when search data is corrupt
	ErrInvariantViolation = errors.New("planner invariant violated")
)

// validator collects every failed option check of one constructor
type validator struct {
	err error
}

func (v *validator) check(ok bool, format string, args ...interface{}) {
	if !ok {
		v.err = multierr.Append(v.err, fmt.Errorf(format, args...))
	}
}

func (v *validator) result(planner string) error {
	if v.err == nil {
		return nil
	}
	return errors.Wrapf(ErrInvalidConfig, "%s: %v", planner, v.err)
}

func invariantf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvariantViolation, format, args...)
}
