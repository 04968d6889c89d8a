package environment

import "github.com/pkg/errors"

var (
	// ErrInvalidEnvironment is returned for malformed dimensions, bounds or obstacles
	ErrInvalidEnvironment = errors.New("invalid environment")
	// ErrUnknownKind is returned for an unrecognised description type
	ErrUnknownKind = errors.New("unknown environment kind")
)
