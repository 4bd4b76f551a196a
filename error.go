package sweep

import "errors"

var (
	errNotStarted     = errors.New("sweeper not started")
	errNoTargets      = errors.New("no targets")
	errTooManyTargets = errors.New("too many targets")
)
