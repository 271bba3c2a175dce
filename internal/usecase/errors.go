package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrForceRequired         = errors.New("refusing to call paid providers in dev without --force")
	ErrTeamNotFound          = fmt.Errorf("team %w", ErrNotFound)
)

// errDryRun rolls back a batch transaction after its counts are collected.
var errDryRun = errors.New("dry run")

func isDryRun(err error) bool {
	return errors.Is(err, errDryRun)
}
