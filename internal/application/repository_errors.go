package application

import (
	"errors"

	"github.com/example/attendance-console/internal/persistence"
)

// mapRepoError translates persistence sentinels into application sentinels so
// callers only ever observe this package's error taxonomy.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("record", "record is missing required fields")
		return vErr
	}
	return err
}
