package tracker

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Domain error taxonomy. Every operation either fully applies or returns one
// of these with no partial state visible to later reads.
var (
	// ErrNotFound: a referenced entity id does not resolve. Terminal.
	ErrNotFound = errors.New("not found")
	// ErrInvalidHierarchy: cycle, cross-module parent/child, or module/app
	// mismatch. Terminal validation failure.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")
	// ErrConflict: uniqueness violation (duplicate member, duplicate star).
	ErrConflict = errors.New("conflict")
	// ErrTransactionAborted: the storage transaction failed and was rolled
	// back. Callers may retry the whole operation; the core never retries
	// internally, since replaying code generation would double-allocate.
	ErrTransactionAborted = errors.New("transaction aborted")
)

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}

// mapDBErr lifts storage errors into the domain taxonomy.
func mapDBErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return wrapf(ErrNotFound, "%s", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return wrapf(ErrConflict, "%s", what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func isDomainErr(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidHierarchy) ||
		errors.Is(err, ErrConflict)
}
