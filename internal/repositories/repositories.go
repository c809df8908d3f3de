// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type
// on top of raw SQL against the sqlite catalog database.
package repositories

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/arcova/tidalbridge/internal/shared"
)

// defaultListLimit bounds unpaginated List calls.
const defaultListLimit = 100

// wrapConstraint maps sqlite unique-constraint violations onto
// [shared.ErrConflict] so handlers can answer 409 without inspecting
// driver internals.
func wrapConstraint(err error, what string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", what, shared.ErrConflict)
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}

// normalizeLimit applies the default page size when the caller passes zero
// or a negative limit.
func normalizeLimit(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
