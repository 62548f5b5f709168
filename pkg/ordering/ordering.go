// Package ordering maintains a dense total order among sibling rows.
//
// A scope is one sibling group: modules within an app, or tasks sharing the
// same (module, parent). Every model participating in ordering exposes an
// integer sort_order column. Moves renumber the whole scope densely; scopes
// are small (tens of rows), so the O(n) write is preferred over fractional
// insertion schemes.
package ordering

import (
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotInScope is returned when the item to move is not a sibling of the
// given scope. Callers treat it as a not-found condition.
var ErrNotInScope = errors.New("item not in ordering scope")

// Scope selects one sibling group of Model rows.
type Scope struct {
	Model any    // gorm model pointer, e.g. &model.Task{}
	Query string // condition selecting the siblings
	Args  []any
}

// Append returns the sort_order for a new sibling: max(existing)+1, or 0 for
// an empty scope. Runs inside the caller's transaction so two concurrent
// appends serialize on the insert, not here; a duplicate value produced by a
// lost race is tolerated and re-densified on the next write to the scope.
func Append(tx *gorm.DB, s Scope) (int, error) {
	var max sql.NullInt64
	err := tx.Model(s.Model).Where(s.Query, s.Args...).
		Select("MAX(sort_order)").Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("ordering append: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// Move renumbers the scope so that id occupies targetIndex. The target is
// clamped to [0, len-1]. Siblings are read in display order (sort_order,
// then created_at, then id — the deterministic tie-break for rows that ever
// ended up sharing an order value) and written back densely.
func Move(tx *gorm.DB, s Scope, id uint, targetIndex int) error {
	ids, err := siblingIDs(tx, s)
	if err != nil {
		return err
	}
	reordered, ok := Reindex(ids, id, targetIndex)
	if !ok {
		return ErrNotInScope
	}
	return writeDense(tx, s, reordered)
}

// Normalize re-densifies a scope without moving anything. Called after a
// delete or after an item leaves the scope, so order values stay gap-free.
func Normalize(tx *gorm.DB, s Scope) error {
	ids, err := siblingIDs(tx, s)
	if err != nil {
		return err
	}
	return writeDense(tx, s, ids)
}

// Reindex is the pure renumbering step: remove moved from ids, clamp target,
// reinsert. Returns false when moved is absent.
func Reindex(ids []uint, moved uint, target int) ([]uint, bool) {
	rest := make([]uint, 0, len(ids))
	found := false
	for _, id := range ids {
		if id == moved {
			found = true
			continue
		}
		rest = append(rest, id)
	}
	if !found {
		return nil, false
	}
	if target < 0 {
		target = 0
	}
	if target > len(rest) {
		target = len(rest)
	}
	out := make([]uint, 0, len(ids))
	out = append(out, rest[:target]...)
	out = append(out, moved)
	out = append(out, rest[target:]...)
	return out, true
}

func siblingIDs(tx *gorm.DB, s Scope) ([]uint, error) {
	var ids []uint
	err := tx.Model(s.Model).Where(s.Query, s.Args...).
		Order("sort_order ASC, created_at ASC, id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("ordering scan: %w", err)
	}
	return ids, nil
}

func writeDense(tx *gorm.DB, s Scope, ids []uint) error {
	for i, id := range ids {
		err := tx.Model(s.Model).Where("id = ?", id).
			UpdateColumn("sort_order", i).Error
		if err != nil {
			return fmt.Errorf("ordering write: %w", err)
		}
	}
	return nil
}
