// Package scope carries the read filter every repository query honors:
// which owner the caller may see, and whether tombstoned records are
// visible. Keeping the policy in one place stops the per-entity filtering
// from drifting.
package scope

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Deletion int

const (
	// ActiveOnly is the default: tombstoned records are invisible.
	ActiveOnly Deletion = iota
	// WithDeleted includes tombstoned records alongside active ones.
	WithDeleted
	// DeletedOnly lists tombstoned records exclusively.
	DeletedOnly
)

// Scope is an owner plus a deletion visibility mode. A zero Owner means
// unrestricted (admin) access.
type Scope struct {
	Owner    uuid.UUID
	Deletion Deletion
}

// Owned scopes reads to a single user's records.
func Owned(owner uuid.UUID) Scope {
	return Scope{Owner: owner}
}

// Unrestricted scopes reads across all owners (admin callers).
func Unrestricted() Scope {
	return Scope{}
}

func (s Scope) Deleted(d Deletion) Scope {
	s.Deletion = d
	return s
}

// Admin reports whether the scope crosses owner boundaries.
func (s Scope) Admin() bool {
	return s.Owner == uuid.Nil
}

// Allows reports whether a record owned by owner is visible in this scope.
func (s Scope) Allows(owner uuid.UUID) bool {
	return s.Admin() || s.Owner == owner
}

// Conditions renders the scope as SQL predicates over the given owner and
// tombstone columns, numbering placeholders from start. It returns the SQL
// fragment (without a leading AND) and the arguments it binds.
func (s Scope) Conditions(ownerCol, deletedCol string, start int) (string, []any) {
	var (
		preds []string
		args  []any
	)

	if !s.Admin() {
		preds = append(preds, fmt.Sprintf("%s = $%d", ownerCol, start))
		args = append(args, s.Owner)
	}

	switch s.Deletion {
	case ActiveOnly:
		preds = append(preds, deletedCol+" IS NULL")
	case DeletedOnly:
		preds = append(preds, deletedCol+" IS NOT NULL")
	case WithDeleted:
		// no tombstone predicate
	}

	if len(preds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(preds, " AND "), args
}
