package resource

import (
	"context"
	"fmt"
)

// DefaultMaxDepth bounds breadcrumb walks over malformed trees
const DefaultMaxDepth = 10

// Tree adds parent/child navigation to a resource stored with a
// self-referential foreign key.
type Tree struct {
	db        Querier
	res       Resource
	parentKey string
	maxDepth  int
}

// TreeOption configures a Tree
type TreeOption func(*Tree)

// WithParentKey overrides the self-referential column (default "parent_id")
func WithParentKey(column string) TreeOption {
	return func(t *Tree) { t.parentKey = column }
}

// WithMaxDepth overrides the breadcrumb depth bound
func WithMaxDepth(depth int) TreeOption {
	return func(t *Tree) { t.maxDepth = depth }
}

// NewTree creates tree navigation over a resource's table
func NewTree(db Querier, res Resource, opts ...TreeOption) *Tree {
	t := &Tree{
		db:        db,
		res:       res,
		parentKey: "parent_id",
		maxDepth:  DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// HasParent reports whether the record points at a parent
func (t *Tree) HasParent(rec Record) bool {
	parent, ok := rec[t.parentKey]
	return ok && parent != nil
}

// Parent loads the record's parent, or nil at the root
func (t *Tree) Parent(ctx context.Context, rec Record) (Record, error) {
	if !t.HasParent(rec) {
		return nil, nil
	}
	return t.find(ctx, rec[t.parentKey])
}

// Children loads the record's direct children
func (t *Tree) Children(ctx context.Context, id any) ([]Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", t.res.Table(), t.parentKey)
	rows, err := t.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	return ScanRows(rows)
}

// HasChildren reports whether any record points at this one
func (t *Tree) HasChildren(ctx context.Context, id any) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", t.res.Table(), t.parentKey)

	var exists bool
	if err := t.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check children: %w", err)
	}
	return exists, nil
}

// Breadcrumbs walks parent pointers up from the record, returning the
// ordered trail root-first including the record itself. The walk stops
// at maxDepth to survive corrupted parent chains.
func (t *Tree) Breadcrumbs(ctx context.Context, rec Record) ([]Record, error) {
	trail := []Record{rec}
	current := rec

	for depth := 0; depth < t.maxDepth && t.HasParent(current); depth++ {
		parent, err := t.find(ctx, current[t.parentKey])
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		trail = append([]Record{parent}, trail...)
		current = parent
	}

	return trail, nil
}

// Descendants collects every record below the given id, breadth-first
func (t *Tree) Descendants(ctx context.Context, id any) ([]Record, error) {
	var all []Record
	frontier := []any{id}

	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]

		children, err := t.Children(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			all = append(all, child)
			frontier = append(frontier, child["id"])
		}
	}

	return all, nil
}

// CanMoveTo reports whether the record may be reparented under the
// target id. Moves onto itself or onto any of its own descendants are
// rejected to keep the tree acyclic.
func (t *Tree) CanMoveTo(ctx context.Context, rec Record, targetID any) (bool, error) {
	if targetID == nil {
		// Moving to the root is always structurally safe
		return true, nil
	}
	if equalID(rec["id"], targetID) {
		return false, nil
	}

	descendants, err := t.Descendants(ctx, rec["id"])
	if err != nil {
		return false, err
	}
	for _, descendant := range descendants {
		if equalID(descendant["id"], targetID) {
			return false, nil
		}
	}
	return true, nil
}

// MoveTo reparents the record under the target id after cycle checks
func (t *Tree) MoveTo(ctx context.Context, rec Record, targetID any) error {
	allowed, err := t.CanMoveTo(ctx, rec, targetID)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("cannot move %s %v under %v: target is itself or a descendant",
			t.res.Name(), rec["id"], targetID)
	}

	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", t.res.Table(), t.parentKey)
	if _, err := t.db.ExecContext(ctx, query, targetID, rec["id"]); err != nil {
		return fmt.Errorf("failed to move record: %w", err)
	}
	rec[t.parentKey] = targetID
	return nil
}

func (t *Tree) find(ctx context.Context, id any) (Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = ? LIMIT 1", t.res.Table())
	rows, err := t.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load record %v: %w", id, err)
	}
	defer rows.Close()

	return ScanFirst(rows)
}

// equalID compares ids loosely across driver integer widths
func equalID(a, b any) bool {
	if a == b {
		return true
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
