package relations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/steward-admin/steward/fields"
	"github.com/steward-admin/steward/resource"
)

// BelongsToManyField links records many-to-many through a pivot table
// which may carry extra attributes.
type BelongsToManyField struct {
	fields.Schema[BelongsToManyField]

	related         resource.Resource
	pivotTable      string
	parentKey       string
	relatedKey      string
	allowDuplicates bool
	pivotFields     func() []fields.Element
}

// BelongsToMany creates a many-to-many field, detail views only. The
// pivot table defaults to the two model names in alphabetical order
// joined with an underscore.
func BelongsToMany(name string, related resource.Resource, attribute ...string) *BelongsToManyField {
	f := &BelongsToManyField{related: related}
	f.Schema = fields.NewSchema("BelongsToManyField", name, f, attribute...)

	desc := f.Descriptor()
	desc.Readonly = true
	desc.Visibility = fields.Visibility{Detail: true}

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		return countSummary(f.related, rec[attr])
	})
	return f
}

// PivotTable overrides the pivot table name
func (f *BelongsToManyField) PivotTable(table string) *BelongsToManyField {
	f.pivotTable = table
	return f
}

// Keys overrides the pivot columns pointing at the parent and related
// records.
func (f *BelongsToManyField) Keys(parentKey, relatedKey string) *BelongsToManyField {
	f.parentKey = parentKey
	f.relatedKey = relatedKey
	return f
}

// AllowDuplicates permits attaching the same related record more than
// once and stops the attachable listing from excluding attached ids.
func (f *BelongsToManyField) AllowDuplicates() *BelongsToManyField {
	f.allowDuplicates = true
	return f
}

// WithPivotFields declares the fields rendered for pivot attributes
func (f *BelongsToManyField) WithPivotFields(fn func() []fields.Element) *BelongsToManyField {
	f.pivotFields = fn
	return f
}

// PivotFields returns the declared pivot attribute fields
func (f *BelongsToManyField) PivotFields() []fields.Element {
	if f.pivotFields == nil {
		return nil
	}
	return f.pivotFields()
}

func (f *BelongsToManyField) pivot(parent resource.Resource) (table, parentKey, relatedKey string) {
	table = f.pivotTable
	if table == "" {
		models := []string{parent.Model(), f.related.Model()}
		sort.Strings(models)
		table = models[0] + "_" + models[1]
	}
	parentKey = f.parentKey
	if parentKey == "" {
		parentKey = parent.Model() + "_id"
	}
	relatedKey = f.relatedKey
	if relatedKey == "" {
		relatedKey = f.related.Model() + "_id"
	}
	return table, parentKey, relatedKey
}

// Related lists the attached records of a parent through the pivot
// table, paginated and searchable.
func (f *BelongsToManyField) Related(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, params Params) (*Page, error) {
	table, parentKey, relatedKey := f.pivot(parent)

	from := "FROM " + f.related.Table() +
		" INNER JOIN " + table +
		" ON " + f.related.Table() + ".id = " + table + "." + relatedKey +
		" WHERE " + table + "." + parentKey + " = ?"

	qualified := make([]string, len(f.related.SearchColumns()))
	for i, col := range f.related.SearchColumns() {
		qualified[i] = f.related.Table() + "." + col
	}

	return listing(ctx, q, f.related.Table()+".*", from, []any{parentID}, qualified, params)
}

// Attachable lists related records that may be attached to the parent.
// Unless duplicates are allowed, already-attached ids are excluded.
func (f *BelongsToManyField) Attachable(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, params Params) (*Page, error) {
	from := "FROM " + f.related.Table()
	args := []any{}

	if !f.allowDuplicates {
		table, parentKey, relatedKey := f.pivot(parent)
		from += fmt.Sprintf(" WHERE id NOT IN (SELECT %s FROM %s WHERE %s = ?)",
			relatedKey, table, parentKey)
		args = append(args, parentID)
	}

	return listing(ctx, q, "*", from, args, f.related.SearchColumns(), params)
}

// AttachedIDs returns the related ids currently on the pivot table
func (f *BelongsToManyField) AttachedIDs(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any) ([]any, error) {
	table, parentKey, relatedKey := f.pivot(parent)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", relatedKey, table, parentKey)
	rows, err := q.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pivot table %s: %w", table, err)
	}
	defer rows.Close()

	var ids []any
	for rows.Next() {
		var id any
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Attach inserts pivot rows linking the parent to each related id,
// with optional extra pivot attributes applied to every row. Already
// attached ids are skipped unless duplicates are allowed.
func (f *BelongsToManyField) Attach(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, relatedIDs []any, pivotAttrs resource.Record) error {
	table, parentKey, relatedKey := f.pivot(parent)

	if !f.allowDuplicates {
		existing, err := f.AttachedIDs(ctx, q, parent, parentID)
		if err != nil {
			return err
		}
		relatedIDs = excludeIDs(relatedIDs, existing)
	}

	columns := []string{parentKey, relatedKey}
	extraCols := make([]string, 0, len(pivotAttrs))
	for col := range pivotAttrs {
		extraCols = append(extraCols, col)
	}
	sort.Strings(extraCols)
	columns = append(columns, extraCols...)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders)

	for _, id := range relatedIDs {
		args := []any{parentID, id}
		for _, col := range extraCols {
			args = append(args, pivotAttrs[col])
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to attach %v: %w", id, err)
		}
	}
	return nil
}

// Detach removes pivot rows for the given related ids, or every pivot
// row of the parent when no ids are given.
func (f *BelongsToManyField) Detach(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, relatedIDs []any) error {
	table, parentKey, relatedKey := f.pivot(parent)

	if len(relatedIDs) == 0 {
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, parentKey)
		if _, err := q.ExecContext(ctx, query, parentID); err != nil {
			return fmt.Errorf("failed to detach all: %w", err)
		}
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(relatedIDs)), ", ")
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s IN (%s)",
		table, parentKey, relatedKey, placeholders)

	args := append([]any{parentID}, relatedIDs...)
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to detach: %w", err)
	}
	return nil
}

// SyncResult reports the changes a Sync applied
type SyncResult struct {
	Attached []any
	Detached []any
}

// Sync makes the pivot table match the given id set exactly, attaching
// missing ids and detaching ids no longer present.
func (f *BelongsToManyField) Sync(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, relatedIDs []any) (*SyncResult, error) {
	existing, err := f.AttachedIDs(ctx, q, parent, parentID)
	if err != nil {
		return nil, err
	}

	toAttach := excludeIDs(relatedIDs, existing)
	toDetach := excludeIDs(existing, relatedIDs)

	if len(toDetach) > 0 {
		if err := f.Detach(ctx, q, parent, parentID, toDetach); err != nil {
			return nil, err
		}
	}
	if len(toAttach) > 0 {
		if err := f.Attach(ctx, q, parent, parentID, toAttach, nil); err != nil {
			return nil, err
		}
	}

	return &SyncResult{Attached: toAttach, Detached: toDetach}, nil
}

// UpdatePivot updates extra pivot attributes on an existing attachment
func (f *BelongsToManyField) UpdatePivot(ctx context.Context, q resource.Querier, parent resource.Resource, parentID, relatedID any, pivotAttrs resource.Record) error {
	if len(pivotAttrs) == 0 {
		return fmt.Errorf("pivot update requires at least one attribute")
	}
	table, parentKey, relatedKey := f.pivot(parent)

	columns := make([]string, 0, len(pivotAttrs))
	for col := range pivotAttrs {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+2)
	for i, col := range columns {
		assignments[i] = col + " = ?"
		args = append(args, pivotAttrs[col])
	}
	args = append(args, parentID, relatedID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? AND %s = ?",
		table, strings.Join(assignments, ", "), parentKey, relatedKey)

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update pivot: %w", err)
	}
	return nil
}

// excludeIDs returns the ids from a not present in b, comparing loosely
// across driver integer widths.
func excludeIDs(a, b []any) []any {
	var out []any
	for _, candidate := range a {
		found := false
		for _, existing := range b {
			if fmt.Sprintf("%v", candidate) == fmt.Sprintf("%v", existing) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, candidate)
		}
	}
	return out
}
