package relations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/steward-admin/steward/fields"
	"github.com/steward-admin/steward/resource"
)

// morphPivot holds the polymorphic pivot wiring shared by the
// many-to-many morph fields. The pivot table stores the related id plus
// a polymorphic parent reference.
type morphPivot struct {
	related         resource.Resource
	morphName       string
	pivotTable      string
	relatedKey      string
	allowDuplicates bool
}

func (p *morphPivot) table() string {
	if p.pivotTable != "" {
		return p.pivotTable
	}
	return inflect.Pluralize(p.morphName)
}

func (p *morphPivot) relatedColumn() string {
	if p.relatedKey != "" {
		return p.relatedKey
	}
	return p.related.Model() + "_id"
}

// Related lists the attached records of a parent through the
// polymorphic pivot, paginated and searchable.
func (p *morphPivot) Related(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, params Params) (*Page, error) {
	table := p.table()
	from := "FROM " + p.related.Table() +
		" INNER JOIN " + table +
		" ON " + p.related.Table() + ".id = " + table + "." + p.relatedColumn() +
		" WHERE " + table + "." + p.morphName + "_type = ?" +
		" AND " + table + "." + p.morphName + "_id = ?"

	qualified := make([]string, len(p.related.SearchColumns()))
	for i, col := range p.related.SearchColumns() {
		qualified[i] = p.related.Table() + "." + col
	}

	return listing(ctx, q, p.related.Table()+".*", from,
		[]any{parent.Model(), parentID}, qualified, params)
}

// Attachable lists related records that may be attached to the parent,
// excluding already-attached ids unless duplicates are allowed.
func (p *morphPivot) Attachable(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, params Params) (*Page, error) {
	from := "FROM " + p.related.Table()
	args := []any{}

	if !p.allowDuplicates {
		from += fmt.Sprintf(" WHERE id NOT IN (SELECT %s FROM %s WHERE %s_type = ? AND %s_id = ?)",
			p.relatedColumn(), p.table(), p.morphName, p.morphName)
		args = append(args, parent.Model(), parentID)
	}

	return listing(ctx, q, "*", from, args, p.related.SearchColumns(), params)
}

// AttachedIDs returns the related ids currently attached to the parent
func (p *morphPivot) AttachedIDs(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any) ([]any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s_type = ? AND %s_id = ?",
		p.relatedColumn(), p.table(), p.morphName, p.morphName)
	rows, err := q.QueryContext(ctx, query, parent.Model(), parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pivot table %s: %w", p.table(), err)
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

// Attach inserts polymorphic pivot rows for each related id
func (p *morphPivot) Attach(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, relatedIDs []any, pivotAttrs resource.Record) error {
	if !p.allowDuplicates {
		existing, err := p.AttachedIDs(ctx, q, parent, parentID)
		if err != nil {
			return err
		}
		relatedIDs = excludeIDs(relatedIDs, existing)
	}

	columns := []string{p.morphName + "_type", p.morphName + "_id", p.relatedColumn()}
	extraCols := make([]string, 0, len(pivotAttrs))
	for col := range pivotAttrs {
		extraCols = append(extraCols, col)
	}
	sort.Strings(extraCols)
	columns = append(columns, extraCols...)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		p.table(), strings.Join(columns, ", "), placeholders)

	for _, id := range relatedIDs {
		args := []any{parent.Model(), parentID, id}
		for _, col := range extraCols {
			args = append(args, pivotAttrs[col])
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to attach %v: %w", id, err)
		}
	}
	return nil
}

// Detach removes pivot rows for the given ids, or all rows of the
// parent when no ids are given.
func (p *morphPivot) Detach(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, relatedIDs []any) error {
	base := fmt.Sprintf("DELETE FROM %s WHERE %s_type = ? AND %s_id = ?",
		p.table(), p.morphName, p.morphName)

	if len(relatedIDs) == 0 {
		if _, err := q.ExecContext(ctx, base, parent.Model(), parentID); err != nil {
			return fmt.Errorf("failed to detach all: %w", err)
		}
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(relatedIDs)), ", ")
	query := base + fmt.Sprintf(" AND %s IN (%s)", p.relatedColumn(), placeholders)

	args := append([]any{parent.Model(), parentID}, relatedIDs...)
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to detach: %w", err)
	}
	return nil
}

// Sync makes the attached set match the given ids exactly
func (p *morphPivot) Sync(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, relatedIDs []any) (*SyncResult, error) {
	existing, err := p.AttachedIDs(ctx, q, parent, parentID)
	if err != nil {
		return nil, err
	}

	toAttach := excludeIDs(relatedIDs, existing)
	toDetach := excludeIDs(existing, relatedIDs)

	if len(toDetach) > 0 {
		if err := p.Detach(ctx, q, parent, parentID, toDetach); err != nil {
			return nil, err
		}
	}
	if len(toAttach) > 0 {
		if err := p.Attach(ctx, q, parent, parentID, toAttach, nil); err != nil {
			return nil, err
		}
	}

	return &SyncResult{Attached: toAttach, Detached: toDetach}, nil
}

// MorphToManyField links records many-to-many through a polymorphic
// pivot table.
type MorphToManyField struct {
	fields.Schema[MorphToManyField]
	morphPivot
}

// MorphToMany creates a polymorphic many-to-many field, detail views
// only. The pivot table defaults to the pluralized morph name, e.g.
// morph name "taggable" gives table "taggables".
func MorphToMany(name string, related resource.Resource, morphName string, attribute ...string) *MorphToManyField {
	f := &MorphToManyField{}
	f.Schema = fields.NewSchema("MorphToManyField", name, f, attribute...)
	f.morphPivot = morphPivot{related: related, morphName: morphName}

	desc := f.Descriptor()
	desc.Readonly = true
	desc.Visibility = fields.Visibility{Detail: true}

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		return countSummary(f.related, rec[attr])
	})
	return f
}

// PivotTable overrides the pivot table name
func (f *MorphToManyField) PivotTable(table string) *MorphToManyField {
	f.pivotTable = table
	return f
}

// RelatedKey overrides the pivot column pointing at the related record
func (f *MorphToManyField) RelatedKey(column string) *MorphToManyField {
	f.relatedKey = column
	return f
}

// AllowDuplicates permits repeated attachments of the same record
func (f *MorphToManyField) AllowDuplicates() *MorphToManyField {
	f.allowDuplicates = true
	return f
}

// TagField is a polymorphic many-to-many rendered as an inline tag
// picker instead of a relationship panel.
type TagField struct {
	fields.Schema[TagField]
	morphPivot
}

// Tag creates a tag field over a "taggable" polymorphic pivot. Unlike
// the panel relations it renders on index and form views.
func Tag(name string, related resource.Resource, attribute ...string) *TagField {
	f := &TagField{}
	f.Schema = fields.NewSchema("TagField", name, f, attribute...)
	f.morphPivot = morphPivot{related: related, morphName: "taggable"}

	desc := f.Descriptor()
	desc.Readonly = true
	desc.Meta["resource"] = related.Name()

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		list, ok := nestedList(rec[attr])
		if !ok {
			return []Summary{}
		}
		tags := make([]Summary, len(list))
		for i, item := range list {
			tags[i] = summarize(f.related, item)
		}
		return tags
	})
	return f
}

// MorphName overrides the polymorphic column pair prefix
func (f *TagField) MorphName(name string) *TagField {
	f.morphName = name
	return f
}

// PivotTable overrides the pivot table name
func (f *TagField) PivotTable(table string) *TagField {
	f.pivotTable = table
	return f
}

// WithPreview shows a tag detail preview on hover
func (f *TagField) WithPreview() *TagField {
	f.Descriptor().Meta["withPreview"] = true
	return f
}

// CanCreateTags allows creating missing tags inline from the picker
func (f *TagField) CanCreateTags() *TagField {
	f.Descriptor().Meta["canCreate"] = true
	return f
}

// CreateIfMissing looks tags up by the related resource's title column
// and inserts the ones that do not exist yet, returning the ids of the
// whole set.
func (f *TagField) CreateIfMissing(ctx context.Context, q resource.Querier, labels []string) ([]any, error) {
	titleCol := f.related.TitleAttribute()
	ids := make([]any, 0, len(labels))

	for _, label := range labels {
		lookup := fmt.Sprintf("SELECT id FROM %s WHERE %s = ? LIMIT 1", f.related.Table(), titleCol)

		var id any
		err := q.QueryRowContext(ctx, lookup, label).Scan(&id)
		if err == nil {
			ids = append(ids, id)
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to look up tag %q: %w", label, err)
		}

		insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", f.related.Table(), titleCol)
		result, execErr := q.ExecContext(ctx, insert, label)
		if execErr != nil {
			return nil, fmt.Errorf("failed to create tag %q: %w", label, execErr)
		}
		newID, idErr := result.LastInsertId()
		if idErr != nil {
			return nil, fmt.Errorf("failed to read created tag id: %w", idErr)
		}
		ids = append(ids, newID)
	}

	return ids, nil
}
