package relations

import (
	"context"
	"fmt"

	"github.com/steward-admin/steward/fields"
	"github.com/steward-admin/steward/request"
	"github.com/steward-admin/steward/resource"
)

// BelongsToField links a record to its owner through a foreign key
// stored on the record itself.
type BelongsToField struct {
	fields.Schema[BelongsToField]

	related    resource.Resource
	foreignKey string
}

// BelongsTo creates a belongs-to field. The attribute defaults to the
// snake_cased name and the foreign key to "<attribute>_id".
func BelongsTo(name string, related resource.Resource, attribute ...string) *BelongsToField {
	f := &BelongsToField{related: related}
	f.Schema = fields.NewSchema("BelongsToField", name, f, attribute...)

	desc := f.Descriptor()
	f.foreignKey = desc.Attribute + "_id"

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		if nested, ok := nestedRecord(rec[attr]); ok {
			return summarize(f.related, nested)
		}
		return placeholder(f.related, rec[f.foreignKey])
	})
	desc.InstallFill(func(form request.Form, rec fields.Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		value := form.Input(attr)
		if request.Stringify(value) == "" {
			if desc.Nullable {
				rec[f.foreignKey] = nil
			}
			return nil
		}
		rec[f.foreignKey] = value
		return nil
	})
	return f
}

// ForeignKey overrides the foreign key column on the owning record
func (f *BelongsToField) ForeignKey(column string) *BelongsToField {
	f.foreignKey = column
	return f
}

// Related lists attachable owner candidates, searchable over the related
// resource's search columns.
func (f *BelongsToField) Related(ctx context.Context, q resource.Querier, params Params) (*Page, error) {
	from := "FROM " + f.related.Table()
	return listing(ctx, q, "*", from, nil, f.related.SearchColumns(), params)
}

// HasOneField links a record to a single dependent stored in another
// table pointing back with a foreign key.
type HasOneField struct {
	fields.Schema[HasOneField]

	related    resource.Resource
	foreignKey string
}

// HasOne creates a has-one field. The foreign key on the related table
// defaults to "<parent model>_id" at query time.
func HasOne(name string, related resource.Resource, attribute ...string) *HasOneField {
	f := &HasOneField{related: related}
	f.Schema = fields.NewSchema("HasOneField", name, f, attribute...)

	desc := f.Descriptor()
	desc.Readonly = true
	desc.Visibility = fields.Visibility{Index: true, Detail: true}

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		if nested, ok := nestedRecord(rec[attr]); ok {
			return summarize(f.related, nested)
		}
		return Summary{Exists: false}
	})
	return f
}

// ForeignKey overrides the foreign key column on the related table
func (f *HasOneField) ForeignKey(column string) *HasOneField {
	f.foreignKey = column
	return f
}

// Load fetches the dependent record for a parent, or nil when absent
func (f *HasOneField) Load(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any) (resource.Record, error) {
	key := f.foreignKey
	if key == "" {
		key = parent.Model() + "_id"
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? LIMIT 1", f.related.Table(), key)
	rows, err := q.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", f.Descriptor().Attribute, err)
	}
	defer rows.Close()

	return resource.ScanFirst(rows)
}
