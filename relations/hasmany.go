package relations

import (
	"context"

	"github.com/steward-admin/steward/fields"
	"github.com/steward-admin/steward/resource"
)

// HasManyField links a record to dependents stored in another table
// pointing back with a foreign key. It resolves a count summary and
// defers the actual listing to Related.
type HasManyField struct {
	fields.Schema[HasManyField]

	related    resource.Resource
	foreignKey string
}

// HasMany creates a has-many field, shown on detail views only
func HasMany(name string, related resource.Resource, attribute ...string) *HasManyField {
	f := &HasManyField{related: related}
	f.Schema = fields.NewSchema("HasManyField", name, f, attribute...)

	desc := f.Descriptor()
	desc.Readonly = true
	desc.Visibility = fields.Visibility{Detail: true}

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		return countSummary(f.related, rec[attr])
	})
	return f
}

// ForeignKey overrides the foreign key column on the related table
func (f *HasManyField) ForeignKey(column string) *HasManyField {
	f.foreignKey = column
	return f
}

// Related lists the dependents of a parent record, paginated and
// searchable over the related resource's search columns.
func (f *HasManyField) Related(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, params Params) (*Page, error) {
	key := f.foreignKey
	if key == "" {
		key = parent.Model() + "_id"
	}
	from := "FROM " + f.related.Table() + " WHERE " + key + " = ?"
	return listing(ctx, q, "*", from, []any{parentID}, f.related.SearchColumns(), params)
}

// HasOneThroughField reaches a single distant record through an
// intermediate table.
type HasOneThroughField struct {
	fields.Schema[HasOneThroughField]

	related   resource.Resource
	through   resource.Resource
	firstKey  string
	secondKey string
}

// HasOneThrough creates a has-one-through field. The first key lives on
// the intermediate table pointing at the parent; the second key lives
// on the related table pointing at the intermediate record.
func HasOneThrough(name string, related, through resource.Resource, attribute ...string) *HasOneThroughField {
	f := &HasOneThroughField{related: related, through: through}
	f.Schema = fields.NewSchema("HasOneThroughField", name, f, attribute...)

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

// Keys overrides the intermediate and related foreign keys
func (f *HasOneThroughField) Keys(firstKey, secondKey string) *HasOneThroughField {
	f.firstKey = firstKey
	f.secondKey = secondKey
	return f
}

// Load fetches the distant record for a parent, or nil when absent
func (f *HasOneThroughField) Load(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any) (resource.Record, error) {
	page, err := throughListing(ctx, q, f.related, f.through, parent, parentID,
		f.firstKey, f.secondKey, nil, Params{PerPage: 1})
	if err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, nil
	}
	return page.Data[0], nil
}

// HasManyThroughField reaches distant records through an intermediate
// table.
type HasManyThroughField struct {
	fields.Schema[HasManyThroughField]

	related   resource.Resource
	through   resource.Resource
	firstKey  string
	secondKey string
}

// HasManyThrough creates a has-many-through field, detail views only
func HasManyThrough(name string, related, through resource.Resource, attribute ...string) *HasManyThroughField {
	f := &HasManyThroughField{related: related, through: through}
	f.Schema = fields.NewSchema("HasManyThroughField", name, f, attribute...)

	desc := f.Descriptor()
	desc.Readonly = true
	desc.Visibility = fields.Visibility{Detail: true}

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		return countSummary(f.related, rec[attr])
	})
	return f
}

// Keys overrides the intermediate and related foreign keys
func (f *HasManyThroughField) Keys(firstKey, secondKey string) *HasManyThroughField {
	f.firstKey = firstKey
	f.secondKey = secondKey
	return f
}

// Related lists the distant records of a parent, paginated and
// searchable over the related resource's search columns.
func (f *HasManyThroughField) Related(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, params Params) (*Page, error) {
	return throughListing(ctx, q, f.related, f.through, parent, parentID,
		f.firstKey, f.secondKey, f.related.SearchColumns(), params)
}

// throughListing joins the related table to the intermediate table and
// filters by the parent id, qualifying search columns against the
// related table.
func throughListing(ctx context.Context, q resource.Querier, related, through, parent resource.Resource, parentID any, firstKey, secondKey string, searchCols []string, params Params) (*Page, error) {
	if firstKey == "" {
		firstKey = parent.Model() + "_id"
	}
	if secondKey == "" {
		secondKey = through.Model() + "_id"
	}

	from := "FROM " + related.Table() +
		" INNER JOIN " + through.Table() +
		" ON " + related.Table() + "." + secondKey + " = " + through.Table() + ".id" +
		" WHERE " + through.Table() + "." + firstKey + " = ?"

	qualified := make([]string, len(searchCols))
	for i, col := range searchCols {
		qualified[i] = related.Table() + "." + col
	}

	return listing(ctx, q, related.Table()+".*", from, []any{parentID}, qualified, params)
}

// countSummary builds the to-many resolve payload from a preloaded
// related collection. Without preloaded data the count is nil and the
// frontend fetches it through the listing endpoint.
func countSummary(related resource.Resource, preloaded any) map[string]any {
	summary := map[string]any{"resource": nil, "count": nil}
	if related != nil {
		summary["resource"] = related.Name()
	}
	if list, ok := nestedList(preloaded); ok {
		summary["count"] = len(list)
	}
	return summary
}
