package relations

import (
	"context"
	"fmt"

	"github.com/steward-admin/steward/fields"
	"github.com/steward-admin/steward/request"
	"github.com/steward-admin/steward/resource"
)

// MorphToField links a record to an owner of varying type, stored as a
// type column next to the id column.
type MorphToField struct {
	fields.Schema[MorphToField]

	types    []resource.Resource
	registry *resource.Registry
}

// MorphTo creates a polymorphic owner field. The record stores the
// owner under "<attribute>_type" and "<attribute>_id".
func MorphTo(name string, attribute ...string) *MorphToField {
	f := &MorphToField{}
	f.Schema = fields.NewSchema("MorphToField", name, f, attribute...)

	desc := f.Descriptor()
	desc.InstallResolve(func(rec fields.Record, attr string) any {
		model := request.Stringify(rec[attr+"_type"])
		res := f.resourceForModel(model)
		if nested, ok := nestedRecord(rec[attr]); ok {
			return summarize(res, nested)
		}
		return placeholder(res, rec[attr+"_id"])
	})
	desc.InstallFill(func(form request.Form, rec fields.Record, attr string) error {
		if form.Exists(attr) {
			rec[attr+"_id"] = form.Input(attr)
		}
		if form.Exists(attr + "_type") {
			rec[attr+"_type"] = form.String(attr + "_type")
		}
		return nil
	})
	return f
}

// Types declares the resources this owner may point at
func (f *MorphToField) Types(types ...resource.Resource) *MorphToField {
	f.types = types

	options := make([]map[string]any, len(types))
	for i, res := range types {
		options[i] = map[string]any{"value": res.Model(), "label": res.Name()}
	}
	f.Descriptor().Meta["types"] = options
	return f
}

// TypesFromRegistry resolves the type column through a resource
// registry instead of an explicit type list. Every registered resource
// becomes a selectable owner type.
func (f *MorphToField) TypesFromRegistry(reg *resource.Registry) *MorphToField {
	f.registry = reg

	all := reg.All()
	names := reg.Names()
	options := make([]map[string]any, len(names))
	for i, name := range names {
		res := all[name]
		options[i] = map[string]any{"value": res.Model(), "label": res.Name()}
	}
	f.Descriptor().Meta["types"] = options
	return f
}

// resourceForModel scans the declared types for a model match, then the
// registry when one is wired. An unmatched model returns nil and the
// field degrades to a placeholder title rather than failing.
func (f *MorphToField) resourceForModel(model string) resource.Resource {
	for _, res := range f.types {
		if res.Model() == model {
			return res
		}
	}
	if f.registry != nil {
		if res, ok := f.registry.ForModel(model); ok {
			return res
		}
	}
	return nil
}

// MorphOneField links a record to a single dependent that stores the
// parent polymorphically.
type MorphOneField struct {
	fields.Schema[MorphOneField]

	related   resource.Resource
	morphName string
}

// MorphOne creates a polymorphic has-one field. The morph name is the
// column pair prefix on the related table and defaults to the
// attribute.
func MorphOne(name string, related resource.Resource, attribute ...string) *MorphOneField {
	f := &MorphOneField{related: related}
	f.Schema = fields.NewSchema("MorphOneField", name, f, attribute...)

	desc := f.Descriptor()
	desc.Readonly = true
	desc.Visibility = fields.Visibility{Index: true, Detail: true}
	f.morphName = desc.Attribute

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		if nested, ok := nestedRecord(rec[attr]); ok {
			return summarize(f.related, nested)
		}
		return Summary{Exists: false}
	})
	return f
}

// MorphName overrides the polymorphic column pair prefix
func (f *MorphOneField) MorphName(name string) *MorphOneField {
	f.morphName = name
	return f
}

// Load fetches the dependent record for a parent, or nil when absent
func (f *MorphOneField) Load(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any) (resource.Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s_type = ? AND %s_id = ? LIMIT 1",
		f.related.Table(), f.morphName, f.morphName)
	rows, err := q.QueryContext(ctx, query, parent.Model(), parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", f.Descriptor().Attribute, err)
	}
	defer rows.Close()

	return resource.ScanFirst(rows)
}

// MorphManyField links a record to dependents that store the parent
// polymorphically.
type MorphManyField struct {
	fields.Schema[MorphManyField]

	related   resource.Resource
	morphName string
}

// MorphMany creates a polymorphic has-many field, detail views only
func MorphMany(name string, related resource.Resource, attribute ...string) *MorphManyField {
	f := &MorphManyField{related: related}
	f.Schema = fields.NewSchema("MorphManyField", name, f, attribute...)

	desc := f.Descriptor()
	desc.Readonly = true
	desc.Visibility = fields.Visibility{Detail: true}
	f.morphName = desc.Attribute

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		return countSummary(f.related, rec[attr])
	})
	return f
}

// MorphName overrides the polymorphic column pair prefix
func (f *MorphManyField) MorphName(name string) *MorphManyField {
	f.morphName = name
	return f
}

// Related lists the dependents of a parent, paginated and searchable
func (f *MorphManyField) Related(ctx context.Context, q resource.Querier, parent resource.Resource, parentID any, params Params) (*Page, error) {
	from := "FROM " + f.related.Table() +
		" WHERE " + f.morphName + "_type = ? AND " + f.morphName + "_id = ?"
	return listing(ctx, q, "*", from, []any{parent.Model(), parentID}, f.related.SearchColumns(), params)
}
