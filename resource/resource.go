// Package resource wraps domain entities for the admin panel: each
// Resource names a backing table, declares its fields, and carries the
// policy hooks and search columns the panel consults. A thread-safe
// registry maps resource and model names to definitions so relationship
// fields resolve explicitly instead of guessing from attribute names.
package resource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-openapi/inflect"

	"github.com/steward-admin/steward/fields"
	"github.com/steward-admin/steward/request"
)

// Record is the map representation of a resource row
type Record = fields.Record

// Querier executes SQL, satisfied by *sql.DB and *sql.Tx alike
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TxBeginner is satisfied by *sql.DB and enables transactional batches
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Policy holds per-operation authorization hooks. Nil hooks allow.
type Policy struct {
	CanView   func(rec Record) bool
	CanCreate func() bool
	CanUpdate func(rec Record) bool
	CanDelete func(rec Record) bool
}

// Resource describes one admin-managed entity
type Resource interface {
	// Name is the plural resource identifier, e.g. "users"
	Name() string

	// Model is the identifier stored in polymorphic type columns
	Model() string

	// Table is the backing database table
	Table() string

	// TitleAttribute is the column used as the display title
	TitleAttribute() string

	// Fields returns the field declarations for this resource
	Fields() []fields.Element

	// SearchColumns lists the columns matched by search queries
	SearchColumns() []string

	// Policy returns the authorization hooks
	Policy() Policy
}

// Definition is a plain-struct Resource implementation with inflected
// defaults. Hosts usually declare resources as Definition literals via
// Define.
type Definition struct {
	ResourceName   string
	ModelName      string
	TableName      string
	TitleAttr      string
	FieldsFunc     func() []fields.Element
	Search         []string
	Authorization  Policy
}

// Define creates a resource definition. The model name defaults to the
// singular of the resource name, the table to the resource name itself,
// and the title attribute to "name".
func Define(name string) *Definition {
	return &Definition{
		ResourceName: name,
		ModelName:    inflect.Singularize(name),
		TableName:    name,
		TitleAttr:    "name",
	}
}

// WithModel overrides the polymorphic model identifier
func (d *Definition) WithModel(model string) *Definition {
	d.ModelName = model
	return d
}

// WithTable overrides the backing table name
func (d *Definition) WithTable(table string) *Definition {
	d.TableName = table
	return d
}

// WithTitle overrides the title attribute
func (d *Definition) WithTitle(attribute string) *Definition {
	d.TitleAttr = attribute
	return d
}

// WithFields sets the field declaration callback
func (d *Definition) WithFields(fn func() []fields.Element) *Definition {
	d.FieldsFunc = fn
	return d
}

// WithSearch sets the searchable columns
func (d *Definition) WithSearch(columns ...string) *Definition {
	d.Search = columns
	return d
}

// WithPolicy sets the authorization hooks
func (d *Definition) WithPolicy(policy Policy) *Definition {
	d.Authorization = policy
	return d
}

// Name is the plural resource identifier
func (d *Definition) Name() string { return d.ResourceName }

// Model is the identifier stored in polymorphic type columns
func (d *Definition) Model() string { return d.ModelName }

// Table is the backing database table
func (d *Definition) Table() string { return d.TableName }

// TitleAttribute is the column used as the display title
func (d *Definition) TitleAttribute() string { return d.TitleAttr }

// Fields returns the field declarations for this resource
func (d *Definition) Fields() []fields.Element {
	if d.FieldsFunc == nil {
		return nil
	}
	return d.FieldsFunc()
}

// SearchColumns lists the columns matched by search queries
func (d *Definition) SearchColumns() []string { return d.Search }

// Policy returns the authorization hooks
func (d *Definition) Policy() Policy { return d.Authorization }

// Title resolves a record's display title, degrading to "#<id>" when
// the title attribute is absent.
func Title(r Resource, rec Record) string {
	if rec == nil {
		return ""
	}
	if value, ok := rec[r.TitleAttribute()]; ok && value != nil {
		return request.Stringify(value)
	}
	return fmt.Sprintf("#%v", rec["id"])
}

// Serialize produces the index/detail payload for one record: the
// resource name, id, title, and the resolved fields for the view.
func Serialize(r Resource, view fields.View, rec Record) map[string]any {
	return map[string]any{
		"resource": r.Name(),
		"id":       rec["id"],
		"title":    Title(r, rec),
		"fields":   fields.ForView(view, rec, r.Fields()),
	}
}
