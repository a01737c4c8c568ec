// Package fields provides the declarative field definitions an admin
// panel serializes for its frontend. Every field maps a display name to
// a record attribute and carries value resolution, request hydration,
// validation rules, and per-view visibility.
package fields

import (
	"encoding/json"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/steward-admin/steward/internal/pathutil"
	"github.com/steward-admin/steward/request"
)

// Record is the map representation of a resource row the admin layer
// reads from and writes to.
type Record = map[string]any

// ResolveFunc overrides how a field reads its value from a record
type ResolveFunc func(rec Record, attribute string) any

// FillFunc overrides how a field writes request input to a record
type FillFunc func(form request.Form, rec Record, attribute string) error

// DisplayFunc transforms a resolved value before serialization
type DisplayFunc func(value any) any

// AuthorizeFunc decides per-record field visibility or writability
type AuthorizeFunc func(rec Record) bool

// Visibility holds the four independent per-view display flags
type Visibility struct {
	Index    bool
	Detail   bool
	Creation bool
	Update   bool
}

// Element is the contract every field type satisfies. Concrete types
// gain these methods from the shared builder core.
type Element interface {
	Descriptor() *Descriptor
	Resolve(rec Record)
	Fill(form request.Form, rec Record) error
	MarshalJSON() ([]byte, error)
}

// Descriptor carries the state shared by all field types. Fields are
// request-scoped: a Descriptor is built per request and never reused
// across requests.
type Descriptor struct {
	Component    string
	Name         string
	Attribute    string
	Value        any
	Sortable     bool
	Searchable   bool
	Nullable     bool
	Readonly     bool
	HelpText     string
	Placeholder  string
	DefaultValue any

	Rules         []string
	CreationRules []string
	UpdateRules   []string

	Visibility Visibility

	// Meta holds type-specific serialization payload. Envelope keys
	// always win over Meta keys of the same name.
	Meta map[string]any

	resolveFn   ResolveFunc
	fillFn      FillFunc
	displayFn   DisplayFunc
	canSeeFn    AuthorizeFunc
	canUpdateFn AuthorizeFunc

	// typeResolve and typeFill carry the behavior a concrete field type
	// installs at construction. User callbacks take precedence.
	typeResolve ResolveFunc
	typeFill    FillFunc
}

// NewDescriptor creates a descriptor with all views enabled. When no
// attribute is given it is derived from the display name ("First Name"
// becomes "first_name").
func NewDescriptor(component, name string, attribute ...string) *Descriptor {
	attr := ""
	if len(attribute) > 0 {
		attr = attribute[0]
	}
	if attr == "" {
		attr = AttributeFromName(name)
	}
	return &Descriptor{
		Component: component,
		Name:      name,
		Attribute: attr,
		Visibility: Visibility{
			Index:    true,
			Detail:   true,
			Creation: true,
			Update:   true,
		},
		Meta: make(map[string]any),
	}
}

// AttributeFromName derives a snake_case attribute from a display name
func AttributeFromName(name string) string {
	return inflect.Underscore(strings.ReplaceAll(name, " ", ""))
}

// InstallResolve sets the resolver a field type installs at
// construction. User ResolveUsing callbacks still take precedence.
// Field packages outside this one use it; applications use ResolveUsing.
func (d *Descriptor) InstallResolve(fn ResolveFunc) {
	d.typeResolve = fn
}

// InstallFill is the Fill counterpart of InstallResolve
func (d *Descriptor) InstallFill(fn FillFunc) {
	d.typeFill = fn
}

// Resolve reads the field's value from the record. The user callback
// wins, then type-specific resolution, then a dot-path lookup on the
// attribute. The display transform applies last.
func (d *Descriptor) Resolve(rec Record) {
	switch {
	case d.resolveFn != nil:
		d.Value = d.resolveFn(rec, d.Attribute)
	case d.typeResolve != nil:
		d.Value = d.typeResolve(rec, d.Attribute)
	default:
		d.Value = pathutil.GetDefault(rec, d.Attribute, d.DefaultValue)
	}

	if d.displayFn != nil {
		d.Value = d.displayFn(d.Value)
	}
}

// Fill writes request input into the record. Readonly fields and fields
// failing the update authorization check never mutate the record.
// Malformed scalar input degrades to raw storage; rejection is the
// validation pass's job.
func (d *Descriptor) Fill(form request.Form, rec Record) error {
	if d.Readonly {
		return nil
	}
	if d.canUpdateFn != nil && !d.canUpdateFn(rec) {
		return nil
	}

	switch {
	case d.fillFn != nil:
		return d.fillFn(form, rec, d.Attribute)
	case d.typeFill != nil:
		return d.typeFill(form, rec, d.Attribute)
	default:
		if form.Exists(d.Attribute) {
			pathutil.Set(rec, d.Attribute, form.Input(d.Attribute))
		}
		return nil
	}
}

// Authorized reports whether the field may be shown for the record
func (d *Descriptor) Authorized(rec Record) bool {
	if d.canSeeFn == nil {
		return true
	}
	return d.canSeeFn(rec)
}

// SetRequired idempotently adds or removes the "required" rule
func (d *Descriptor) SetRequired(required bool) {
	has := containsRule(d.Rules, "required")
	if required && !has {
		d.Rules = append(d.Rules, "required")
	}
	if !required && has {
		d.Rules = removeRule(d.Rules, "required")
	}
}

// IsRequired reports whether any rule set carries "required"
func (d *Descriptor) IsRequired() bool {
	return containsRule(d.Rules, "required") ||
		containsRule(d.CreationRules, "required") ||
		containsRule(d.UpdateRules, "required")
}

// RulesForCreation returns the base rules merged with creation rules
func (d *Descriptor) RulesForCreation() []string {
	return mergeRules(d.Rules, d.CreationRules)
}

// RulesForUpdate returns the base rules merged with update rules
func (d *Descriptor) RulesForUpdate() []string {
	return mergeRules(d.Rules, d.UpdateRules)
}

// MarshalJSON emits the fixed envelope merged with Meta. Meta entries
// never shadow envelope keys.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	payload := map[string]any{
		"component":      d.Component,
		"name":           d.Name,
		"attribute":      d.Attribute,
		"value":          d.Value,
		"sortable":       d.Sortable,
		"searchable":     d.Searchable,
		"nullable":       d.Nullable,
		"readonly":       d.Readonly,
		"helpText":       d.HelpText,
		"placeholder":    d.Placeholder,
		"default":        d.DefaultValue,
		"rules":          emptyIfNil(d.Rules),
		"creationRules":  emptyIfNil(d.CreationRules),
		"updateRules":    emptyIfNil(d.UpdateRules),
		"showOnIndex":    d.Visibility.Index,
		"showOnDetail":   d.Visibility.Detail,
		"showOnCreation": d.Visibility.Creation,
		"showOnUpdate":   d.Visibility.Update,
	}

	for key, value := range d.Meta {
		if _, taken := payload[key]; !taken {
			payload[key] = value
		}
	}

	return json.Marshal(payload)
}

func emptyIfNil(rules []string) []string {
	if rules == nil {
		return []string{}
	}
	return rules
}

func containsRule(rules []string, rule string) bool {
	for _, r := range rules {
		if r == rule {
			return true
		}
	}
	return false
}

func removeRule(rules []string, rule string) []string {
	out := rules[:0]
	for _, r := range rules {
		if r != rule {
			out = append(out, r)
		}
	}
	return out
}

func mergeRules(base, extra []string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	merged = append(merged, base...)
	for _, rule := range extra {
		if !containsRule(merged, rule) {
			merged = append(merged, rule)
		}
	}
	return merged
}
