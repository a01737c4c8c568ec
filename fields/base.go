package fields

import "github.com/steward-admin/steward/request"

// Schema is the shared builder core every field type embeds. The type
// parameter lets chained calls return the concrete field so type-specific
// methods stay reachable mid-chain.
type Schema[T any] struct {
	desc *Descriptor
	self *T
}

func (s *Schema[T]) init(component, name string, self *T, attribute ...string) {
	s.desc = NewDescriptor(component, name, attribute...)
	s.self = self
}

// NewSchema initializes the builder core for field types defined in
// other packages, such as the relationship fields.
func NewSchema[T any](component, name string, self *T, attribute ...string) Schema[T] {
	return Schema[T]{desc: NewDescriptor(component, name, attribute...), self: self}
}

// Descriptor returns the field's underlying descriptor
func (s *Schema[T]) Descriptor() *Descriptor {
	return s.desc
}

// Resolve reads the field's value from the record
func (s *Schema[T]) Resolve(rec Record) {
	s.desc.Resolve(rec)
}

// Fill writes request input into the record
func (s *Schema[T]) Fill(form request.Form, rec Record) error {
	return s.desc.Fill(form, rec)
}

// Authorized reports whether the field may be shown for the record
func (s *Schema[T]) Authorized(rec Record) bool {
	return s.desc.Authorized(rec)
}

// MarshalJSON serializes the field envelope plus type-specific meta
func (s *Schema[T]) MarshalJSON() ([]byte, error) {
	return s.desc.MarshalJSON()
}

// Sortable marks the field as sortable on index views
func (s *Schema[T]) Sortable() *T {
	s.desc.Sortable = true
	return s.self
}

// Searchable includes the field's attribute in resource search
func (s *Schema[T]) Searchable() *T {
	s.desc.Searchable = true
	return s.self
}

// Nullable stores empty input as nil instead of the zero value
func (s *Schema[T]) Nullable() *T {
	s.desc.Nullable = true
	return s.self
}

// Readonly prevents the field from filling the record
func (s *Schema[T]) Readonly() *T {
	s.desc.Readonly = true
	return s.self
}

// Help sets the help text shown under the form input
func (s *Schema[T]) Help(text string) *T {
	s.desc.HelpText = text
	return s.self
}

// Placeholder sets the form input placeholder
func (s *Schema[T]) Placeholder(text string) *T {
	s.desc.Placeholder = text
	return s.self
}

// Default sets the value used when the record has none
func (s *Schema[T]) Default(value any) *T {
	s.desc.DefaultValue = value
	return s.self
}

// Rules sets the validation rules applied on both create and update
func (s *Schema[T]) Rules(rules ...string) *T {
	s.desc.Rules = rules
	return s.self
}

// CreationRules sets rules applied only when creating
func (s *Schema[T]) CreationRules(rules ...string) *T {
	s.desc.CreationRules = rules
	return s.self
}

// UpdateRules sets rules applied only when updating
func (s *Schema[T]) UpdateRules(rules ...string) *T {
	s.desc.UpdateRules = rules
	return s.self
}

// Required toggles the "required" rule idempotently
func (s *Schema[T]) Required(required bool) *T {
	s.desc.SetRequired(required)
	return s.self
}

// WithMeta merges extra keys into the field's serialized meta
func (s *Schema[T]) WithMeta(meta map[string]any) *T {
	for key, value := range meta {
		s.desc.Meta[key] = value
	}
	return s.self
}

// ResolveUsing overrides value resolution
func (s *Schema[T]) ResolveUsing(fn ResolveFunc) *T {
	s.desc.resolveFn = fn
	return s.self
}

// FillUsing overrides request hydration
func (s *Schema[T]) FillUsing(fn FillFunc) *T {
	s.desc.fillFn = fn
	return s.self
}

// DisplayUsing transforms the resolved value before serialization
func (s *Schema[T]) DisplayUsing(fn DisplayFunc) *T {
	s.desc.displayFn = fn
	return s.self
}

// CanSee gates field visibility per record
func (s *Schema[T]) CanSee(fn AuthorizeFunc) *T {
	s.desc.canSeeFn = fn
	return s.self
}

// CanUpdate gates field writability per record
func (s *Schema[T]) CanUpdate(fn AuthorizeFunc) *T {
	s.desc.canUpdateFn = fn
	return s.self
}

// ShowOnIndex enables the field on the index view
func (s *Schema[T]) ShowOnIndex() *T {
	s.desc.Visibility.Index = true
	return s.self
}

// ShowOnDetail enables the field on the detail view
func (s *Schema[T]) ShowOnDetail() *T {
	s.desc.Visibility.Detail = true
	return s.self
}

// ShowWhenCreating enables the field on the creation form
func (s *Schema[T]) ShowWhenCreating() *T {
	s.desc.Visibility.Creation = true
	return s.self
}

// ShowWhenUpdating enables the field on the update form
func (s *Schema[T]) ShowWhenUpdating() *T {
	s.desc.Visibility.Update = true
	return s.self
}

// HideFromIndex removes the field from the index view
func (s *Schema[T]) HideFromIndex() *T {
	s.desc.Visibility.Index = false
	return s.self
}

// HideFromDetail removes the field from the detail view
func (s *Schema[T]) HideFromDetail() *T {
	s.desc.Visibility.Detail = false
	return s.self
}

// HideWhenCreating removes the field from the creation form
func (s *Schema[T]) HideWhenCreating() *T {
	s.desc.Visibility.Creation = false
	return s.self
}

// HideWhenUpdating removes the field from the update form
func (s *Schema[T]) HideWhenUpdating() *T {
	s.desc.Visibility.Update = false
	return s.self
}

// OnlyOnIndex sets all four visibility flags for index-only display
func (s *Schema[T]) OnlyOnIndex() *T {
	s.desc.Visibility = Visibility{Index: true}
	return s.self
}

// OnlyOnDetail sets all four visibility flags for detail-only display
func (s *Schema[T]) OnlyOnDetail() *T {
	s.desc.Visibility = Visibility{Detail: true}
	return s.self
}

// OnlyOnForms sets all four visibility flags for form-only display
func (s *Schema[T]) OnlyOnForms() *T {
	s.desc.Visibility = Visibility{Creation: true, Update: true}
	return s.self
}

// ExceptOnForms sets all four visibility flags to hide the field on forms
func (s *Schema[T]) ExceptOnForms() *T {
	s.desc.Visibility = Visibility{Index: true, Detail: true}
	return s.self
}
