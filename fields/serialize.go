package fields

import "github.com/steward-admin/steward/request"

// View names one of the four panel views a field can appear on
type View string

const (
	ViewIndex    View = "index"
	ViewDetail   View = "detail"
	ViewCreation View = "creation"
	ViewUpdate   View = "update"
)

// VisibleOn reports whether the visibility flags enable the given view
func (v Visibility) VisibleOn(view View) bool {
	switch view {
	case ViewIndex:
		return v.Index
	case ViewDetail:
		return v.Detail
	case ViewCreation:
		return v.Creation
	case ViewUpdate:
		return v.Update
	default:
		return false
	}
}

// ForView filters elements to those authorized and visible on the view,
// resolving each against the record. The returned slice serializes
// directly into the frontend payload.
func ForView(view View, rec Record, elements []Element) []Element {
	visible := make([]Element, 0, len(elements))
	for _, element := range elements {
		d := element.Descriptor()
		if !d.Visibility.VisibleOn(view) || !d.Authorized(rec) {
			continue
		}
		element.Resolve(rec)
		visible = append(visible, element)
	}
	return visible
}

// FillAll hydrates the record from the form through every field visible
// on the given form view. The first fill error aborts.
func FillAll(view View, form request.Form, rec Record, elements []Element) error {
	for _, element := range elements {
		d := element.Descriptor()
		if !d.Visibility.VisibleOn(view) || !d.Authorized(rec) {
			continue
		}
		if err := element.Fill(form, rec); err != nil {
			return err
		}
	}
	return nil
}

// RulesByAttribute collects the validation rules for a form view keyed
// by attribute, for the host's validation pass.
func RulesByAttribute(view View, elements []Element) map[string][]string {
	rules := make(map[string][]string)
	for _, element := range elements {
		d := element.Descriptor()
		if !d.Visibility.VisibleOn(view) {
			continue
		}
		switch view {
		case ViewCreation:
			rules[d.Attribute] = d.RulesForCreation()
		case ViewUpdate:
			rules[d.Attribute] = d.RulesForUpdate()
		default:
			rules[d.Attribute] = emptyIfNil(d.Rules)
		}
	}
	return rules
}
