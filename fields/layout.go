package fields

import "github.com/steward-admin/steward/request"

// LineField is a single display line inside a Stack
type LineField struct {
	Schema[LineField]
}

// Line creates a display-only line for stacked layouts
func Line(name string, attribute ...string) *LineField {
	f := &LineField{}
	f.init("LineField", name, f, attribute...)
	f.desc.Readonly = true
	f.desc.Visibility = Visibility{Index: true, Detail: true}
	f.desc.typeFill = func(request.Form, Record, string) error { return nil }
	return f
}

// AsHeading renders the line in heading type
func (f *LineField) AsHeading() *LineField {
	f.desc.Meta["classes"] = "heading"
	return f
}

// AsSubTitle renders the line in subtitle type
func (f *LineField) AsSubTitle() *LineField {
	f.desc.Meta["classes"] = "subtitle"
	return f
}

// AsSmall renders the line in small type
func (f *LineField) AsSmall() *LineField {
	f.desc.Meta["classes"] = "small"
	return f
}

// StackField stacks multiple lines into one index/detail cell
type StackField struct {
	Schema[StackField]

	lines []Element
}

// Stack creates a stacked display field. It resolves each child line
// against the record and serializes them under the "lines" meta key.
func Stack(name string, lines ...Element) *StackField {
	f := &StackField{lines: lines}
	f.init("StackField", name, f)
	f.desc.Readonly = true
	f.desc.Visibility = Visibility{Index: true, Detail: true}
	f.desc.typeResolve = func(rec Record, _ string) any {
		for _, line := range f.lines {
			line.Resolve(rec)
		}
		f.desc.Meta["lines"] = f.lines
		return nil
	}
	f.desc.typeFill = func(request.Form, Record, string) error { return nil }
	return f
}

// Lines replaces the stacked child fields
func (f *StackField) Lines(lines ...Element) *StackField {
	f.lines = lines
	return f
}

// HeadingField renders a section banner inside forms and detail views
type HeadingField struct {
	Schema[HeadingField]
}

// Heading creates a section heading. It maps to no attribute, fills
// nothing, and never appears on index views.
func Heading(name string) *HeadingField {
	f := &HeadingField{}
	f.init("HeadingField", name, f, "__heading__")
	f.desc.Readonly = true
	f.desc.Visibility = Visibility{Detail: true, Creation: true, Update: true}
	f.desc.typeResolve = func(Record, string) any { return nil }
	f.desc.typeFill = func(request.Form, Record, string) error { return nil }
	return f
}

// AsHTML renders the heading text as raw HTML
func (f *HeadingField) AsHTML() *HeadingField {
	f.desc.Meta["asHtml"] = true
	return f
}
