package fields

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/steward-admin/steward/internal/pathutil"
	"github.com/steward-admin/steward/request"
)

// IDField displays the record's primary key
type IDField struct {
	Schema[IDField]
}

// ID creates a primary-key field, shown outside forms only
func ID(attribute ...string) *IDField {
	attr := "id"
	if len(attribute) > 0 {
		attr = attribute[0]
	}
	f := &IDField{}
	f.init("IDField", "ID", f, attr)
	f.desc.Sortable = true
	f.desc.Readonly = true
	f.desc.Visibility = Visibility{Index: true, Detail: true}
	return f
}

// TextField is a single-line text input
type TextField struct {
	Schema[TextField]
}

// Text creates a single-line text field
func Text(name string, attribute ...string) *TextField {
	f := &TextField{}
	f.init("TextField", name, f, attribute...)
	return f
}

// Suggestions offers autocomplete suggestions on the form input
func (f *TextField) Suggestions(suggestions ...string) *TextField {
	f.desc.Meta["suggestions"] = suggestions
	return f
}

// Maxlength caps the input length and shows a counter when enforced
func (f *TextField) Maxlength(limit int) *TextField {
	f.desc.Meta["maxlength"] = limit
	return f
}

// AsHTML renders the resolved value as raw HTML on detail views
func (f *TextField) AsHTML() *TextField {
	f.desc.Meta["asHtml"] = true
	return f
}

// TextareaField is a multi-line text input, hidden from index by default
type TextareaField struct {
	Schema[TextareaField]
}

// Textarea creates a multi-line text field
func Textarea(name string, attribute ...string) *TextareaField {
	f := &TextareaField{}
	f.init("TextareaField", name, f, attribute...)
	f.desc.Visibility.Index = false
	f.desc.Meta["rows"] = 4
	return f
}

// Rows sets the visible textarea height
func (f *TextareaField) Rows(rows int) *TextareaField {
	f.desc.Meta["rows"] = rows
	return f
}

// AlwaysShow expands the content on detail views instead of collapsing
func (f *TextareaField) AlwaysShow() *TextareaField {
	f.desc.Meta["alwaysShow"] = true
	return f
}

// EmailField stores lowercased, trimmed email addresses
type EmailField struct {
	Schema[EmailField]
}

// Email creates an email field. Input is trimmed and lowercased on fill;
// format enforcement belongs to the validation rules.
func Email(name string, attribute ...string) *EmailField {
	f := &EmailField{}
	f.init("EmailField", name, f, attribute...)
	f.desc.Meta["asLink"] = "mailto"
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		pathutil.Set(rec, attr, strings.ToLower(strings.TrimSpace(form.String(attr))))
		return nil
	}
	return f
}

// PasswordField hashes input on fill and never serializes a value
type PasswordField struct {
	Schema[PasswordField]
}

// Password creates a password field, shown on forms only. Non-empty
// input is bcrypt-hashed before storage; empty input leaves the stored
// hash untouched.
func Password(name string, attribute ...string) *PasswordField {
	f := &PasswordField{}
	f.init("PasswordField", name, f, attribute...)
	f.desc.Visibility = Visibility{Creation: true, Update: true}
	f.desc.typeResolve = func(Record, string) any {
		// The stored hash must never reach the frontend
		return nil
	}
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		plain := form.String(attr)
		if !form.Exists(attr) || plain == "" {
			return nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		pathutil.Set(rec, attr, string(hash))
		return nil
	}
	return f
}

// WithoutHashing stores the raw input, for hosts that hash in a model hook
func (f *PasswordField) WithoutHashing() *PasswordField {
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) || form.String(attr) == "" {
			return nil
		}
		pathutil.Set(rec, attr, form.String(attr))
		return nil
	}
	return f
}

// HiddenField carries a value through forms without rendering an input
type HiddenField struct {
	Schema[HiddenField]
}

// Hidden creates a hidden form field
func Hidden(name string, attribute ...string) *HiddenField {
	f := &HiddenField{}
	f.init("HiddenField", name, f, attribute...)
	f.desc.Visibility = Visibility{Creation: true, Update: true}
	return f
}

// URLField renders its value as a clickable link
type URLField struct {
	Schema[URLField]
}

// URL creates a URL field; input is trimmed on fill
func URL(name string, attribute ...string) *URLField {
	f := &URLField{}
	f.init("URLField", name, f, attribute...)
	f.desc.Meta["asLink"] = "href"
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		pathutil.Set(rec, attr, strings.TrimSpace(form.String(attr)))
		return nil
	}
	return f
}

// LabelUsing displays a fixed label instead of the raw URL
func (f *URLField) LabelUsing(label string) *URLField {
	f.desc.Meta["linkLabel"] = label
	return f
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// SlugField derives URL-safe identifiers from a source attribute
type SlugField struct {
	Schema[SlugField]

	from      string
	separator string
}

// Slug creates a slug field. When the submitted slug is empty and a
// source attribute is configured, the slug regenerates from the source.
func Slug(name string, attribute ...string) *SlugField {
	f := &SlugField{separator: "-"}
	f.init("SlugField", name, f, attribute...)
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) && f.from == "" {
			return nil
		}
		value := strings.TrimSpace(form.String(attr))
		if value == "" && f.from != "" {
			if form.Exists(f.from) {
				value = form.String(f.from)
			} else {
				value = request.Stringify(pathutil.GetDefault(rec, f.from, ""))
			}
		}
		pathutil.Set(rec, attr, Slugify(value, f.separator))
		return nil
	}
	return f
}

// From sets the attribute the slug regenerates from when left empty
func (f *SlugField) From(attribute string) *SlugField {
	f.from = attribute
	f.desc.Meta["from"] = attribute
	return f
}

// Separator sets the slug separator (default "-")
func (f *SlugField) Separator(sep string) *SlugField {
	f.separator = sep
	f.desc.Meta["separator"] = sep
	return f
}

// Slugify lowercases a value and collapses non-alphanumeric runs into
// the separator.
func Slugify(value, separator string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(value), separator)
	return strings.Trim(slug, separator)
}
