package fields

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/steward-admin/steward/internal/pathutil"
	"github.com/steward-admin/steward/request"
)

// BadgeField displays a value as a colored badge, never editable
type BadgeField struct {
	Schema[BadgeField]

	types map[string]string
}

// Badge creates a badge field. The default mapping covers the common
// lifecycle states; Map and Types adjust it.
func Badge(name string, attribute ...string) *BadgeField {
	f := &BadgeField{
		types: map[string]string{
			"success": "success",
			"danger":  "danger",
			"warning": "warning",
			"info":    "info",
		},
	}
	f.init("BadgeField", name, f, attribute...)
	f.desc.Readonly = true
	f.desc.Visibility = Visibility{Index: true, Detail: true}
	f.desc.typeResolve = func(rec Record, attr string) any {
		value := pathutil.GetDefault(rec, attr, f.desc.DefaultValue)
		f.desc.Meta["badgeType"] = f.types[request.Stringify(value)]
		return value
	}
	return f
}

// Map sets the stored value => badge type mapping
func (f *BadgeField) Map(types map[string]string) *BadgeField {
	f.types = types
	f.desc.Meta["types"] = types
	return f
}

// AddTypes merges extra value => badge type entries
func (f *BadgeField) AddTypes(types map[string]string) *BadgeField {
	for value, badge := range types {
		f.types[value] = badge
	}
	f.desc.Meta["types"] = f.types
	return f
}

// StatusField displays a value as a loading/failed/finished indicator
type StatusField struct {
	Schema[StatusField]

	loading []string
	failed  []string
}

// Status creates a status field, shown outside forms only
func Status(name string, attribute ...string) *StatusField {
	f := &StatusField{}
	f.init("StatusField", name, f, attribute...)
	f.desc.Readonly = true
	f.desc.Visibility = Visibility{Index: true, Detail: true}
	f.desc.typeResolve = func(rec Record, attr string) any {
		value := request.Stringify(pathutil.GetDefault(rec, attr, f.desc.DefaultValue))
		state := "finished"
		switch {
		case containsRule(f.loading, value):
			state = "loading"
		case containsRule(f.failed, value):
			state = "failed"
		}
		f.desc.Meta["state"] = state
		return value
	}
	return f
}

// LoadingWhen marks the values rendered with a spinner
func (f *StatusField) LoadingWhen(values ...string) *StatusField {
	f.loading = values
	return f
}

// FailedWhen marks the values rendered as failures
func (f *StatusField) FailedWhen(values ...string) *StatusField {
	f.failed = values
	return f
}

// ColorField is a color picker storing lowercase hex values
type ColorField struct {
	Schema[ColorField]
}

// Color creates a color field. Hex input is normalized to a lowercase
// #-prefixed form; anything else is stored raw.
func Color(name string, attribute ...string) *ColorField {
	f := &ColorField{}
	f.init("ColorField", name, f, attribute...)
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		raw := strings.TrimSpace(form.String(attr))
		pathutil.Set(rec, attr, normalizeHex(raw))
		return nil
	}
	return f
}

func normalizeHex(raw string) string {
	candidate := strings.ToLower(strings.TrimPrefix(raw, "#"))
	if len(candidate) != 3 && len(candidate) != 6 && len(candidate) != 8 {
		return raw
	}
	for _, r := range candidate {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return raw
		}
	}
	return "#" + candidate
}

// CodeField is a code editor, hidden from index by default
type CodeField struct {
	Schema[CodeField]

	asJSON bool
}

// Code creates a code editor field
func Code(name string, attribute ...string) *CodeField {
	f := &CodeField{}
	f.init("CodeField", name, f, attribute...)
	f.desc.Visibility.Index = false
	f.desc.Meta["language"] = "text"
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		raw := form.String(attr)
		if f.asJSON {
			var decoded any
			if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
				pathutil.Set(rec, attr, decoded)
				return nil
			}
		}
		pathutil.Set(rec, attr, raw)
		return nil
	}
	return f
}

// Language sets the editor's syntax highlighting language
func (f *CodeField) Language(language string) *CodeField {
	f.desc.Meta["language"] = language
	return f
}

// JSON treats the content as JSON, decoding valid input into structured
// storage.
func (f *CodeField) JSON() *CodeField {
	f.asJSON = true
	f.desc.Meta["language"] = "json"
	return f
}

// KeyValueField edits a flat string-keyed map
type KeyValueField struct {
	Schema[KeyValueField]
}

// KeyValue creates a key/value editor, hidden from index by default
func KeyValue(name string, attribute ...string) *KeyValueField {
	f := &KeyValueField{}
	f.init("KeyValueField", name, f, attribute...)
	f.desc.Visibility.Index = false
	f.desc.Meta["keyLabel"] = "Key"
	f.desc.Meta["valueLabel"] = "Value"
	f.desc.Meta["actionText"] = "Add row"
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		switch input := form.Input(attr).(type) {
		case map[string]any:
			pathutil.Set(rec, attr, input)
		case string:
			var decoded map[string]any
			if err := json.Unmarshal([]byte(input), &decoded); err == nil {
				pathutil.Set(rec, attr, decoded)
			} else {
				pathutil.Set(rec, attr, input)
			}
		default:
			pathutil.Set(rec, attr, input)
		}
		return nil
	}
	return f
}

// KeyLabel sets the heading over the key column
func (f *KeyValueField) KeyLabel(label string) *KeyValueField {
	f.desc.Meta["keyLabel"] = label
	return f
}

// ValueLabel sets the heading over the value column
func (f *KeyValueField) ValueLabel(label string) *KeyValueField {
	f.desc.Meta["valueLabel"] = label
	return f
}

// ActionText sets the add-row button label
func (f *KeyValueField) ActionText(text string) *KeyValueField {
	f.desc.Meta["actionText"] = text
	return f
}

// MarkdownField is a markdown editor, hidden from index by default
type MarkdownField struct {
	Schema[MarkdownField]
}

// Markdown creates a markdown editor field
func Markdown(name string, attribute ...string) *MarkdownField {
	f := &MarkdownField{}
	f.init("MarkdownField", name, f, attribute...)
	f.desc.Visibility.Index = false
	return f
}

// AlwaysShow expands the rendered content instead of collapsing it
func (f *MarkdownField) AlwaysShow() *MarkdownField {
	f.desc.Meta["alwaysShow"] = true
	return f
}

// GravatarField displays the Gravatar for an email attribute
type GravatarField struct {
	Schema[GravatarField]
}

// Gravatar creates a gravatar field computed from the email attribute
// (default "email"). It is display-only and fills nothing.
func Gravatar(name string, attribute ...string) *GravatarField {
	attr := "email"
	if len(attribute) > 0 {
		attr = attribute[0]
	}
	f := &GravatarField{}
	f.init("GravatarField", name, f, attr)
	f.desc.Readonly = true
	f.desc.Visibility = Visibility{Index: true, Detail: true}
	f.desc.Meta["rounded"] = true
	f.desc.typeResolve = func(rec Record, a string) any {
		email := request.Stringify(pathutil.GetDefault(rec, a, ""))
		return GravatarURL(email)
	}
	f.desc.typeFill = func(request.Form, Record, string) error { return nil }
	return f
}

// Squared displays the avatar with square edges
func (f *GravatarField) Squared() *GravatarField {
	f.desc.Meta["rounded"] = false
	return f
}

// GravatarURL returns the Gravatar URL for an email address
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=mp", hex.EncodeToString(hash[:]))
}
