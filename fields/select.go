package fields

import (
	"sort"

	"github.com/steward-admin/steward/internal/pathutil"
	"github.com/steward-admin/steward/request"
)

// Option is one selectable choice, serialized as {label, value}
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// sortedOptions converts a value => label map into deterministic,
// value-ordered options.
func sortedOptions(options map[string]string) []Option {
	out := make([]Option, 0, len(options))
	for value, label := range options {
		out = append(out, Option{Label: label, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// SelectField is a single-choice dropdown
type SelectField struct {
	Schema[SelectField]

	options  []Option
	taggable bool
}

// Select creates a dropdown field. Submitted values outside the declared
// options are dropped to nil unless the field is taggable.
func Select(name string, attribute ...string) *SelectField {
	f := &SelectField{}
	f.init("SelectField", name, f, attribute...)
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		value := form.String(attr)
		if f.taggable || f.hasOption(value) {
			pathutil.Set(rec, attr, value)
		} else {
			pathutil.Set(rec, attr, nil)
		}
		return nil
	}
	return f
}

// Options declares the choices as value => label
func (f *SelectField) Options(options map[string]string) *SelectField {
	return f.OptionsOrdered(sortedOptions(options))
}

// OptionsOrdered declares the choices in explicit display order
func (f *SelectField) OptionsOrdered(options []Option) *SelectField {
	f.options = options
	f.desc.Meta["options"] = options
	return f
}

// OptionsFunc declares the choices lazily, evaluated at construction
func (f *SelectField) OptionsFunc(fn func() map[string]string) *SelectField {
	return f.Options(fn())
}

// Taggable accepts submitted values outside the declared options
func (f *SelectField) Taggable() *SelectField {
	f.taggable = true
	f.desc.Meta["taggable"] = true
	return f
}

// DisplayUsingLabels shows the option label instead of the stored value
func (f *SelectField) DisplayUsingLabels() *SelectField {
	f.desc.displayFn = func(value any) any {
		stored := request.Stringify(value)
		for _, opt := range f.options {
			if opt.Value == stored {
				return opt.Label
			}
		}
		return value
	}
	return f
}

func (f *SelectField) hasOption(value string) bool {
	for _, opt := range f.options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// MultiSelectField is a multiple-choice dropdown storing a string slice
type MultiSelectField struct {
	Schema[MultiSelectField]

	options  []Option
	taggable bool
}

// MultiSelect creates a multiple-choice field. Submitted values outside
// the declared options are filtered out unless the field is taggable.
func MultiSelect(name string, attribute ...string) *MultiSelectField {
	f := &MultiSelectField{}
	f.init("MultiSelectField", name, f, attribute...)
	f.desc.Visibility.Index = false
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		submitted := stringSlice(form.Input(attr))
		if f.taggable {
			pathutil.Set(rec, attr, submitted)
			return nil
		}
		kept := make([]string, 0, len(submitted))
		for _, value := range submitted {
			if f.hasOption(value) {
				kept = append(kept, value)
			}
		}
		pathutil.Set(rec, attr, kept)
		return nil
	}
	return f
}

// Options declares the choices as value => label
func (f *MultiSelectField) Options(options map[string]string) *MultiSelectField {
	f.options = sortedOptions(options)
	f.desc.Meta["options"] = f.options
	return f
}

// Taggable accepts submitted values outside the declared options
func (f *MultiSelectField) Taggable() *MultiSelectField {
	f.taggable = true
	f.desc.Meta["taggable"] = true
	return f
}

func (f *MultiSelectField) hasOption(value string) bool {
	for _, opt := range f.options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// stringSlice normalizes submitted multi-select input
func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, request.Stringify(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case nil:
		return nil
	default:
		return []string{request.Stringify(v)}
	}
}

// TimezoneField selects from the common IANA timezone names
type TimezoneField struct {
	Schema[TimezoneField]
}

// Timezones lists the zone names offered by the timezone field
var Timezones = []string{
	"UTC",
	"Africa/Cairo", "Africa/Johannesburg", "Africa/Lagos", "Africa/Nairobi",
	"America/Anchorage", "America/Bogota", "America/Chicago", "America/Denver",
	"America/Lima", "America/Los_Angeles", "America/Mexico_City",
	"America/New_York", "America/Phoenix", "America/Santiago",
	"America/Sao_Paulo", "America/Toronto", "America/Vancouver",
	"Asia/Bangkok", "Asia/Dubai", "Asia/Hong_Kong", "Asia/Jakarta",
	"Asia/Kolkata", "Asia/Manila", "Asia/Seoul", "Asia/Shanghai",
	"Asia/Singapore", "Asia/Taipei", "Asia/Tokyo",
	"Australia/Melbourne", "Australia/Perth", "Australia/Sydney",
	"Europe/Amsterdam", "Europe/Berlin", "Europe/Dublin", "Europe/Istanbul",
	"Europe/London", "Europe/Madrid", "Europe/Moscow", "Europe/Oslo",
	"Europe/Paris", "Europe/Rome", "Europe/Stockholm", "Europe/Warsaw",
	"Pacific/Auckland", "Pacific/Honolulu",
}

// Timezone creates a dropdown over the common timezone names
func Timezone(name string, attribute ...string) *TimezoneField {
	f := &TimezoneField{}
	f.init("TimezoneField", name, f, attribute...)
	options := make([]Option, len(Timezones))
	for i, zone := range Timezones {
		options[i] = Option{Label: zone, Value: zone}
	}
	f.desc.Meta["options"] = options
	return f
}
