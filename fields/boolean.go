package fields

import (
	"encoding/json"

	"github.com/steward-admin/steward/internal/pathutil"
	"github.com/steward-admin/steward/request"
)

// BooleanField is a checkbox mapped to configurable stored values
type BooleanField struct {
	Schema[BooleanField]

	trueValue  any
	falseValue any
}

// Boolean creates a checkbox field. Stored values default to true/false
// and can be remapped for schemas using flags like 1/0 or "on"/"off".
func Boolean(name string, attribute ...string) *BooleanField {
	f := &BooleanField{trueValue: true, falseValue: false}
	f.init("BooleanField", name, f, attribute...)
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		if form.Boolean(attr) {
			pathutil.Set(rec, attr, f.trueValue)
		} else {
			pathutil.Set(rec, attr, f.falseValue)
		}
		return nil
	}
	f.desc.typeResolve = func(rec Record, attr string) any {
		value, ok := pathutil.Get(rec, attr)
		if !ok {
			return false
		}
		return value == f.trueValue || request.Truthy(value)
	}
	return f
}

// TrueValue sets the value stored for a checked box
func (f *BooleanField) TrueValue(value any) *BooleanField {
	f.trueValue = value
	return f
}

// FalseValue sets the value stored for an unchecked box
func (f *BooleanField) FalseValue(value any) *BooleanField {
	f.falseValue = value
	return f
}

// BooleanGroupField renders one checkbox per declared option
type BooleanGroupField struct {
	Schema[BooleanGroupField]

	options []Option
}

// BooleanGroup creates a grouped checkbox field. Resolution always
// represents every declared option, defaulting missing keys to false.
func BooleanGroup(name string, attribute ...string) *BooleanGroupField {
	f := &BooleanGroupField{}
	f.init("BooleanGroupField", name, f, attribute...)
	f.desc.Visibility.Index = false
	f.desc.typeResolve = func(rec Record, attr string) any {
		stored := booleanMap(pathutil.GetDefault(rec, attr, nil))
		value := make(map[string]bool, len(f.options))
		for _, opt := range f.options {
			value[opt.Value] = stored[opt.Value]
		}
		return value
	}
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		submitted := booleanMap(form.Input(attr))
		value := make(map[string]bool, len(f.options))
		for _, opt := range f.options {
			value[opt.Value] = submitted[opt.Value]
		}
		pathutil.Set(rec, attr, value)
		return nil
	}
	return f
}

// Options declares the group's checkboxes as value => label
func (f *BooleanGroupField) Options(options map[string]string) *BooleanGroupField {
	f.options = sortedOptions(options)
	f.desc.Meta["options"] = f.options
	return f
}

// HideFalseValues omits unchecked entries from index and detail display
func (f *BooleanGroupField) HideFalseValues() *BooleanGroupField {
	f.desc.Meta["hideFalseValues"] = true
	return f
}

// HideTrueValues omits checked entries from index and detail display
func (f *BooleanGroupField) HideTrueValues() *BooleanGroupField {
	f.desc.Meta["hideTrueValues"] = true
	return f
}

// booleanMap normalizes a stored or submitted group value into a
// value => bool map. JSON strings, bool maps, and any maps all work.
func booleanMap(value any) map[string]bool {
	out := make(map[string]bool)
	switch v := value.(type) {
	case map[string]bool:
		return v
	case map[string]any:
		for key, raw := range v {
			out[key] = request.Truthy(raw)
		}
	case []any:
		// A bare list marks the listed options as checked
		for _, key := range v {
			out[request.Stringify(key)] = true
		}
	case []string:
		for _, key := range v {
			out[key] = true
		}
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			for key, raw := range decoded {
				out[key] = request.Truthy(raw)
			}
		}
	}
	return out
}
