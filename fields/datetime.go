package fields

import (
	"strings"
	"time"

	"github.com/steward-admin/steward/internal/pathutil"
	"github.com/steward-admin/steward/request"
)

// lenientLayouts are tried in order after the configured format fails
var lenientLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
}

// DateField stores calendar dates as formatted strings
type DateField struct {
	Schema[DateField]

	format string
}

// Date creates a date field using the configured default format,
// 2006-01-02 unless overridden. Unparseable input is stored raw; the
// rules pass rejects it.
func Date(name string, attribute ...string) *DateField {
	f := &DateField{format: defaultDateFormat}
	f.init("DateField", name, f, attribute...)
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		raw := strings.TrimSpace(form.String(attr))
		if raw == "" {
			if f.desc.Nullable {
				pathutil.Set(rec, attr, nil)
			}
			return nil
		}
		if parsed, ok := parseLenient(raw, f.format, nil); ok {
			pathutil.Set(rec, attr, parsed.Format(f.format))
		} else {
			pathutil.Set(rec, attr, raw)
		}
		return nil
	}
	return f
}

// Format sets the storage and display layout (Go reference time layout)
func (f *DateField) Format(layout string) *DateField {
	f.format = layout
	f.desc.Meta["format"] = layout
	return f
}

// DateTimeField stores timestamps as formatted strings in a target zone
type DateTimeField struct {
	Schema[DateTimeField]

	format   string
	location *time.Location
}

// DateTime creates a timestamp field using the configured default
// format and timezone, 2006-01-02 15:04:05 in UTC unless overridden.
// Parsing tries the field's format, then a lenient layout set, and
// finally stores the raw string.
func DateTime(name string, attribute ...string) *DateTimeField {
	f := &DateTimeField{
		format:   defaultDateTimeFormat,
		location: defaultLocation,
	}
	f.init("DateTimeField", name, f, attribute...)
	f.desc.typeFill = func(form request.Form, rec Record, attr string) error {
		if !form.Exists(attr) {
			return nil
		}
		raw := strings.TrimSpace(form.String(attr))
		if raw == "" {
			if f.desc.Nullable {
				pathutil.Set(rec, attr, nil)
			}
			return nil
		}
		if parsed, ok := parseLenient(raw, f.format, f.location); ok {
			pathutil.Set(rec, attr, parsed.In(f.location).Format(f.format))
		} else {
			pathutil.Set(rec, attr, raw)
		}
		return nil
	}
	return f
}

// Format sets the storage and display layout (Go reference time layout)
func (f *DateTimeField) Format(layout string) *DateTimeField {
	f.format = layout
	f.desc.Meta["format"] = layout
	return f
}

// Timezone sets the zone values are converted into before storage.
// Unknown zone names keep the current zone.
func (f *DateTimeField) Timezone(zone string) *DateTimeField {
	if loc, err := time.LoadLocation(zone); err == nil {
		f.location = loc
		f.desc.Meta["timezone"] = zone
	}
	return f
}

// parseLenient parses with the preferred layout first, then the lenient
// layout set.
func parseLenient(raw, preferred string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	if parsed, err := time.ParseInLocation(preferred, raw, loc); err == nil {
		return parsed, true
	}
	for _, layout := range lenientLayouts {
		if layout == preferred {
			continue
		}
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
