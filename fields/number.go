package fields

import (
	"math"
	"strconv"
	"strings"

	"github.com/steward-admin/steward/internal/pathutil"
	"github.com/steward-admin/steward/request"
)

// NumberField is a numeric input
type NumberField struct {
	Schema[NumberField]
}

// Number creates a numeric field. Input parses to int64 when whole,
// float64 otherwise, and degrades to the raw string when unparseable.
func Number(name string, attribute ...string) *NumberField {
	f := &NumberField{}
	f.init("NumberField", name, f, attribute...)
	f.desc.Meta["step"] = "any"
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
		pathutil.Set(rec, attr, parseNumber(raw))
		return nil
	}
	return f
}

// Min sets the form input's minimum
func (f *NumberField) Min(min float64) *NumberField {
	f.desc.Meta["min"] = min
	return f
}

// Max sets the form input's maximum
func (f *NumberField) Max(max float64) *NumberField {
	f.desc.Meta["max"] = max
	return f
}

// Step sets the form input's step increment
func (f *NumberField) Step(step float64) *NumberField {
	f.desc.Meta["step"] = step
	return f
}

// parseNumber parses a numeric string, preferring int64 for whole values.
// Unparseable input is returned untouched.
func parseNumber(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}

// CurrencyField stores monetary amounts, optionally as integer minor units
type CurrencyField struct {
	Schema[CurrencyField]

	symbol     string
	minorUnits bool
}

// Currency creates a currency field. Fill strips symbols and grouping
// before parsing; unparseable input is stored raw for the validation
// pass to reject.
func Currency(name string, attribute ...string) *CurrencyField {
	f := &CurrencyField{symbol: defaultCurrencySymbol}
	f.init("CurrencyField", name, f, attribute...)
	f.desc.Meta["symbol"] = f.symbol
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

		amount, err := strconv.ParseFloat(stripCurrency(raw), 64)
		if err != nil {
			pathutil.Set(rec, attr, raw)
			return nil
		}
		if f.minorUnits {
			pathutil.Set(rec, attr, int64(math.Round(amount*100)))
		} else {
			pathutil.Set(rec, attr, amount)
		}
		return nil
	}
	f.desc.typeResolve = func(rec Record, attr string) any {
		value, ok := pathutil.Get(rec, attr)
		if !ok {
			return f.desc.DefaultValue
		}
		if f.minorUnits {
			return minorToMajor(value)
		}
		return value
	}
	return f
}

// Symbol sets the currency symbol stripped on fill and shown on display
func (f *CurrencyField) Symbol(symbol string) *CurrencyField {
	f.symbol = symbol
	f.desc.Meta["symbol"] = symbol
	return f
}

// AsMinorUnits stores amounts as integer minor units (cents) and
// displays them divided back into major units.
func (f *CurrencyField) AsMinorUnits(enabled bool) *CurrencyField {
	f.minorUnits = enabled
	f.desc.Meta["minorUnits"] = enabled
	return f
}

// stripCurrency removes symbols, grouping separators, and whitespace,
// keeping digits, sign, and the decimal point.
func stripCurrency(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// minorToMajor converts stored minor units back to a major-unit float
func minorToMajor(value any) any {
	switch v := value.(type) {
	case int64:
		return float64(v) / 100
	case int:
		return float64(v) / 100
	case float64:
		return v / 100
	default:
		// Raw stored fallback from a failed parse
		return value
	}
}
