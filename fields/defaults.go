package fields

import (
	"time"

	"github.com/steward-admin/steward/config"
)

// Cross-field defaults consumed by the constructors. UseDefaults
// replaces them with host configuration.
var (
	defaultDateFormat     = "2006-01-02"
	defaultDateTimeFormat = "2006-01-02 15:04:05"
	defaultLocation       = time.UTC
	defaultCurrencySymbol = "$"
)

// UseDefaults installs cross-field defaults from host configuration.
// An unknown timezone name keeps the current location.
func UseDefaults(cfg config.FieldConfig) {
	if cfg.DateFormat != "" {
		defaultDateFormat = cfg.DateFormat
	}
	if cfg.DateTimeFormat != "" {
		defaultDateTimeFormat = cfg.DateTimeFormat
	}
	if cfg.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
			defaultLocation = loc
		}
	}
	if cfg.CurrencySymbol != "" {
		defaultCurrencySymbol = cfg.CurrencySymbol
	}
}
