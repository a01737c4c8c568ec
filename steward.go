// Package steward assembles the admin panel building blocks: declarative
// fields, relationship and media fields, resources, menus, and dashboard
// metrics. Configure pushes one loaded configuration into every layer
// that carries tunable defaults.
package steward

import (
	"github.com/steward-admin/steward/config"
	"github.com/steward-admin/steward/fields"
	"github.com/steward-admin/steward/relations"
)

// Configure installs the host configuration across the field and
// relation layers. Media limits and cache backends take their piece of
// the configuration at construction time, through
// request.UploadOptionsFrom and cache.ConfigFrom.
func Configure(cfg *config.Config) {
	fields.UseDefaults(cfg.Fields)
	relations.UsePagination(cfg.Pagination)
}

// Setup loads steward.yml, applies it, and returns it so hosts can hand
// the media and cache sections to their constructors.
func Setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	Configure(cfg)
	return cfg, nil
}
