package planning

import (
	"context"
	"strings"

	"items-planning/core/apperr"
	"items-planning/core/utils"
)

// ConfiguredSites resolves the target site ids of a reconciliation run.
//
// The plugin configuration value SiteIDsSetting wins; Fallback (from the service
// configuration) is used when the setting is absent or blank.
type ConfiguredSites struct {
	store    Store
	fallback string
}

// NewConfiguredSites creates a site source.
func NewConfiguredSites(store Store, fallback string) *ConfiguredSites {
	return &ConfiguredSites{store: store, fallback: fallback}
}

// SiteIDs returns the deduplicated, ascending list of configured site ids.
func (c *ConfiguredSites) SiteIDs(ctx context.Context) ([]int, error) {
	raw := c.fallback
	if c.store != nil {
		value, ok, err := c.store.ConfigurationValue(ctx, SiteIDsSetting)
		if err != nil {
			return nil, err
		}
		if ok && strings.TrimSpace(value) != "" {
			raw = value
		}
	}

	ids, err := utils.ParseIDList(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid site id configuration", err).WithOp("planning.site_ids")
	}
	return ids, nil
}

// SetSiteIDs stores ids as the SiteIDsSetting value. The list is normalized the
// same way SiteIDs reads it back.
func (c *ConfiguredSites) SetSiteIDs(ctx context.Context, raw string) ([]int, error) {
	if c.store == nil {
		return nil, apperr.Internal("site ids cannot be stored without a database", nil).WithOp("planning.set_site_ids")
	}
	ids, err := utils.ParseIDList(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid site id list", err).WithOp("planning.set_site_ids")
	}
	if len(ids) == 0 {
		return nil, apperr.Validation("site id list is empty").WithOp("planning.set_site_ids")
	}
	if err := c.store.SetConfigurationValue(ctx, SiteIDsSetting, utils.JoinIDs(ids)); err != nil {
		return nil, err
	}
	return ids, nil
}
