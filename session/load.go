package session

import (
	"github.com/milk9111/kakip/catalog"
	"github.com/milk9111/kakip/config"
)

// Load reads the configuration at configPath and the catalog it names. An
// empty path selects the embedded defaults for both.
func Load(configPath string) (config.Config, *catalog.Catalog, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	cat, err := catalog.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, cat, nil
}
