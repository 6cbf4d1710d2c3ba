package occupancy

import "github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/config"

// ConfigFromSettings builds the service settings from the loaded configuration
func ConfigFromSettings(s config.OccupancyConfig) Config {
	return Config{CacheEnabled: s.CacheEnabled, CacheTTL: s.CacheTTL}
}
