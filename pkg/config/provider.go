// Package config loads suntilt configuration from YAML files or SQLite
// databases behind a common provider interface.
package config

import "fmt"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// LoadConfig loads the complete configuration
	LoadConfig() (*ConfigData, error)

	// IsReadOnly reports whether the backend can accept updates
	IsReadOnly() bool

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Sites      []SiteData     `json:"sites"`
	Simulation SimulationData `json:"simulation"`
	Storage    StorageData    `json:"storage,omitempty"`
	HTTP       *HTTPData      `json:"http,omitempty"`
	Log        LogData        `json:"log,omitempty"`
}

// SiteData identifies one geographic point to simulate
type SiteData struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude,omitempty"`
	Timezone  string  `json:"timezone"`
}

// SimulationData holds the shared simulation parameters
type SimulationData struct {
	Year          int      `json:"year"`
	EfficiencyPct float64  `json:"efficiency_pct"`
	CustomEWTilt  *float64 `json:"custom_ew_tilt,omitempty"`
	CustomNSTilt  *float64 `json:"custom_ns_tilt,omitempty"`
	CacheDir      string   `json:"cache_dir,omitempty"`
	OutputDir     string   `json:"output_dir,omitempty"`
}

// StorageData holds the configuration for result storage backends
type StorageData struct {
	SQLite   *SQLiteData   `json:"sqlite,omitempty"`
	Postgres *PostgresData `json:"postgres,omitempty"`
}

// SQLiteData configures the SQLite results store
type SQLiteData struct {
	Path string `json:"path"`
}

// PostgresData configures the Postgres/TimescaleDB results store
type PostgresData struct {
	ConnectionString string `json:"connection-string"`
}

// HTTPData configures the REST server controller
type HTTPData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port"`
}

// LogData configures the optional rotating log file sink
type LogData struct {
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// Validate applies the input checks that must pass before any
// computation starts: coordinate ranges, efficiency bounds, and custom
// tilt ranges. Site timezone resolution is left to the ephemeris layer.
func (c *ConfigData) Validate() error {
	if len(c.Sites) == 0 {
		return fmt.Errorf("no sites configured")
	}
	for _, s := range c.Sites {
		if s.Name == "" {
			return fmt.Errorf("site with empty name")
		}
		if s.Latitude < -90 || s.Latitude > 90 {
			return fmt.Errorf("site %q: latitude %.4f outside [-90, 90]", s.Name, s.Latitude)
		}
		if s.Longitude < -180 || s.Longitude > 180 {
			return fmt.Errorf("site %q: longitude %.4f outside [-180, 180]", s.Name, s.Longitude)
		}
		if s.Timezone == "" {
			return fmt.Errorf("site %q: timezone is empty", s.Name)
		}
	}
	if c.Simulation.EfficiencyPct <= 0 || c.Simulation.EfficiencyPct > 100 {
		return fmt.Errorf("panel efficiency %.2f%% outside (0, 100]", c.Simulation.EfficiencyPct)
	}
	if (c.Simulation.CustomEWTilt == nil) != (c.Simulation.CustomNSTilt == nil) {
		return fmt.Errorf("custom orientation requires both tilt angles")
	}
	if c.Simulation.CustomEWTilt != nil {
		if ew := *c.Simulation.CustomEWTilt; ew < -90 || ew > 90 {
			return fmt.Errorf("custom east-west tilt %.2f outside [-90, 90]", ew)
		}
		if ns := *c.Simulation.CustomNSTilt; ns < -90 || ns > 90 {
			return fmt.Errorf("custom north-south tilt %.2f outside [-90, 90]", ns)
		}
	}
	return nil
}
