package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// YAML-tagged mirror structs; converted to the internal format on load.
type configYAML struct {
	Sites      []siteYAML     `yaml:"sites"`
	Simulation simulationYAML `yaml:"simulation"`
	Storage    storageYAML    `yaml:"storage,omitempty"`
	HTTP       *httpYAML      `yaml:"http,omitempty"`
	Log        logYAML        `yaml:"log,omitempty"`
}

type siteYAML struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Altitude  float64 `yaml:"altitude,omitempty"`
	Timezone  string  `yaml:"timezone"`
}

type simulationYAML struct {
	Year          int      `yaml:"year"`
	EfficiencyPct float64  `yaml:"efficiency_pct"`
	CustomEWTilt  *float64 `yaml:"custom_ew_tilt,omitempty"`
	CustomNSTilt  *float64 `yaml:"custom_ns_tilt,omitempty"`
	CacheDir      string   `yaml:"cache_dir,omitempty"`
	OutputDir     string   `yaml:"output_dir,omitempty"`
}

type storageYAML struct {
	SQLite   *sqliteYAML   `yaml:"sqlite,omitempty"`
	Postgres *postgresYAML `yaml:"postgres,omitempty"`
}

type sqliteYAML struct {
	Path string `yaml:"path"`
}

type postgresYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type httpYAML struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
	Port       int    `yaml:"port"`
}

type logYAML struct {
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig configYAML
	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Sites: make([]SiteData, len(yamlConfig.Sites)),
		Simulation: SimulationData{
			Year:          yamlConfig.Simulation.Year,
			EfficiencyPct: yamlConfig.Simulation.EfficiencyPct,
			CustomEWTilt:  yamlConfig.Simulation.CustomEWTilt,
			CustomNSTilt:  yamlConfig.Simulation.CustomNSTilt,
			CacheDir:      yamlConfig.Simulation.CacheDir,
			OutputDir:     yamlConfig.Simulation.OutputDir,
		},
		Log: LogData{
			File:       yamlConfig.Log.File,
			MaxSizeMB:  yamlConfig.Log.MaxSizeMB,
			MaxBackups: yamlConfig.Log.MaxBackups,
			MaxAgeDays: yamlConfig.Log.MaxAgeDays,
		},
	}

	for i, site := range yamlConfig.Sites {
		config.Sites[i] = SiteData{
			Name:      site.Name,
			Latitude:  site.Latitude,
			Longitude: site.Longitude,
			Altitude:  site.Altitude,
			Timezone:  site.Timezone,
		}
	}

	if yamlConfig.Storage.SQLite != nil {
		config.Storage.SQLite = &SQLiteData{
			Path: yamlConfig.Storage.SQLite.Path,
		}
	}
	if yamlConfig.Storage.Postgres != nil {
		config.Storage.Postgres = &PostgresData{
			ConnectionString: yamlConfig.Storage.Postgres.ConnectionString,
		}
	}
	if yamlConfig.HTTP != nil {
		config.HTTP = &HTTPData{
			ListenAddr: yamlConfig.HTTP.ListenAddr,
			Port:       yamlConfig.HTTP.Port,
		}
	}

	return config, nil
}

// IsReadOnly returns true; YAML files are not updated in place
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
