package config

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

const testYAML = `
sites:
  - name: Ankara
    latitude: 39.93
    longitude: 32.86
    altitude: 938
    timezone: Etc/GMT-3
  - name: Reykjavik
    latitude: 64.15
    longitude: -21.94
    timezone: Atlantic/Reykjavik
simulation:
  year: 2024
  efficiency_pct: 20
  custom_ew_tilt: -10
  custom_ns_tilt: 35
  output_dir: /tmp/suntilt
storage:
  sqlite:
    path: /var/lib/suntilt/results.db
http:
  listen_addr: 127.0.0.1
  port: 8090
log:
  file: /var/log/suntilt.log
  max_size_mb: 50
`

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	provider := NewYAMLProvider(writeTempYAML(t, testYAML))
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if len(cfg.Sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(cfg.Sites))
	}
	if cfg.Sites[0].Name != "Ankara" || cfg.Sites[0].Latitude != 39.93 || cfg.Sites[0].Timezone != "Etc/GMT-3" {
		t.Errorf("first site loaded incorrectly: %+v", cfg.Sites[0])
	}
	if cfg.Sites[1].Altitude != 0 {
		t.Errorf("missing altitude should default to 0, got %v", cfg.Sites[1].Altitude)
	}
	if cfg.Simulation.Year != 2024 || cfg.Simulation.EfficiencyPct != 20 {
		t.Errorf("simulation loaded incorrectly: %+v", cfg.Simulation)
	}
	if cfg.Simulation.CustomEWTilt == nil || *cfg.Simulation.CustomEWTilt != -10 {
		t.Error("custom east-west tilt not loaded")
	}
	if cfg.Storage.SQLite == nil || cfg.Storage.SQLite.Path != "/var/lib/suntilt/results.db" {
		t.Error("sqlite storage not loaded")
	}
	if cfg.Storage.Postgres != nil {
		t.Error("postgres storage should be absent")
	}
	if cfg.HTTP == nil || cfg.HTTP.Port != 8090 {
		t.Error("http config not loaded")
	}
	if cfg.Log.File != "/var/log/suntilt.log" || cfg.Log.MaxSizeMB != 50 {
		t.Errorf("log config loaded incorrectly: %+v", cfg.Log)
	}
	if !provider.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}

func TestConfigDataValidate(t *testing.T) {
	tilt := func(v float64) *float64 { return &v }

	valid := func() *ConfigData {
		return &ConfigData{
			Sites: []SiteData{
				{Name: "Ankara", Latitude: 39.93, Longitude: 32.86, Timezone: "Etc/GMT-3"},
			},
			Simulation: SimulationData{Year: 2024, EfficiencyPct: 20},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ConfigData)
		wantErr string
	}{
		{name: "valid", mutate: func(c *ConfigData) {}, wantErr: ""},
		{
			name:    "no sites",
			mutate:  func(c *ConfigData) { c.Sites = nil },
			wantErr: "no sites",
		},
		{
			name:    "latitude out of range",
			mutate:  func(c *ConfigData) { c.Sites[0].Latitude = -90.01 },
			wantErr: "latitude",
		},
		{
			name:    "longitude out of range",
			mutate:  func(c *ConfigData) { c.Sites[0].Longitude = 200 },
			wantErr: "longitude",
		},
		{
			name:    "zero efficiency",
			mutate:  func(c *ConfigData) { c.Simulation.EfficiencyPct = 0 },
			wantErr: "efficiency",
		},
		{
			name:    "efficiency above 100",
			mutate:  func(c *ConfigData) { c.Simulation.EfficiencyPct = 101 },
			wantErr: "efficiency",
		},
		{
			name:    "half custom orientation",
			mutate:  func(c *ConfigData) { c.Simulation.CustomEWTilt = tilt(10) },
			wantErr: "both tilt angles",
		},
		{
			name: "custom tilt out of range",
			mutate: func(c *ConfigData) {
				c.Simulation.CustomEWTilt = tilt(95)
				c.Simulation.CustomNSTilt = tilt(0)
			},
			wantErr: "east-west tilt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSQLiteProviderLoadConfig(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "config.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	schema := `
		CREATE TABLE sites (name TEXT, latitude REAL, longitude REAL, altitude REAL, timezone TEXT);
		CREATE TABLE simulation (year INTEGER, efficiency_pct REAL, custom_ew_tilt REAL, custom_ns_tilt REAL, cache_dir TEXT, output_dir TEXT);
		CREATE TABLE storage (sqlite_path TEXT, postgres_connection_string TEXT);
		CREATE TABLE http_server (listen_addr TEXT, port INTEGER);
		CREATE TABLE logging (file TEXT, max_size_mb INTEGER, max_backups INTEGER, max_age_days INTEGER);
		INSERT INTO sites VALUES ('Izmir', 38.42, 27.14, 25, 'Etc/GMT-3');
		INSERT INTO simulation VALUES (2025, 21.5, NULL, NULL, '', '/tmp/out');
		INSERT INTO storage VALUES ('results.db', '');
		INSERT INTO http_server VALUES ('0.0.0.0', 8090);
		INSERT INTO logging VALUES (NULL, 0, 0, 0);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	db.Close()

	provider, err := NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteProvider returned error: %v", err)
	}
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if len(cfg.Sites) != 1 || cfg.Sites[0].Name != "Izmir" {
		t.Fatalf("sites loaded incorrectly: %+v", cfg.Sites)
	}
	if cfg.Simulation.Year != 2025 || cfg.Simulation.EfficiencyPct != 21.5 {
		t.Errorf("simulation loaded incorrectly: %+v", cfg.Simulation)
	}
	if cfg.Simulation.CustomEWTilt != nil {
		t.Error("NULL custom tilt should stay nil")
	}
	if cfg.Storage.SQLite == nil || cfg.Storage.SQLite.Path != "results.db" {
		t.Error("sqlite storage not loaded")
	}
	if cfg.Storage.Postgres != nil {
		t.Error("empty postgres connection string should stay nil")
	}
	if cfg.HTTP == nil || cfg.HTTP.Port != 8090 || cfg.HTTP.ListenAddr != "0.0.0.0" {
		t.Errorf("http config loaded incorrectly: %+v", cfg.HTTP)
	}
	if provider.IsReadOnly() {
		t.Error("SQLite provider should not be read-only")
	}
}
