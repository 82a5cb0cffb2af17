package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database
// configuration sources.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	sites, err := s.loadSites()
	if err != nil {
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}
	config.Sites = sites

	simulation, err := s.loadSimulation()
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation parameters: %w", err)
	}
	config.Simulation = *simulation

	storage, err := s.loadStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	httpData, err := s.loadHTTP()
	if err != nil {
		return nil, fmt.Errorf("failed to load http config: %w", err)
	}
	config.HTTP = httpData

	logData, err := s.loadLog()
	if err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}
	config.Log = *logData

	return config, nil
}

func (s *SQLiteProvider) loadSites() ([]SiteData, error) {
	rows, err := s.db.Query(`
		SELECT name, latitude, longitude, altitude, timezone
		FROM sites ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []SiteData
	for rows.Next() {
		var site SiteData
		if err := rows.Scan(&site.Name, &site.Latitude, &site.Longitude, &site.Altitude, &site.Timezone); err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (s *SQLiteProvider) loadSimulation() (*SimulationData, error) {
	sim := &SimulationData{}
	var customEW, customNS sql.NullFloat64
	var cacheDir, outputDir sql.NullString

	err := s.db.QueryRow(`
		SELECT year, efficiency_pct, custom_ew_tilt, custom_ns_tilt, cache_dir, output_dir
		FROM simulation LIMIT 1`).
		Scan(&sim.Year, &sim.EfficiencyPct, &customEW, &customNS, &cacheDir, &outputDir)
	if err != nil {
		return nil, err
	}

	if customEW.Valid {
		sim.CustomEWTilt = &customEW.Float64
	}
	if customNS.Valid {
		sim.CustomNSTilt = &customNS.Float64
	}
	sim.CacheDir = cacheDir.String
	sim.OutputDir = outputDir.String
	return sim, nil
}

func (s *SQLiteProvider) loadStorage() (*StorageData, error) {
	storage := &StorageData{}

	var sqlitePath, postgresConn sql.NullString
	err := s.db.QueryRow(`
		SELECT sqlite_path, postgres_connection_string
		FROM storage LIMIT 1`).
		Scan(&sqlitePath, &postgresConn)
	if err == sql.ErrNoRows {
		return storage, nil
	}
	if err != nil {
		return nil, err
	}

	if sqlitePath.Valid && sqlitePath.String != "" {
		storage.SQLite = &SQLiteData{Path: sqlitePath.String}
	}
	if postgresConn.Valid && postgresConn.String != "" {
		storage.Postgres = &PostgresData{ConnectionString: postgresConn.String}
	}
	return storage, nil
}

func (s *SQLiteProvider) loadHTTP() (*HTTPData, error) {
	httpData := &HTTPData{}

	var listenAddr sql.NullString
	err := s.db.QueryRow(`
		SELECT listen_addr, port
		FROM http_server LIMIT 1`).
		Scan(&listenAddr, &httpData.Port)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	httpData.ListenAddr = listenAddr.String
	return httpData, nil
}

func (s *SQLiteProvider) loadLog() (*LogData, error) {
	logData := &LogData{}

	var file sql.NullString
	err := s.db.QueryRow(`
		SELECT file, max_size_mb, max_backups, max_age_days
		FROM logging LIMIT 1`).
		Scan(&file, &logData.MaxSizeMB, &logData.MaxBackups, &logData.MaxAgeDays)
	if err == sql.ErrNoRows {
		return logData, nil
	}
	if err != nil {
		return nil, err
	}

	logData.File = file.String
	return logData, nil
}

// IsReadOnly returns false; SQLite configuration can be updated in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the underlying database handle
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
