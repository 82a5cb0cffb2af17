// Package postgres implements the RunStore interface against a
// Postgres or TimescaleDB database via gorm.
package postgres

import (
	"context"
	"time"

	"github.com/skysolve/suntilt/internal/log"
	"github.com/skysolve/suntilt/internal/storage"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// runRecord is the gorm model for one optimization run.
type runRecord struct {
	ID            string `gorm:"primaryKey"`
	Site          string
	Year          int
	EfficiencyPct float64
	BestEWTilt    int
	BestNSTilt    int
	TrackingWh    float64
	BestFixedWh   float64
	CustomEWTilt  *float64
	CustomNSTilt  *float64
	CustomWh      *float64
	BestYieldPct  *float64
	Degenerate    bool
	CreatedAt     time.Time
}

func (runRecord) TableName() string { return "suntilt_runs" }

// monthlyRecord is the gorm model for one month of a run.
type monthlyRecord struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	RunID       string `gorm:"index"`
	Month       string
	TrackingKWh float64
	BestKWh     float64
	CustomKWh   *float64
}

func (monthlyRecord) TableName() string { return "suntilt_run_monthly" }

// Store is a Postgres-backed RunStore.
type Store struct {
	db *gorm.DB
}

// New connects to Postgres and migrates the run tables.
func New(connectionString string) (*Store, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
		},
	)

	log.Info("connecting to Postgres results store...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&runRecord{}, &monthlyRecord{}); err != nil {
		return nil, err
	}
	log.Info("Postgres results store ready")

	return &Store{db: db}, nil
}

// SaveRun writes a run and its monthly rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *storage.Run) error {
	record := runRecord{
		ID:            run.ID,
		Site:          run.Site,
		Year:          run.Year,
		EfficiencyPct: run.EfficiencyPct,
		BestEWTilt:    run.BestEWTilt,
		BestNSTilt:    run.BestNSTilt,
		TrackingWh:    run.TrackingWh,
		BestFixedWh:   run.BestFixedWh,
		CustomEWTilt:  run.CustomEWTilt,
		CustomNSTilt:  run.CustomNSTilt,
		CustomWh:      run.CustomWh,
		BestYieldPct:  run.BestYieldPct,
		Degenerate:    run.Degenerate,
		CreatedAt:     run.CreatedAt,
	}

	monthly := make([]monthlyRecord, len(run.Monthly))
	for i, m := range run.Monthly {
		monthly[i] = monthlyRecord{
			RunID:       run.ID,
			Month:       m.Month,
			TrackingKWh: m.TrackingKWh,
			BestKWh:     m.BestKWh,
			CustomKWh:   m.CustomKWh,
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if len(monthly) == 0 {
			return nil
		}
		return tx.Create(&monthly).Error
	})
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
