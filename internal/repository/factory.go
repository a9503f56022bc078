package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/clickhouse"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vgbench/runner/pkg/config"
)

// DBType represents the database dialect a run-history store connects to.
type DBType string

const (
	DBTypePostgres   DBType = "postgres"
	DBTypeMySQL      DBType = "mysql"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeClickHouse DBType = "clickhouse"
)

// NewGormDB opens a GORM connection for the configured dialect, applies
// connection pool settings, and verifies connectivity before returning.
func NewGormDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch DBType(cfg.Type) {
	case DBTypePostgres, DBType("postgresql"):
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database,
		)
		dialector = postgres.Open(dsn)
	case DBTypeMySQL:
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		)
		dialector = mysql.Open(dsn)
	case DBTypeSQLite, DBType(""):
		path := cfg.Database
		if path == "" {
			path = "vgbench-history.db"
		}
		dialector = sqlite.Open(path)
	case DBTypeClickHouse:
		dsn := fmt.Sprintf(
			"tcp://%s:%d?database=%s&username=%s&password=%s",
			cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password,
		)
		dialector = clickhouse.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&HistoryRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// Store bundles the run-history repository with the connection it owns,
// mirroring the teacher's Repositories wrapper.
type Store struct {
	History HistoryRepository
	gormDB  *gorm.DB
}

// NewStore builds a Store from an already-open GORM connection.
func NewStore(gormDB *gorm.DB) *Store {
	return &Store{History: NewGormHistoryRepository(gormDB), gormDB: gormDB}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.gormDB == nil {
		return nil
	}
	sqlDB, err := s.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is still alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB returns the underlying sql.DB connection.
func (s *Store) DB() *sql.DB {
	sqlDB, _ := s.gormDB.DB()
	return sqlDB
}

// GormDB returns the underlying GORM DB instance.
func (s *Store) GormDB() *gorm.DB {
	return s.gormDB
}
