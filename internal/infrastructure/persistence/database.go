package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/cenkalti/backoff/v5"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the closet's gorm handle.
type Database struct {
	DB *gorm.DB
}

// NewDatabase connects to Postgres with GORM's own logging silenced.
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithCustomLogger(cfg, nil)
}

// NewDatabaseWithCustomLogger connects to Postgres, sizes the pool from cfg
// and waits up to cfg.ConnectTimeout for the server to answer.
func NewDatabaseWithCustomLogger(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	gc := gormConfig(gormLogger)
	gc.PrepareStmt = true

	d, err := open(postgres.Open(cfg.DSN()), gc)
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := d.waitReady(context.Background(), cfg.ConnectTimeout); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database %s:%d not reachable: %w", cfg.Host, cfg.Port, err)
	}
	return d, nil
}

// NewDatabaseFromDialector opens any gorm dialector with the closet's
// settings. Tests use it with sqlite.
func NewDatabaseFromDialector(dialector gorm.Dialector, gormLogger logger.Interface) (*Database, error) {
	return open(dialector, gormConfig(gormLogger))
}

func open(dialector gorm.Dialector, gc *gorm.Config) (*Database, error) {
	db, err := gorm.Open(dialector, gc)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Database{DB: db}, nil
}

func gormConfig(gormLogger logger.Interface) *gorm.Config {
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}
	return &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		DisableAutomaticPing:   true, // waitReady pings with retries
	}
}

// waitReady pings with exponential backoff until the database answers or
// timeout elapses. A zero timeout means a single attempt.
func (d *Database) waitReady(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		return d.Ping(ctx)
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return struct{}{}, d.Ping(pingCtx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(timeout),
	)
	return err
}

// Ping reports whether the database answers. The health endpoint uses it.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
