package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
)

// ConnectDB opens the configured store and tunes its pool.
func ConnectDB(cfg *configs.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         configs.NewGormLogger(cfg.IsProduction()),
		TranslateError: true,
	}

	switch cfg.DB.Driver {
	case "sqlite":
		log.Printf("[INFO] connecting to SQLite (%s)...", cfg.DB.SQLitePath)
		db, err := OpenSQLite(cfg.DB.SQLitePath, gcfg)
		if err != nil {
			return nil, err
		}
		log.Println("[INFO] DB connected.")
		return db, nil

	default:
		log.Println("[INFO] connecting to PostgreSQL...")
		db, err := gorm.Open(postgres.New(postgres.Config{
			DSN: cfg.DB.DSN(),
			// PgBouncer transaction pooling
			PreferSimpleProtocol: true,
		}), gcfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := TunePool(db, cfg.DB); err != nil {
			log.Printf("[WARN] pool tune: %v", err)
		}
		log.Println("[INFO] DB connected.")
		return db, nil
	}
}

// OpenSQLite opens a pure-Go SQLite store. One connection serialises writers,
// which is what SQLite does anyway.
func OpenSQLite(dsn string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{TranslateError: true}
	}
	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	return db, nil
}

func TunePool(db *gorm.DB, cfg configs.DBConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return nil
}

// WarmUpQueries fills the pool in the background once the server is up.
func WarmUpQueries(db *gorm.DB) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := Ping(ctx, db); err != nil {
			log.Printf("[WARN] warm-up ping: %v", err)
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
