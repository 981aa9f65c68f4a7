package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"citypulse/internal/config"
)

type DB struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

// Open connects to postgres and applies pool tuning and the session
// timezone from config.
func Open(cfg config.DBConfig) (*DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqldb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	conn := &DB{Gorm: gdb, SQL: sqldb}
	if cfg.Timezone != "" {
		// SET TIME ZONE takes no bind parameters, so the value is validated
		// before being spliced into the statement.
		if !validTimezone(cfg.Timezone) {
			return conn, fmt.Errorf("invalid timezone %q", cfg.Timezone)
		}
		if _, err := sqldb.Exec("SET TIME ZONE '" + cfg.Timezone + "'"); err != nil {
			return conn, fmt.Errorf("set timezone: %w", err)
		}
	}
	return conn, nil
}

// validTimezone accepts IANA zone names (Europe/Moscow, America/New_York,
// Etc/GMT-5) and fixed offsets (UTC, +03:00).
var timezonePattern = regexp.MustCompile(`^[A-Za-z0-9/_+:-]+$`)

func validTimezone(tz string) bool {
	return timezonePattern.MatchString(tz)
}

func Close(db *DB) error {
	if db == nil || db.SQL == nil {
		return nil
	}
	return db.SQL.Close()
}

// Ping backs the readiness probe.
func Ping(ctx context.Context, db *DB) error {
	if db == nil || db.SQL == nil {
		return sql.ErrConnDone
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.SQL.PingContext(ctx)
}
