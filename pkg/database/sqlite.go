package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/dinu-sreekumar/studentms/pkg/config"
)

func init() {
	// modernc registers as "sqlite"; sqlx only knows the mattn driver name.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewSQLite returns a long-lived pooled handle to the roster database. The
// single shared handle replaces the open-connection-per-call pattern of the
// legacy dashboard.
func NewSQLite(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	busyMillis := cfg.BusyTimeout.Milliseconds()
	if busyMillis <= 0 {
		busyMillis = 5000
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		cfg.Path, busyMillis)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
