// Package database is the persistence adapter: gorm over SQLite (single file),
// PostgreSQL (through the pgx pool) or MySQL, with one repository per aggregate
// and a transaction runner that binds them all to a single transaction.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/branchdesk/branchdesk-api/pkg/config"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// DB owns the gorm handle and whatever pool sits underneath it.
type DB struct {
	Gorm *gorm.DB
	pool *pgxpool.Pool
	sql  *sql.DB
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log, 500*time.Millisecond),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	var (
		gdb  *gorm.DB
		pool *pgxpool.Pool
		err  error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		gdb, err = gorm.Open(sqlite.Open(sqliteDSN(cfg.SQLitePath)), gcfg)
	case config.DriverPostgres:
		pool, err = NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		gdb, err = gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), gcfg)
	case config.DriverMySQL:
		gdb, err = gorm.Open(mysql.Open(mysqlDSN(cfg)), gcfg)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("database: open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("database: sql handle: %w", err)
	}
	switch cfg.Driver {
	case config.DriverSQLite:
		// One writer; also keeps a :memory: database alive across calls.
		sqlDB.SetMaxOpenConns(1)
	case config.DriverMySQL:
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return &DB{Gorm: gdb, pool: pool, sql: sqlDB}, nil
}

// Dialect is the gorm dialector name: sqlite, postgres or mysql.
func (d *DB) Dialect() string { return d.Gorm.Dialector.Name() }

// Ping checks the connection, used by the health endpoint.
func (d *DB) Ping(ctx context.Context) error { return d.sql.PingContext(ctx) }

// Close releases the connections.
func (d *DB) Close() error {
	err := d.sql.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

// mysqlDSN accepts both the go-sql-driver form and a mysql:// URL.
func mysqlDSN(cfg config.DBConfig) string {
	dsn := cfg.ConnectionString()
	if strings.HasPrefix(dsn, "mysql://") {
		dsn = mysqlURLToDSN(strings.TrimPrefix(dsn, "mysql://"))
	}
	if !strings.Contains(dsn, "parseTime=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "parseTime=True&loc=UTC"
	}
	return dsn
}

// mysqlURLToDSN turns user:pass@host:port/db?x=y into user:pass@tcp(host:port)/db?x=y.
func mysqlURLToDSN(rest string) string {
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return rest
	}
	creds, hostPart := rest[:at], rest[at+1:]
	slash := strings.Index(hostPart, "/")
	if slash < 0 {
		return creds + "@tcp(" + hostPart + ")/"
	}
	return creds + "@tcp(" + hostPart[:slash] + ")" + hostPart[slash:]
}
