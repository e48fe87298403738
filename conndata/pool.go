package conndata

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mardens-inc/dbcommon/httperr"
)

// PoolConfig tunes the MySQL connection pool. The zero value is not
// usable; start from DefaultPoolConfig.
type PoolConfig struct {
	// Database is the schema to connect to.
	Database string

	// InsecureTLS connects despite an untrusted server certificate
	// (the driver's skip-verify mode). Internal MySQL hosts run
	// self-signed certificates; callers opt in explicitly.
	InsecureTLS bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// ConnectTimeout bounds the dial and the validation ping.
	ConnectTimeout time.Duration
}

// DefaultPoolConfig returns conservative pool settings for the named
// database. An empty name resolves through DatabaseFromEnv().
func DefaultPoolConfig(database string) PoolConfig {
	if database == "" {
		database = DatabaseFromEnv()
	}
	return PoolConfig{
		Database:        database,
		MaxOpenConns:    20,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	}
}

// dsn builds the driver DSN from fetched credentials and pool config.
func dsn(data *DatabaseConnectionData, cfg PoolConfig) string {
	addr := data.Host
	if !strings.Contains(addr, ":") {
		addr += ":3306"
	}
	mc := mysql.NewConfig()
	mc.User = data.User
	mc.Passwd = data.Password
	mc.Net = "tcp"
	mc.Addr = addr
	mc.DBName = cfg.Database
	mc.Timeout = cfg.ConnectTimeout
	mc.ParseTime = true
	if cfg.InsecureTLS {
		mc.TLSConfig = "skip-verify"
	}
	return mc.FormatDSN()
}

// CreatePool opens a MySQL connection pool from fetched credentials
// and validates it with an immediate ping. On any failure the handle
// is closed and a pool-creation error is returned; no pool escapes
// half-built. The returned *sql.DB is safe for concurrent use across
// request handlers; checkout and return are owned by the driver.
func CreatePool(ctx context.Context, data *DatabaseConnectionData, cfg PoolConfig, logger *zap.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("creating MySQL connection pool",
		zap.String("host", data.Host),
		zap.String("database", cfg.Database),
	)

	db, err := sql.Open("mysql", dsn(data, cfg))
	if err != nil {
		return nil, httperr.Pool(err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, httperr.Pool(err)
	}

	logger.Info("MySQL connection pool ready", zap.String("database", cfg.Database))
	return db, nil
}
