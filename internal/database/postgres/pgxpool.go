// Package postgres adapts a pgx connection pool to database.DB. The same pool
// also backs a database/sql handle for the migration runner.
package postgres

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strings"
	"time"

	"skillgap/internal/config"
	"skillgap/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	applicationName = "skillgap"
	pingTimeout     = 5 * time.Second
)

type Pool struct {
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// Connect opens the pool and pings it once. When logger is non-nil every
// statement is traced to it at debug level and failed statements at error.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger logrus.FieldLogger) (database.DB, error) {
	pcfg, err := poolConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "ping %s", pcfg.ConnConfig.Host)
	}

	return &Pool{pool: p, sqlDB: stdlib.OpenDBFromPool(p)}, nil
}

// connString renders cfg as a postgres:// URL so credentials with spaces or
// reserved characters survive parsing.
func connString(cfg config.DatabaseConfig) string {
	host := strings.TrimSpace(cfg.DBHost)
	if port := strings.TrimSpace(cfg.DBPort); port != "" {
		host = net.JoinHostPort(host, port)
	}

	q := url.Values{}
	q.Set("application_name", applicationName)
	if mode := strings.TrimSpace(cfg.DBSSLMode); mode != "" {
		q.Set("sslmode", mode)
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     host,
		Path:     "/" + strings.TrimSpace(cfg.DBName),
		RawQuery: q.Encode(),
	}
	if user := strings.TrimSpace(cfg.DBUser); user != "" {
		u.User = url.UserPassword(user, cfg.DBPassword)
	}
	return u.String()
}

func poolConfig(cfg config.DatabaseConfig, logger logrus.FieldLogger) (*pgxpool.Config, error) {
	pcfg, err := pgxpool.ParseConfig(connString(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "parse pool config")
	}

	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	if cfg.PoolMaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.PoolMaxConnLifetime
	}
	if cfg.PoolMaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	}
	if cfg.PoolHealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.PoolHealthCheckPeriod
	}

	if logger != nil {
		pcfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   queryLogger(logger.WithField("component", "postgres")),
			LogLevel: tracelog.LogLevelInfo,
		}
	}
	return pcfg, nil
}

// queryLogger forwards pgx trace events to logrus. Per-statement events arrive
// at info and are demoted to debug.
func queryLogger(logger logrus.FieldLogger) tracelog.Logger {
	return tracelog.LoggerFunc(func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		entry := logger.WithFields(logrus.Fields(data))
		switch level {
		case tracelog.LogLevelError:
			entry.Error(msg)
		case tracelog.LogLevelWarn:
			entry.Warn(msg)
		case tracelog.LogLevelTrace:
			entry.Trace(msg)
		default:
			entry.Debug(msg)
		}
	})
}

func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Pool) Close() error {
	err := p.sqlDB.Close()
	p.pool.Close()
	return err
}

func (p *Pool) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	return tag.RowsAffected(), err
}

// pgx.Rows and pgx.Row already satisfy database.Rows and database.Row.
func (p *Pool) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return p.pool.Query(ctx, query, args...)
}

func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return p.pool.QueryRow(ctx, query, args...)
}

func (p *Pool) Begin(ctx context.Context) (database.Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return txAdapter{tx}, nil
}

func (p *Pool) SQLDB() *sql.DB {
	return p.sqlDB
}

// txAdapter narrows pgx.Tx's Exec to the rows-affected count.
type txAdapter struct {
	pgx.Tx
}

func (t txAdapter) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.Tx.Exec(ctx, query, args...)
	return tag.RowsAffected(), err
}

func (t txAdapter) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return t.Tx.Query(ctx, query, args...)
}

func (t txAdapter) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.Tx.QueryRow(ctx, query, args...)
}
