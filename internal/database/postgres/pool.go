// Package postgres connects the admin account store to PostgreSQL through pgx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"careerboard/internal/config"
	"careerboard/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Admin traffic is a login now and then plus the startup seed, so the pool stays small
// unless configured otherwise.
const (
	adminMaxConns       int32 = 4
	adminMaxConnIdle          = 5 * time.Minute
	defaultConnectLimit       = 5 * time.Second
)

type Pool struct {
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// poolConfig turns DatabaseConfig into a pgx pool config sized for the admin store.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	host := strings.TrimSpace(cfg.DBHost)
	name := strings.TrimSpace(cfg.DBName)
	if host == "" || name == "" {
		return nil, errors.New("[Database] DB_HOST and DB_NAME are required")
	}
	port := strings.TrimSpace(cfg.DBPort)
	if port == "" {
		port = "5432"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + name,
	}
	if user := strings.TrimSpace(cfg.DBUser); user != "" {
		u.User = url.UserPassword(user, cfg.DBPassword)
	}
	q := url.Values{}
	if mode := strings.TrimSpace(cfg.DBSSLMode); mode != "" {
		q.Set("sslmode", mode)
	}
	q.Set("application_name", "careerboard-admin")
	u.RawQuery = q.Encode()

	pcfg, err := pgxpool.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("[Database] parse config: %w", err)
	}

	pcfg.ConnConfig.ConnectTimeout = defaultConnectLimit
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pcfg.MaxConns = adminMaxConns
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	pcfg.MinConns = 0
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = min(cfg.PoolMinConns, pcfg.MaxConns)
	}
	pcfg.MaxConnIdleTime = adminMaxConnIdle
	if cfg.PoolMaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	}
	if cfg.PoolMaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.PoolMaxConnLifetime
	}
	if cfg.PoolHealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.PoolHealthCheckPeriod
	}
	return pcfg, nil
}

// Connect opens the pool and verifies it with a ping before returning.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (database.DB, error) {
	pcfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("[Database] open pool: %w", err)
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, pcfg.ConnConfig.ConnectTimeout)
		defer cancel()
	}
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("[Database] ping %s: %w", pcfg.ConnConfig.Host, err)
	}

	return &Pool{pool: p, sqlDB: stdlib.OpenDBFromPool(p)}, nil
}

func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Pool) Close() error {
	var err error
	if p.sqlDB != nil {
		err = p.sqlDB.Close()
	}
	p.pool.Close()
	return err
}

func (p *Pool) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *Pool) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return p.pool.Query(ctx, query, args...)
}

func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return p.pool.QueryRow(ctx, query, args...)
}

// SQLDB exposes the pool through database/sql for the migration runner.
func (p *Pool) SQLDB() *sql.DB {
	return p.sqlDB
}
