package registry

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharani043/result-bot/internal/monitor"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the Postgres connection pool backing the
// registry.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore keeps the subscriber set in a single Postgres table.
// It deliberately preserves the whole-set contract: Load reads every
// row in insertion order and Save rewrites the table inside one
// transaction. That keeps the registry semantics identical across the
// file and Postgres providers under the single-writer model.
type PostgresStore struct {
	pool  pgxPool
	table string
}

// NewPostgresStore connects a pool and ensures the schema exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("registry.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store, err := NewPostgresStoreWithPool(pool, cfg.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool,
// primarily for testing.
func NewPostgresStoreWithPool(pool pgxPool, table string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "subscribers"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	position INT NOT NULL,
	roll TEXT NOT NULL,
	dob TEXT NOT NULL,
	chat_id BIGINT NOT NULL,
	notified BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (roll, chat_id)
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure subscribers schema: %w", err)
	}
	return nil
}

// Load reads the full subscriber set in insertion order.
func (s *PostgresStore) Load(ctx context.Context) ([]monitor.Subscriber, error) {
	query := fmt.Sprintf(
		`SELECT roll, dob, chat_id, notified FROM %s ORDER BY position`,
		s.table,
	)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var subs []monitor.Subscriber
	for rows.Next() {
		var sub monitor.Subscriber
		if err := rows.Scan(&sub.Roll, &sub.DOB, &sub.ChatID, &sub.Notified); err != nil {
			return nil, fmt.Errorf("scan subscriber row: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriber rows: %w", err)
	}
	return subs, nil
}

// Save rewrites the full subscriber set in one transaction.
func (s *PostgresStore) Save(ctx context.Context, subs []monitor.Subscriber) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return fmt.Errorf("clear subscribers: %w", err)
	}
	insert := fmt.Sprintf(
		`INSERT INTO %s (position, roll, dob, chat_id, notified) VALUES ($1, $2, $3, $4, $5)`,
		s.table,
	)
	for i, sub := range subs {
		if _, err := tx.Exec(ctx, insert, i, sub.Roll, sub.DOB, sub.ChatID, sub.Notified); err != nil {
			return fmt.Errorf("insert subscriber %s: %w", sub.Roll, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
