package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/config"
	"github.com/lib/pq"
)

// Row is one reformulated query as stored in the mirror table.
type Row struct {
	Index      string
	Query      string
	Structured string
}

type Client struct {
	DB  *sql.DB
	cfg config.PostgresConfig
}

func New(cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db, cfg: cfg}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func (c *Client) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// CreateTableSQL returns the DDL for the mirror table.
func CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	query_index TEXT PRIMARY KEY,
	raw_query   TEXT NOT NULL,
	structured  TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`, pq.QuoteIdentifier(table))
}

// UpsertSQL returns the statement used by UpsertRows.
func UpsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (query_index, raw_query, structured)
VALUES ($1, $2, $3)
ON CONFLICT (query_index) DO UPDATE
SET raw_query = EXCLUDED.raw_query, structured = EXCLUDED.structured, updated_at = now()`,
		pq.QuoteIdentifier(table))
}

// EnsureTable creates the mirror table if it does not exist.
func (c *Client) EnsureTable(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, CreateTableSQL(c.cfg.Table)); err != nil {
		return fmt.Errorf("creating table %s: %w", c.cfg.Table, err)
	}
	return nil
}

// UpsertRows writes rows in a single transaction; a later row with the same
// index replaces an earlier one.
func (c *Client) UpsertRows(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	return c.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, UpsertSQL(c.cfg.Table))
		if err != nil {
			return fmt.Errorf("preparing upsert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.Index, r.Query, r.Structured); err != nil {
				return fmt.Errorf("upserting query %s: %w", r.Index, err)
			}
		}
		return nil
	})
}
