// Package database holds the Data Gateway's embedded schema and hand-written,
// sqlc-style query layer: one typed method per statement on top of a thin
// DBTX abstraction, so the same *Queries works over *sql.DB or a *sql.Tx.
package database

import (
	"context"
	_ "embed"
	"database/sql"

	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is satisfied by *sql.DB and *sql.Tx, letting every query method run
// either directly or inside a caller-managed transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries wraps a DBTX with the hand-written query methods in this package.
type Queries struct {
	db DBTX
}

// New returns a Queries bound to db (a *sql.DB or a *sql.Tx).
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q bound to tx, for use inside a transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ApplySchema creates every table in schema.sql if it does not already exist.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}

// resetStatements drops every table owned by this schema, in dependency order,
// before ApplySchema recreates them. Used only when RESET_DATABASE_ON_STARTUP is set.
var resetStatements = []string{
	"DROP TABLE IF EXISTS order_status_history CASCADE",
	"DROP TABLE IF EXISTS order_items CASCADE",
	"DROP TABLE IF EXISTS orders CASCADE",
	"DROP SEQUENCE IF EXISTS orders_order_id_seq",
	"DROP TABLE IF EXISTS cart_items CASCADE",
	"DROP TABLE IF EXISTS carts CASCADE",
	"DROP TABLE IF EXISTS product_enriched CASCADE",
	"DROP TABLE IF EXISTS products CASCADE",
	"DROP TABLE IF EXISTS aisles CASCADE",
	"DROP TABLE IF EXISTS departments CASCADE",
	"DROP TABLE IF EXISTS users CASCADE",
}

// ResetSchema drops every table this package manages. Callers must call
// ApplySchema afterward to recreate them.
func ResetSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range resetStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "reset schema")
		}
	}
	return nil
}
