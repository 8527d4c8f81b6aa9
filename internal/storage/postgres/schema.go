// Package postgres bootstraps the relational schema. Statements are
// idempotent so every instance can run them at startup.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS product (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(15,2) NOT NULL,
		stock INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS "order" (
		id BIGSERIAL PRIMARY KEY,
		customer_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		total NUMERIC(15,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_item (
		id BIGSERIAL PRIMARY KEY,
		parent_order_id BIGINT NOT NULL REFERENCES "order"(id),
		product_id BIGINT NOT NULL REFERENCES product(id),
		unit_price NUMERIC(15,2) NOT NULL,
		quantity INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id BIGSERIAL PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		type TEXT NOT NULL,
		payload JSONB NOT NULL,
		traceparent TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		relay_id TEXT,
		lease_until TIMESTAMPTZ,
		retry_count INT NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_item_parent ON order_item (parent_order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox (status, id)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
