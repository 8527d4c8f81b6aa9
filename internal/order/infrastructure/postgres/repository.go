package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalog "github.com/minishop/backend/internal/catalog/domain"
	"github.com/minishop/backend/internal/money"
	"github.com/minishop/backend/internal/order/application"
	"github.com/minishop/backend/internal/order/domain"
	"github.com/minishop/backend/pkg/apperr"
	"github.com/minishop/backend/pkg/tracing"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// SaveWithOutbox commits the order, its items, the stock decrements and the
// outbox event as one transaction. The conditional stock update is the
// authoritative oversell guard: concurrent checkouts serialize on the product
// row, and a decrement below zero rolls the whole order back.
func (r *Repository) SaveWithOutbox(ctx context.Context, o *domain.Order, decrements []application.StockDecrement, eventType string, payload application.PayloadFunc) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, d := range decrements {
		ct, err := tx.Exec(ctx,
			`UPDATE product SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
			d.ProductID, d.Quantity)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return catalog.ErrInsufficientStock
		}
	}

	var orderID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO "order" (customer_id, created_at, status, total) VALUES ($1,$2,$3,$4) RETURNING id`,
		o.CustomerID(), o.CreatedAt(), string(o.Status()), o.Total().String(),
	).Scan(&orderID)
	if err != nil {
		return err
	}
	o.SetID(orderID)

	for _, item := range o.Items() {
		var itemID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO order_item (parent_order_id, product_id, unit_price, quantity) VALUES ($1,$2,$3,$4) RETURNING id`,
			orderID, item.ProductID(), item.UnitPrice().String(), item.Quantity(),
		).Scan(&itemID)
		if err != nil {
			return err
		}
		item.SetID(itemID)
	}

	body, err := payload(o)
	if err != nil {
		return err
	}
	if err := insertOutbox(ctx, tx, orderID, eventType, body, tracing.TraceparentFromContext(ctx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// MarkPaidWithOutbox flips the stored row pending->paid together with the
// outbox event. The conditional update makes concurrent double-pays lose.
func (r *Repository) MarkPaidWithOutbox(ctx context.Context, o *domain.Order, eventType string, payload []byte) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx,
		`UPDATE "order" SET status=$2 WHERE id=$1 AND status=$3`,
		o.ID(), string(domain.StatusPaid), string(domain.StatusPending))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.DomainViolation("order is not in pending state")
	}

	if err := insertOutbox(ctx, tx, o.ID(), eventType, payload, tracing.TraceparentFromContext(ctx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	var (
		orderID    int64
		customerID string
		createdAt  time.Time
		status     string
		total      string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, created_at, status, total::text FROM "order" WHERE id=$1`, id).
		Scan(&orderID, &customerID, &createdAt, &status, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT oi.id, oi.unit_price::text, oi.quantity,
		       p.id, p.name, p.price::text, p.stock
		FROM order_item oi
		JOIN product p ON p.id = oi.product_id
		WHERE oi.parent_order_id = $1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var (
			itemID       int64
			unitPrice    string
			quantity     int
			productID    int64
			productName  string
			productPrice string
			productStock int
		)
		if err := rows.Scan(&itemID, &unitPrice, &quantity, &productID, &productName, &productPrice, &productStock); err != nil {
			return nil, err
		}
		price, err := money.Parse(productPrice)
		if err != nil {
			return nil, err
		}
		unit, err := money.Parse(unitPrice)
		if err != nil {
			return nil, err
		}
		product := catalog.RestoreProduct(productID, productName, price, productStock)
		items = append(items, domain.RestoreOrderItem(itemID, product, unit, quantity))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	amount, err := money.Parse(total)
	if err != nil {
		return nil, err
	}
	return domain.RestoreOrder(orderID, customerID, createdAt, domain.Status(status), items, amount), nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateID int64, eventType string, payload []byte, traceparent string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status) VALUES ($1,$2,$3,$4,$5,'pending')`,
		"order", strconv.FormatInt(aggregateID, 10), eventType, payload, traceparent)
	return err
}
