package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minishop/backend/internal/catalog/application"
	"github.com/minishop/backend/internal/catalog/domain"
	"github.com/minishop/backend/internal/money"
	"github.com/minishop/backend/pkg/apperr"
)

// Sortable columns for the listing endpoint. Anything else falls back to id
// rather than being interpolated into the query.
var sortColumns = map[string]string{
	"name":  "name",
	"price": "price",
	"stock": "stock",
	"id":    "id",
}

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Save(ctx context.Context, p *domain.Product) error {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO product (name, price, stock) VALUES ($1,$2,$3) RETURNING id`,
		p.Name(), p.Price().String(), p.Stock(),
	).Scan(&id)
	if err != nil {
		return err
	}
	p.SetID(id)
	return nil
}

func (r *Repository) Find(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, price::text, stock FROM product WHERE id=$1`, id)
	return scanProduct(row)
}

func (r *Repository) List(ctx context.Context, f application.ListFilter) ([]*domain.Product, error) {
	query := `SELECT id, name, price::text, stock FROM product`
	var args []any
	if f.Search != "" {
		query += ` WHERE name ILIKE '%' || $1 || '%'`
		args = append(args, f.Search)
	}
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "id"
	}
	query += fmt.Sprintf(` ORDER BY %s ASC LIMIT %d OFFSET %d`, col, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) Count(ctx context.Context, search string) (int, error) {
	var total int
	var err error
	if search != "" {
		err = r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM product WHERE name ILIKE '%' || $1 || '%'`, search).Scan(&total)
	} else {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM product`).Scan(&total)
	}
	return total, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		id    int64
		name  string
		price string
		stock int
	)
	if err := row.Scan(&id, &name, &price, &stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, err
	}
	amount, err := money.Parse(price)
	if err != nil {
		return nil, err
	}
	return domain.RestoreProduct(id, name, amount, stock), nil
}
