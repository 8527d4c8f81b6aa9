package application

import (
	"context"

	catalog "github.com/minishop/backend/internal/catalog/domain"
	"github.com/minishop/backend/internal/order/domain"
)

// StockDecrement is applied by the repository inside the same transaction
// that persists the order; it is the authoritative oversell guard.
type StockDecrement struct {
	ProductID int64
	Quantity  int
}

// PayloadFunc builds the outbox payload after the store has assigned ids.
type PayloadFunc func(o *domain.Order) ([]byte, error)

type OrderRepository interface {
	// SaveWithOutbox persists the order, its items, the stock decrements and
	// the outbox event in one transaction, assigning ids along the way.
	SaveWithOutbox(ctx context.Context, o *domain.Order, decrements []StockDecrement, eventType string, payload PayloadFunc) error
	// MarkPaidWithOutbox flips the order to paid and writes the outbox event
	// in one transaction. It fails if the stored row is no longer pending.
	MarkPaidWithOutbox(ctx context.Context, o *domain.Order, eventType string, payload []byte) error
	Get(ctx context.Context, id int64) (*domain.Order, error)
}

// ProductFinder is the catalog lookup capability the order flow consumes.
type ProductFinder interface {
	Find(ctx context.Context, id int64) (*catalog.Product, error)
}
