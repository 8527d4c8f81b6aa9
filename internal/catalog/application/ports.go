package application

import (
	"context"

	"github.com/minishop/backend/internal/catalog/domain"
)

// ListFilter narrows and pages the catalog listing. SortBy is validated by
// the repository against the sortable columns.
type ListFilter struct {
	Search string
	SortBy string
	Page   int
	Limit  int
}

type ProductRepository interface {
	// Save inserts the product and assigns its id.
	Save(ctx context.Context, p *domain.Product) error
	Find(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, f ListFilter) ([]*domain.Product, error)
	Count(ctx context.Context, search string) (int, error)
}
