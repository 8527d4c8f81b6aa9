package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minishop/backend/internal/catalog/domain"
	"github.com/minishop/backend/pkg/apperr"
	"github.com/minishop/backend/pkg/logging"
)

type fakeProductRepo struct {
	products map[int64]*domain.Product
	nextID   int64
	lastList ListFilter
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*domain.Product)}
}

func (f *fakeProductRepo) Save(_ context.Context, p *domain.Product) error {
	f.nextID++
	p.SetID(f.nextID)
	f.products[p.ID()] = p
	return nil
}

func (f *fakeProductRepo) Find(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	return p, nil
}

func (f *fakeProductRepo) List(_ context.Context, filter ListFilter) ([]*domain.Product, error) {
	f.lastList = filter
	out := make([]*domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) Count(_ context.Context, _ string) (int, error) {
	return len(f.products), nil
}

func TestCreateProduct(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(logging.New("error"), repo)

	p, err := svc.CreateProduct(context.Background(), "Iphone 16 Pro", "1299.99", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID())
	assert.Equal(t, "1299.99", p.Price().String())

	_, err = svc.CreateProduct(context.Background(), "", "1.00", 1)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	assert.Len(t, repo.products, 1)
}

func TestListProducts(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(logging.New("error"), repo)

	for range 25 {
		_, err := svc.CreateProduct(context.Background(), "Widget", "5.00", 1)
		require.NoError(t, err)
	}

	res, err := svc.ListProducts(context.Background(), "wid", "name", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page) // page clamps to 1
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, ListFilter{Search: "wid", SortBy: "name", Page: 1, Limit: 10}, repo.lastList)
}
