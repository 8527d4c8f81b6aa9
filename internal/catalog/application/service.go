package application

import (
	"context"
	"log/slog"

	"github.com/minishop/backend/internal/catalog/domain"
)

const listLimit = 10

type Service struct {
	log  *slog.Logger
	repo ProductRepository
}

func NewService(log *slog.Logger, repo ProductRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) CreateProduct(ctx context.Context, name, price string, stock int) (*domain.Product, error) {
	p, err := domain.NewProduct(name, price, stock)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("product created", "product_id", p.ID(), "name", p.Name())
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.Find(ctx, id)
}

type ListResult struct {
	Products []*domain.Product
	Page     int
	Limit    int
	Total    int
	Pages    int
}

func (s *Service) ListProducts(ctx context.Context, search, sortBy string, page int) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	f := ListFilter{Search: search, SortBy: sortBy, Page: page, Limit: listLimit}
	products, err := s.repo.List(ctx, f)
	if err != nil {
		return ListResult{}, err
	}
	total, err := s.repo.Count(ctx, search)
	if err != nil {
		return ListResult{}, err
	}
	pages := (total + listLimit - 1) / listLimit
	return ListResult{
		Products: products,
		Page:     page,
		Limit:    listLimit,
		Total:    total,
		Pages:    pages,
	}, nil
}
