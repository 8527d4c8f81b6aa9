package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/minishop/backend/internal/order/domain"
	"github.com/minishop/backend/pkg/apperr"
)

const (
	EventOrderCreated = "OrderCreated"
	EventOrderPaid    = "OrderPaid"
)

type ItemInput struct {
	ProductID int64
	Quantity  int
}

type Service struct {
	log      *slog.Logger
	repo     OrderRepository
	products ProductFinder
}

func NewService(log *slog.Logger, repo OrderRepository, products ProductFinder) *Service {
	return &Service{log: log, repo: repo, products: products}
}

// CreateOrder builds the aggregate from catalog lookups and persists it
// atomically together with the stock decrements and an OrderCreated event.
func (s *Service) CreateOrder(ctx context.Context, customerID string, items []ItemInput) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, apperr.InvalidArgument("order must contain at least one item")
	}

	o, err := domain.NewOrder(customerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	decrements := make([]StockDecrement, 0, len(items))
	for _, in := range items {
		product, err := s.products.Find(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		// The item captures the product's price as of now.
		item, err := domain.NewOrderItem(product, product.Price(), in.Quantity)
		if err != nil {
			return nil, err
		}
		if err := product.DecreaseStock(in.Quantity); err != nil {
			return nil, err
		}
		if err := o.AddItem(item); err != nil {
			return nil, err
		}
		decrements = append(decrements, StockDecrement{ProductID: in.ProductID, Quantity: in.Quantity})
	}

	err = s.repo.SaveWithOutbox(ctx, o, decrements, EventOrderCreated, func(o *domain.Order) ([]byte, error) {
		return json.Marshal(domain.NewOrderCreated(o))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("order created", "order_id", o.ID(), "customer_id", o.CustomerID(), "total", o.Total().String())
	return o, nil
}

// Checkout pays a pending order on behalf of its owner.
func (s *Service) Checkout(ctx context.Context, orderID int64, customerID string) (*domain.Order, error) {
	o, err := s.loadOwned(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	if err := o.Pay(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(domain.NewOrderPaid(o))
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkPaidWithOutbox(ctx, o, EventOrderPaid, payload); err != nil {
		return nil, err
	}
	s.log.Info("order paid", "order_id", o.ID(), "customer_id", o.CustomerID(), "total", o.Total().String())
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID int64, customerID string) (*domain.Order, error) {
	return s.loadOwned(ctx, orderID, customerID)
}

func (s *Service) loadOwned(ctx context.Context, orderID int64, customerID string) (*domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, apperr.InvalidArgument("customer ID is required")
	}
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID() != customerID {
		return nil, apperr.AccessDenied("you do not have permission to access this order")
	}
	return o, nil
}
