package domain

import (
	"strings"

	"github.com/minishop/backend/internal/money"
	"github.com/minishop/backend/pkg/apperr"
)

// ErrInsufficientStock is a business-rule violation, not bad input: the
// request was well formed but the product cannot cover the quantity.
var ErrInsufficientStock = apperr.DomainViolation("insufficient stock")

// Product is the catalog aggregate. Stock is its only mutable attribute;
// the id is assigned by the persistence layer on first save.
type Product struct {
	id    int64
	name  string
	price money.Money
	stock int
}

func NewProduct(name, price string, stock int) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.InvalidArgument("name cannot be empty")
	}
	p, err := money.Parse(price)
	if err != nil {
		return nil, apperr.InvalidArgument("price must be a valid decimal with up to 2 decimals")
	}
	if !p.IsPositive() {
		return nil, apperr.InvalidArgument("price must be greater than zero")
	}
	if stock < 0 {
		return nil, apperr.InvalidArgument("stock cannot be negative")
	}
	return &Product{name: name, price: p, stock: stock}, nil
}

// RestoreProduct rehydrates a persisted product without re-running creation
// validation.
func RestoreProduct(id int64, name string, price money.Money, stock int) *Product {
	return &Product{id: id, name: name, price: price, stock: stock}
}

func (p *Product) ID() int64          { return p.id }
func (p *Product) Name() string       { return p.name }
func (p *Product) Price() money.Money { return p.price }
func (p *Product) Stock() int         { return p.stock }

// SetID is called by the repository once the store has assigned an id.
func (p *Product) SetID(id int64) { p.id = id }

// DecreaseStock mutates stock only; it never touches name or price, and on
// failure the product is left unchanged.
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return apperr.InvalidArgument("quantity must be greater than zero")
	}
	if quantity > p.stock {
		return ErrInsufficientStock
	}
	p.stock -= quantity
	return nil
}
