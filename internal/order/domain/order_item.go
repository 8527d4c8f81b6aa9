package domain

import (
	catalog "github.com/minishop/backend/internal/catalog/domain"
	"github.com/minishop/backend/internal/money"
	"github.com/minishop/backend/pkg/apperr"
)

// OrderItem is a line item owned by an Order. The unit price is captured at
// creation time, so later catalog price changes never affect existing orders.
// The product is referenced, not owned.
type OrderItem struct {
	id        int64
	product   *catalog.Product
	unitPrice money.Money
	quantity  int
	parent    *Order
}

func NewOrderItem(product *catalog.Product, unitPrice money.Money, quantity int) (*OrderItem, error) {
	if product == nil {
		return nil, apperr.InvalidArgument("product is required")
	}
	if quantity <= 0 {
		return nil, apperr.InvalidArgument("quantity must be greater than zero")
	}
	if !unitPrice.IsPositive() {
		return nil, apperr.InvalidArgument("unit price must be greater than zero")
	}
	return &OrderItem{product: product, unitPrice: unitPrice, quantity: quantity}, nil
}

// RestoreOrderItem rehydrates a persisted item; the parent back-reference is
// re-established by RestoreOrder.
func RestoreOrderItem(id int64, product *catalog.Product, unitPrice money.Money, quantity int) *OrderItem {
	return &OrderItem{id: id, product: product, unitPrice: unitPrice, quantity: quantity}
}

func (i *OrderItem) ID() int64                 { return i.id }
func (i *OrderItem) Product() *catalog.Product { return i.product }
func (i *OrderItem) ProductID() int64          { return i.product.ID() }
func (i *OrderItem) UnitPrice() money.Money    { return i.unitPrice }
func (i *OrderItem) Quantity() int             { return i.quantity }

// ParentOrder is nil until the item is added to an order. Only Order.AddItem
// sets the back-reference; there is no setter outside this package.
func (i *OrderItem) ParentOrder() *Order { return i.parent }

// SetID is called by the repository once the store has assigned an id.
func (i *OrderItem) SetID(id int64) { i.id = id }

// Subtotal is recomputed on every call, never stored.
func (i *OrderItem) Subtotal() money.Money {
	return i.unitPrice.MulInt(i.quantity)
}
