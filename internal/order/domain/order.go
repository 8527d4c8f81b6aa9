package domain

import (
	"strings"
	"time"

	"github.com/minishop/backend/internal/money"
	"github.com/minishop/backend/pkg/apperr"
)

// Order is the aggregate root. It exclusively owns its items and enforces its
// own invariants: the total always equals the sum of item subtotals, items
// can only be appended while pending, and Pay is the only status change.
// Whatever orchestration path reaches this type, it can never produce a paid
// order in an invalid shape.
type Order struct {
	id         int64
	customerID string
	createdAt  time.Time
	status     Status
	items      []*OrderItem
	total      money.Money
}

func NewOrder(customerID string, createdAt time.Time) (*Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, apperr.InvalidArgument("customer ID cannot be empty")
	}
	return &Order{
		customerID: customerID,
		createdAt:  createdAt,
		status:     StatusPending,
	}, nil
}

// RestoreOrder rehydrates a persisted order and rewires the item
// back-references.
func RestoreOrder(id int64, customerID string, createdAt time.Time, status Status, items []*OrderItem, total money.Money) *Order {
	o := &Order{
		id:         id,
		customerID: customerID,
		createdAt:  createdAt,
		status:     status,
		items:      items,
		total:      total,
	}
	for _, item := range items {
		item.parent = o
	}
	return o
}

func (o *Order) ID() int64            { return o.id }
func (o *Order) CustomerID() string   { return o.customerID }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) Status() Status       { return o.status }
func (o *Order) Total() money.Money   { return o.total }

// Items returns the line items in insertion order. The slice is a copy; the
// items themselves stay owned by the order.
func (o *Order) Items() []*OrderItem {
	out := make([]*OrderItem, len(o.items))
	copy(out, o.items)
	return out
}

// SetID is called by the repository once the store has assigned an id.
func (o *Order) SetID(id int64) { o.id = id }

// AddItem appends an item and recomputes the total. Adding the same item
// instance twice is a no-op. Fails once the order has left pending.
func (o *Order) AddItem(item *OrderItem) error {
	if o.status != StatusPending {
		return apperr.DomainViolation("cannot modify a paid order")
	}
	for _, existing := range o.items {
		if existing == item {
			return nil
		}
	}
	o.items = append(o.items, item)
	item.parent = o
	o.recalculateTotal()
	return nil
}

// Pay transitions pending -> paid. It is the only status change within the
// order's public contract.
func (o *Order) Pay() error {
	if o.status != StatusPending {
		return apperr.DomainViolation("order is not in pending state")
	}
	if len(o.items) == 0 {
		return apperr.DomainViolation("order must have at least one item")
	}
	if !o.total.IsPositive() {
		return apperr.DomainViolation("order total must be greater than zero")
	}
	o.status = StatusPaid
	return nil
}

// Full fold over all items rather than incremental bookkeeping; the
// total=sum(subtotals) invariant then holds by construction.
func (o *Order) recalculateTotal() {
	total := money.Zero()
	for _, item := range o.items {
		total = total.Add(item.Subtotal())
	}
	o.total = total
}
