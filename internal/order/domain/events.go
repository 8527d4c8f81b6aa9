package domain

// Outbox event payloads. Money values travel as 2-decimal strings.

type EventItem struct {
	ProductID int64  `json:"product_id"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type OrderCreated struct {
	OrderID    int64       `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	Total      string      `json:"total"`
	Items      []EventItem `json:"items"`
}

type OrderPaid struct {
	OrderID    int64  `json:"order_id"`
	CustomerID string `json:"customer_id"`
	Total      string `json:"total"`
}

func NewOrderCreated(o *Order) OrderCreated {
	items := make([]EventItem, 0, len(o.items))
	for _, item := range o.items {
		items = append(items, EventItem{
			ProductID: item.ProductID(),
			UnitPrice: item.UnitPrice().String(),
			Quantity:  item.Quantity(),
			Subtotal:  item.Subtotal().String(),
		})
	}
	return OrderCreated{
		OrderID:    o.id,
		CustomerID: o.customerID,
		Total:      o.total.String(),
		Items:      items,
	}
}

func NewOrderPaid(o *Order) OrderPaid {
	return OrderPaid{
		OrderID:    o.id,
		CustomerID: o.customerID,
		Total:      o.total.String(),
	}
}
