package models

// OrderStatus is the outcome-level status of a whole order.
type OrderStatus string

const (
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusDelivered, OrderStatusCanceled, OrderStatusRefunded:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are accepted from s.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCanceled, OrderStatusRefunded:
		return true
	}
	return false
}

// OrderItemStatus tracks fulfillment of a single order line.
type OrderItemStatus string

const (
	ItemStatusPending         OrderItemStatus = "pending"
	ItemStatusPreparing       OrderItemStatus = "preparing"
	ItemStatusShipped         OrderItemStatus = "shipped"
	ItemStatusDelivered       OrderItemStatus = "delivered"
	ItemStatusReturnRequested OrderItemStatus = "return_requested"
	ItemStatusReturned        OrderItemStatus = "returned"
	ItemStatusCanceled        OrderItemStatus = "canceled"
)

// Valid reports whether s is a known item status.
func (s OrderItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusPreparing, ItemStatusShipped, ItemStatusDelivered,
		ItemStatusReturnRequested, ItemStatusReturned, ItemStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether the item accepts no further fulfillment updates.
// Delivered items may still leave through the return workflow, which is owned
// by the return-request ledger, not the transition policy.
func (s OrderItemStatus) Terminal() bool {
	switch s {
	case ItemStatusDelivered, ItemStatusReturned, ItemStatusCanceled:
		return true
	}
	return false
}

// Role identifies what a caller is allowed to touch.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}
