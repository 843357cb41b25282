package orders

import "github.com/example/bazaar/internal/models"

// Display adapters for status values. Switches are exhaustive over the
// defined constants; an undefined value is reported as such instead of
// falling through to a lookalike bucket.

// OrderStatusLabel returns the customer-facing label for an order status.
func OrderStatusLabel(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusReceived:
		return "Order Received"
	case models.OrderStatusDelivered:
		return "Delivered"
	case models.OrderStatusCanceled:
		return "Canceled"
	case models.OrderStatusRefunded:
		return "Refunded"
	}
	return "Unknown Status"
}

// OrderStatusColor returns the display color for an order status.
func OrderStatusColor(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusReceived:
		return "#f39c12"
	case models.OrderStatusDelivered:
		return "#27ae60"
	case models.OrderStatusCanceled:
		return "#e74c3c"
	case models.OrderStatusRefunded:
		return "#9b59b6"
	}
	return "#7f8c8d"
}

// ItemStatusLabel returns the customer-facing label for an item status.
func ItemStatusLabel(status models.OrderItemStatus) string {
	switch status {
	case models.ItemStatusPending:
		return "Pending"
	case models.ItemStatusPreparing:
		return "Preparing"
	case models.ItemStatusShipped:
		return "Shipped"
	case models.ItemStatusDelivered:
		return "Delivered"
	case models.ItemStatusReturnRequested:
		return "Return Requested"
	case models.ItemStatusReturned:
		return "Returned"
	case models.ItemStatusCanceled:
		return "Canceled"
	}
	return "Unknown Status"
}

// ItemStatusColor returns the display color for an item status.
func ItemStatusColor(status models.OrderItemStatus) string {
	switch status {
	case models.ItemStatusPending:
		return "#f39c12"
	case models.ItemStatusPreparing:
		return "#3498db"
	case models.ItemStatusShipped:
		return "#1abc9c"
	case models.ItemStatusDelivered:
		return "#27ae60"
	case models.ItemStatusReturnRequested:
		return "#e67e22"
	case models.ItemStatusReturned:
		return "#9b59b6"
	case models.ItemStatusCanceled:
		return "#e74c3c"
	}
	return "#7f8c8d"
}
