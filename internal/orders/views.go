package orders

import "github.com/example/bazaar/internal/models"

// UnknownSeller is the bucket for items whose product snapshot carries
// no seller identity.
const UnknownSeller = "Unknown Seller"

// GroupItemsBySeller maps seller names to their items in a multi-seller
// order. Read-only; the slices alias the order's items.
func GroupItemsBySeller(order *models.Order) map[string][]models.OrderItem {
	groups := make(map[string][]models.OrderItem)
	for _, item := range order.Items {
		name := item.SellerName
		if item.SellerID == nil || name == "" {
			name = UnknownSeller
		}
		groups[name] = append(groups[name], item)
	}
	return groups
}

// fulfillmentChain is the forward path an item travels for display math.
var fulfillmentChain = []models.OrderItemStatus{
	models.ItemStatusPending,
	models.ItemStatusPreparing,
	models.ItemStatusShipped,
	models.ItemStatusDelivered,
}

// ItemProgress converts an item status into a percentage-complete value
// for tracking displays. Canceled and returned items report zero.
func ItemProgress(status models.OrderItemStatus) float64 {
	if status == models.ItemStatusReturnRequested {
		status = models.ItemStatusDelivered
	}
	for i, step := range fulfillmentChain {
		if step == status {
			return float64(i+1) / float64(len(fulfillmentChain)) * 100
		}
	}
	return 0
}

// OrderProgress is the order-level tracking indicator: the mean of the
// live items' progress, or a fixed value once the order is terminal.
func OrderProgress(order *models.Order) float64 {
	switch order.Status {
	case models.OrderStatusDelivered:
		return 100
	case models.OrderStatusCanceled, models.OrderStatusRefunded:
		return 0
	}
	if len(order.Items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range order.Items {
		sum += ItemProgress(item.Status)
	}
	return sum / float64(len(order.Items))
}

// CanReturnItem gates return-request creation: the item must be
// delivered with no pending request. Kept in lockstep with the
// preconditions of CreateReturnRequest.
func CanReturnItem(item *models.OrderItem) bool {
	return item.Status == models.ItemStatusDelivered && !item.HasReturnRequest
}

// DisplayItemStatus is the status shown to consumers. A delivered item
// with a pending return request surfaces as return_requested; the stored
// status stays delivered until the request is decided.
func DisplayItemStatus(item *models.OrderItem) models.OrderItemStatus {
	if item.Status == models.ItemStatusDelivered && item.HasReturnRequest {
		return models.ItemStatusReturnRequested
	}
	return item.Status
}
