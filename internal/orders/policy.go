package orders

import "github.com/example/bazaar/internal/models"

// itemForward maps each fulfillment status to its single legal successor.
// Everything else is either terminal or owned by the return workflow.
var itemForward = map[models.OrderItemStatus]models.OrderItemStatus{
	models.ItemStatusPending:   models.ItemStatusPreparing,
	models.ItemStatusPreparing: models.ItemStatusShipped,
	models.ItemStatusShipped:   models.ItemStatusDelivered,
}

// AttemptItemTransition decides whether actor may move item to requested.
// Only the seller owning the item's product, or an admin, may advance the
// fulfillment chain, and only one step at a time.
func AttemptItemTransition(item *models.OrderItem, requested models.OrderItemStatus, actor Actor) error {
	if !requested.Valid() {
		return errInvalidTransition("unknown item status %q", requested)
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleSeller:
		if !item.OwnedBySeller(actor.ID) {
			return errForbidden("order item does not contain your product")
		}
	default:
		return errForbidden("only sellers and admins may update item status")
	}

	if item.Status.Terminal() {
		return errInvalidTransition("item status %q accepts no further updates", item.Status)
	}

	next, ok := itemForward[item.Status]
	if !ok || next != requested {
		return errInvalidTransition("cannot move item from %q to %q", item.Status, requested)
	}

	return nil
}

// AttemptOrderTransition decides whether actor may move order to requested.
// Admins may force any defined status while the order is not terminal.
// Customers may only cancel their own order, and only while it is still
// received. Sellers act through item-level updates, never here.
func AttemptOrderTransition(order *models.Order, requested models.OrderStatus, actor Actor) error {
	if !requested.Valid() {
		return errInvalidTransition("unknown order status %q", requested)
	}

	if order.Status.Terminal() {
		return errInvalidTransition("order status %q accepts no further updates", order.Status)
	}

	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCustomer:
		if order.UserID != actor.ID {
			return errForbidden("order does not belong to you")
		}
		if requested != models.OrderStatusCanceled {
			return errForbidden("customers may only cancel orders")
		}
		if order.Status != models.OrderStatusReceived {
			return errInvalidTransition("cannot cancel order with status %q", order.Status)
		}
		return nil
	default:
		return errForbidden("sellers update individual items, not order status")
	}
}

// DeriveOrderStatus recomputes the order status from its items. Terminal
// order statuses are sticky. Orders are created with at least one item;
// an empty item list is a creation-invariant violation and leaves the
// status untouched.
func DeriveOrderStatus(order *models.Order) models.OrderStatus {
	if order.Status.Terminal() || len(order.Items) == 0 {
		return order.Status
	}

	allCanceled := true
	allClosed := true
	allLiveDelivered := true
	for _, item := range order.Items {
		if item.Status != models.ItemStatusCanceled {
			allCanceled = false
		}
		switch item.Status {
		case models.ItemStatusCanceled, models.ItemStatusReturned:
			// Closed lines do not hold the order back from delivered.
		default:
			allClosed = false
			if item.Status != models.ItemStatusDelivered {
				allLiveDelivered = false
			}
		}
	}

	switch {
	case allCanceled:
		return models.OrderStatusCanceled
	case allClosed:
		return models.OrderStatusRefunded
	case allLiveDelivered:
		return models.OrderStatusDelivered
	default:
		return models.OrderStatusReceived
	}
}
