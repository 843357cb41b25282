package orders

import (
	"testing"

	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
)

func TestAttemptItemTransition(t *testing.T) {
	sellerID := uuid.New()
	seller := Actor{ID: sellerID, Role: models.RoleSeller}
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	customer := Actor{ID: uuid.New(), Role: models.RoleCustomer}

	newItem := func(status models.OrderItemStatus) *models.OrderItem {
		return &models.OrderItem{SellerID: &sellerID, Status: status}
	}

	t.Run("owning seller advances one step at a time", func(t *testing.T) {
		steps := []struct {
			from models.OrderItemStatus
			to   models.OrderItemStatus
		}{
			{models.ItemStatusPending, models.ItemStatusPreparing},
			{models.ItemStatusPreparing, models.ItemStatusShipped},
			{models.ItemStatusShipped, models.ItemStatusDelivered},
		}
		for _, step := range steps {
			if err := AttemptItemTransition(newItem(step.from), step.to, seller); err != nil {
				t.Errorf("%s -> %s: unexpected error %v", step.from, step.to, err)
			}
		}
	})

	t.Run("skipping a step is rejected", func(t *testing.T) {
		err := AttemptItemTransition(newItem(models.ItemStatusPending), models.ItemStatusShipped, seller)
		if KindOf(err) != KindInvalidTransition {
			t.Errorf("expected invalid_transition, got %v", err)
		}
	})

	t.Run("moving backwards is rejected", func(t *testing.T) {
		err := AttemptItemTransition(newItem(models.ItemStatusShipped), models.ItemStatusPreparing, seller)
		if KindOf(err) != KindInvalidTransition {
			t.Errorf("expected invalid_transition, got %v", err)
		}
	})

	t.Run("terminal statuses accept no updates", func(t *testing.T) {
		for _, status := range []models.OrderItemStatus{
			models.ItemStatusDelivered,
			models.ItemStatusReturned,
			models.ItemStatusCanceled,
		} {
			err := AttemptItemTransition(newItem(status), models.ItemStatusPreparing, admin)
			if KindOf(err) != KindInvalidTransition {
				t.Errorf("from %s: expected invalid_transition, got %v", status, err)
			}
		}
	})

	t.Run("customers may not touch item status", func(t *testing.T) {
		err := AttemptItemTransition(newItem(models.ItemStatusPending), models.ItemStatusPreparing, customer)
		if KindOf(err) != KindForbidden {
			t.Errorf("expected forbidden, got %v", err)
		}
	})

	t.Run("another seller may not touch the item", func(t *testing.T) {
		other := Actor{ID: uuid.New(), Role: models.RoleSeller}
		err := AttemptItemTransition(newItem(models.ItemStatusPending), models.ItemStatusPreparing, other)
		if KindOf(err) != KindForbidden {
			t.Errorf("expected forbidden, got %v", err)
		}
	})

	t.Run("admin may advance any item", func(t *testing.T) {
		if err := AttemptItemTransition(newItem(models.ItemStatusPending), models.ItemStatusPreparing, admin); err != nil {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		err := AttemptItemTransition(newItem(models.ItemStatusPending), "misplaced", admin)
		if KindOf(err) != KindInvalidTransition {
			t.Errorf("expected invalid_transition, got %v", err)
		}
	})
}

func TestAttemptOrderTransition(t *testing.T) {
	customerID := uuid.New()
	customer := Actor{ID: customerID, Role: models.RoleCustomer}
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	seller := Actor{ID: uuid.New(), Role: models.RoleSeller}

	newOrder := func(status models.OrderStatus) *models.Order {
		return &models.Order{UserID: customerID, Status: status}
	}

	t.Run("admin may force any defined status", func(t *testing.T) {
		for _, status := range []models.OrderStatus{
			models.OrderStatusReceived,
			models.OrderStatusDelivered,
			models.OrderStatusCanceled,
			models.OrderStatusRefunded,
		} {
			if err := AttemptOrderTransition(newOrder(models.OrderStatusReceived), status, admin); err != nil {
				t.Errorf("to %s: unexpected error %v", status, err)
			}
		}
	})

	t.Run("customer may cancel own received order", func(t *testing.T) {
		if err := AttemptOrderTransition(newOrder(models.OrderStatusReceived), models.OrderStatusCanceled, customer); err != nil {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("customer may not cancel after delivery", func(t *testing.T) {
		err := AttemptOrderTransition(newOrder(models.OrderStatusDelivered), models.OrderStatusCanceled, customer)
		if KindOf(err) != KindInvalidTransition {
			t.Errorf("expected invalid_transition, got %v", err)
		}
	})

	t.Run("customer may not force other statuses", func(t *testing.T) {
		err := AttemptOrderTransition(newOrder(models.OrderStatusReceived), models.OrderStatusDelivered, customer)
		if KindOf(err) != KindForbidden {
			t.Errorf("expected forbidden, got %v", err)
		}
	})

	t.Run("customer may not cancel someone else's order", func(t *testing.T) {
		other := Actor{ID: uuid.New(), Role: models.RoleCustomer}
		err := AttemptOrderTransition(newOrder(models.OrderStatusReceived), models.OrderStatusCanceled, other)
		if KindOf(err) != KindForbidden {
			t.Errorf("expected forbidden, got %v", err)
		}
	})

	t.Run("sellers never change order status directly", func(t *testing.T) {
		err := AttemptOrderTransition(newOrder(models.OrderStatusReceived), models.OrderStatusCanceled, seller)
		if KindOf(err) != KindForbidden {
			t.Errorf("expected forbidden, got %v", err)
		}
	})

	t.Run("terminal orders are immutable even for admins", func(t *testing.T) {
		for _, status := range []models.OrderStatus{models.OrderStatusCanceled, models.OrderStatusRefunded} {
			err := AttemptOrderTransition(newOrder(status), models.OrderStatusReceived, admin)
			if KindOf(err) != KindInvalidTransition {
				t.Errorf("from %s: expected invalid_transition, got %v", status, err)
			}
		}
	})
}

func TestDeriveOrderStatus(t *testing.T) {
	newOrder := func(statuses ...models.OrderItemStatus) *models.Order {
		order := &models.Order{Status: models.OrderStatusReceived}
		for _, status := range statuses {
			order.Items = append(order.Items, models.OrderItem{Status: status})
		}
		return order
	}

	cases := []struct {
		name  string
		order *models.Order
		want  models.OrderStatus
	}{
		{"all delivered", newOrder(models.ItemStatusDelivered, models.ItemStatusDelivered), models.OrderStatusDelivered},
		{"all canceled", newOrder(models.ItemStatusCanceled, models.ItemStatusCanceled), models.OrderStatusCanceled},
		{"returned and canceled collapse to refunded", newOrder(models.ItemStatusReturned, models.ItemStatusCanceled), models.OrderStatusRefunded},
		{"all returned", newOrder(models.ItemStatusReturned, models.ItemStatusReturned), models.OrderStatusRefunded},
		{"mixed progress stays received", newOrder(models.ItemStatusDelivered, models.ItemStatusShipped), models.OrderStatusReceived},
		{"canceled line does not block delivery", newOrder(models.ItemStatusDelivered, models.ItemStatusCanceled), models.OrderStatusDelivered},
		{"returned line does not block delivery", newOrder(models.ItemStatusDelivered, models.ItemStatusReturned), models.OrderStatusDelivered},
		{"canceled plus undelivered stays received", newOrder(models.ItemStatusShipped, models.ItemStatusCanceled), models.OrderStatusReceived},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveOrderStatus(tc.order); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}

	t.Run("terminal status is sticky", func(t *testing.T) {
		order := newOrder(models.ItemStatusDelivered)
		order.Status = models.OrderStatusCanceled
		if got := DeriveOrderStatus(order); got != models.OrderStatusCanceled {
			t.Errorf("got %s, want canceled", got)
		}
	})

	t.Run("empty item list leaves status untouched", func(t *testing.T) {
		order := &models.Order{Status: models.OrderStatusReceived}
		if got := DeriveOrderStatus(order); got != models.OrderStatusReceived {
			t.Errorf("got %s, want received", got)
		}
	})
}
