package orders

import (
	"testing"

	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
)

func TestGroupItemsBySeller(t *testing.T) {
	sellerA := uuid.New()
	sellerB := uuid.New()

	order := &models.Order{
		Items: []models.OrderItem{
			{ProductName: "Lamp", SellerID: &sellerA, SellerName: "Atlas Goods"},
			{ProductName: "Rug", SellerID: &sellerB, SellerName: "Bazaar Hall"},
			{ProductName: "Mug", SellerID: &sellerA, SellerName: "Atlas Goods"},
			{ProductName: "Orphan", SellerID: nil, SellerName: ""},
		},
	}

	groups := GroupItemsBySeller(order)

	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if len(groups["Atlas Goods"]) != 2 {
		t.Errorf("Atlas Goods items = %d, want 2", len(groups["Atlas Goods"]))
	}
	if len(groups["Bazaar Hall"]) != 1 {
		t.Errorf("Bazaar Hall items = %d, want 1", len(groups["Bazaar Hall"]))
	}
	if len(groups[UnknownSeller]) != 1 {
		t.Errorf("unknown seller items = %d, want 1", len(groups[UnknownSeller]))
	}

	t.Run("named seller with missing id falls into the unknown bucket", func(t *testing.T) {
		order := &models.Order{
			Items: []models.OrderItem{{ProductName: "Ghost", SellerID: nil, SellerName: "Vanished Shop"}},
		}
		groups := GroupItemsBySeller(order)
		if len(groups[UnknownSeller]) != 1 {
			t.Errorf("unknown seller items = %d, want 1", len(groups[UnknownSeller]))
		}
	})
}

func TestItemProgress(t *testing.T) {
	cases := []struct {
		status models.OrderItemStatus
		want   float64
	}{
		{models.ItemStatusPending, 25},
		{models.ItemStatusPreparing, 50},
		{models.ItemStatusShipped, 75},
		{models.ItemStatusDelivered, 100},
		{models.ItemStatusReturnRequested, 100},
		{models.ItemStatusReturned, 0},
		{models.ItemStatusCanceled, 0},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			if got := ItemProgress(tc.status); got != tc.want {
				t.Errorf("got %.0f, want %.0f", got, tc.want)
			}
		})
	}
}

func TestOrderProgress(t *testing.T) {
	t.Run("mean of live items", func(t *testing.T) {
		order := &models.Order{
			Status: models.OrderStatusReceived,
			Items: []models.OrderItem{
				{Status: models.ItemStatusShipped},
				{Status: models.ItemStatusPending},
			},
		}
		if got := OrderProgress(order); got != 50 {
			t.Errorf("got %.0f, want 50", got)
		}
	})

	t.Run("delivered order is complete", func(t *testing.T) {
		order := &models.Order{Status: models.OrderStatusDelivered}
		if got := OrderProgress(order); got != 100 {
			t.Errorf("got %.0f, want 100", got)
		}
	})

	t.Run("terminal failures report zero", func(t *testing.T) {
		for _, status := range []models.OrderStatus{models.OrderStatusCanceled, models.OrderStatusRefunded} {
			order := &models.Order{Status: status, Items: []models.OrderItem{{Status: models.ItemStatusDelivered}}}
			if got := OrderProgress(order); got != 0 {
				t.Errorf("%s: got %.0f, want 0", status, got)
			}
		}
	})
}

func TestCanReturnItem(t *testing.T) {
	cases := []struct {
		name string
		item models.OrderItem
		want bool
	}{
		{"delivered without request", models.OrderItem{Status: models.ItemStatusDelivered}, true},
		{"delivered with open request", models.OrderItem{Status: models.ItemStatusDelivered, HasReturnRequest: true}, false},
		{"still shipped", models.OrderItem{Status: models.ItemStatusShipped}, false},
		{"already returned", models.OrderItem{Status: models.ItemStatusReturned}, false},
		{"canceled", models.OrderItem{Status: models.ItemStatusCanceled}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanReturnItem(&tc.item); got != tc.want {
				t.Errorf("got %t, want %t", got, tc.want)
			}
		})
	}
}

func TestDisplayItemStatus(t *testing.T) {
	t.Run("open request surfaces as return_requested", func(t *testing.T) {
		item := &models.OrderItem{Status: models.ItemStatusDelivered, HasReturnRequest: true}
		if got := DisplayItemStatus(item); got != models.ItemStatusReturnRequested {
			t.Errorf("got %s, want return_requested", got)
		}
	})

	t.Run("stored status passes through otherwise", func(t *testing.T) {
		item := &models.OrderItem{Status: models.ItemStatusShipped}
		if got := DisplayItemStatus(item); got != models.ItemStatusShipped {
			t.Errorf("got %s, want shipped", got)
		}
	})

	t.Run("approved return stays returned", func(t *testing.T) {
		item := &models.OrderItem{Status: models.ItemStatusReturned, HasReturnRequest: true}
		if got := DisplayItemStatus(item); got != models.ItemStatusReturned {
			t.Errorf("got %s, want returned", got)
		}
	})
}
