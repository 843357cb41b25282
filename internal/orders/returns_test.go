package orders

import (
	"testing"

	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
)

func TestCreateReturnRequest(t *testing.T) {
	customerID := uuid.New()
	sellerID := uuid.New()
	customer := Actor{ID: customerID, Role: models.RoleCustomer}
	seller := Actor{ID: sellerID, Role: models.RoleSeller}

	deliveredOrder := func() (*memStore, *Service, *models.Order) {
		order := testOrder(customerID, sellerID)
		store := newMemStore(order)
		service := NewService(store, nil)
		result := deliverItem(t, service, order, order.Items[0].ID, seller)
		return store, service, result
	}

	t.Run("owner opens a request on a delivered item", func(t *testing.T) {
		store, service, order := deliveredOrder()

		request, err := service.CreateReturnRequest(order.Items[0].ID, "arrived damaged", customer)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		if request.Reason != "arrived damaged" {
			t.Errorf("reason = %q", request.Reason)
		}
		if !request.Open() {
			t.Error("fresh request should be open")
		}

		stored, _ := store.LoadOrder(order.ID)
		if !stored.Items[0].HasReturnRequest {
			t.Error("item pending marker not set")
		}
		if !stored.HasReturnRequest {
			t.Error("order pending marker not set")
		}
		if stored.Items[0].Status != models.ItemStatusDelivered {
			t.Errorf("stored item status = %s, want delivered", stored.Items[0].Status)
		}
	})

	t.Run("reason is trimmed before validation", func(t *testing.T) {
		_, service, order := deliveredOrder()

		request, err := service.CreateReturnRequest(order.Items[0].ID, "  wrong size  ", customer)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if request.Reason != "wrong size" {
			t.Errorf("reason = %q, want trimmed", request.Reason)
		}
	})

	t.Run("whitespace-only reason is a validation error", func(t *testing.T) {
		_, service, order := deliveredOrder()

		_, err := service.CreateReturnRequest(order.Items[0].ID, "   ", customer)
		if KindOf(err) != KindValidation {
			t.Errorf("expected validation, got %v", err)
		}
	})

	t.Run("non-delivered item is rejected", func(t *testing.T) {
		order := testOrder(customerID, sellerID)
		service := NewService(newMemStore(order), nil)

		_, err := service.CreateReturnRequest(order.Items[0].ID, "changed my mind", customer)
		if KindOf(err) != KindInvalidTransition {
			t.Errorf("expected invalid_transition, got %v", err)
		}
	})

	t.Run("second open request conflicts", func(t *testing.T) {
		_, service, order := deliveredOrder()

		if _, err := service.CreateReturnRequest(order.Items[0].ID, "damaged", customer); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := service.CreateReturnRequest(order.Items[0].ID, "still damaged", customer)
		if KindOf(err) != KindConflict {
			t.Errorf("expected conflict, got %v", err)
		}
	})

	t.Run("only the owning customer may request", func(t *testing.T) {
		_, service, order := deliveredOrder()

		other := Actor{ID: uuid.New(), Role: models.RoleCustomer}
		if _, err := service.CreateReturnRequest(order.Items[0].ID, "not mine", other); KindOf(err) != KindForbidden {
			t.Errorf("other customer: expected forbidden, got %v", err)
		}
		if _, err := service.CreateReturnRequest(order.Items[0].ID, "mine to sell", seller); KindOf(err) != KindForbidden {
			t.Errorf("seller: expected forbidden, got %v", err)
		}
	})

	t.Run("unknown item reports not found", func(t *testing.T) {
		_, service, _ := deliveredOrder()

		_, err := service.CreateReturnRequest(uuid.New(), "lost", customer)
		if KindOf(err) != KindNotFound {
			t.Errorf("expected not_found, got %v", err)
		}
	})
}

func TestProcessReturnRequest(t *testing.T) {
	customerID := uuid.New()
	sellerID := uuid.New()
	customer := Actor{ID: customerID, Role: models.RoleCustomer}
	seller := Actor{ID: sellerID, Role: models.RoleSeller}
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}

	openRequest := func(payments PaymentProvider, sellerIDs ...uuid.UUID) (*memStore, *Service, *models.Order, *models.ReturnRequest) {
		order := testOrder(customerID, sellerIDs...)
		store := newMemStore(order)
		service := NewService(store, payments)
		deliverItem(t, service, order, order.Items[0].ID, seller)
		request, err := service.CreateReturnRequest(order.Items[0].ID, "arrived damaged", customer)
		if err != nil {
			t.Fatalf("open request: %v", err)
		}
		return store, service, order, request
	}

	t.Run("approval returns the item and refunds the line", func(t *testing.T) {
		payments := &fakePayments{}
		store, service, order, request := openRequest(payments, sellerID)

		processed, err := service.ProcessReturnRequest(request.ID, true, "verified damage", seller)
		if err != nil {
			t.Fatalf("process: %v", err)
		}

		if !processed.Processed || !processed.Approved {
			t.Error("request not marked approved")
		}
		if processed.ProcessedAt == nil {
			t.Error("processed timestamp missing")
		}

		stored, _ := store.LoadOrder(order.ID)
		if stored.Items[0].Status != models.ItemStatusReturned {
			t.Errorf("item status = %s, want returned", stored.Items[0].Status)
		}
		if !stored.Items[0].Refunded {
			t.Error("item not marked refunded")
		}
		if len(payments.partialRefunds) != 1 || payments.partialRefunds[0] != 50 {
			t.Errorf("partial refunds = %v, want one of 50.00", payments.partialRefunds)
		}
		if len(store.restocks) != 1 {
			t.Errorf("restock calls = %d, want 1", len(store.restocks))
		}
	})

	t.Run("approving the only item cascades the order to refunded", func(t *testing.T) {
		store, service, order, request := openRequest(&fakePayments{}, sellerID)

		if _, err := service.ProcessReturnRequest(request.ID, true, "", seller); err != nil {
			t.Fatalf("process: %v", err)
		}

		stored, _ := store.LoadOrder(order.ID)
		if stored.Status != models.OrderStatusRefunded {
			t.Errorf("order status = %s, want refunded", stored.Status)
		}
	})

	t.Run("approval with other items live keeps the order open", func(t *testing.T) {
		otherSeller := uuid.New()
		store, service, order, request := openRequest(&fakePayments{}, sellerID, otherSeller)

		if _, err := service.ProcessReturnRequest(request.ID, true, "", seller); err != nil {
			t.Fatalf("process: %v", err)
		}

		stored, _ := store.LoadOrder(order.ID)
		if stored.Status != models.OrderStatusReceived {
			t.Errorf("order status = %s, want received", stored.Status)
		}
	})

	t.Run("rejection keeps the item delivered and allows a retry", func(t *testing.T) {
		store, service, order, request := openRequest(nil, sellerID)

		processed, err := service.ProcessReturnRequest(request.ID, false, "outside window", seller)
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if processed.Approved {
			t.Error("rejected request marked approved")
		}

		stored, _ := store.LoadOrder(order.ID)
		if stored.Items[0].Status != models.ItemStatusDelivered {
			t.Errorf("item status = %s, want delivered", stored.Items[0].Status)
		}
		if stored.Items[0].HasReturnRequest {
			t.Error("pending marker not cleared after rejection")
		}

		// History survives, and a fresh request is allowed.
		if kept, _ := store.LoadReturnRequest(request.ID); kept == nil || !kept.Processed {
			t.Error("processed request row not kept")
		}
		if _, err := service.CreateReturnRequest(order.Items[0].ID, "second attempt", customer); err != nil {
			t.Errorf("retry after rejection: %v", err)
		}
	})

	t.Run("double processing conflicts", func(t *testing.T) {
		_, service, _, request := openRequest(nil, sellerID)

		if _, err := service.ProcessReturnRequest(request.ID, false, "", seller); err != nil {
			t.Fatalf("first process: %v", err)
		}
		_, err := service.ProcessReturnRequest(request.ID, true, "", seller)
		if KindOf(err) != KindConflict {
			t.Errorf("expected conflict, got %v", err)
		}
	})

	t.Run("only the owning seller or an admin may process", func(t *testing.T) {
		_, service, _, request := openRequest(nil, sellerID)

		otherSeller := Actor{ID: uuid.New(), Role: models.RoleSeller}
		if _, err := service.ProcessReturnRequest(request.ID, true, "", otherSeller); KindOf(err) != KindForbidden {
			t.Errorf("other seller: expected forbidden, got %v", err)
		}
		if _, err := service.ProcessReturnRequest(request.ID, true, "", customer); KindOf(err) != KindForbidden {
			t.Errorf("customer: expected forbidden, got %v", err)
		}
		if _, err := service.ProcessReturnRequest(request.ID, false, "admin decision", admin); err != nil {
			t.Errorf("admin: unexpected error %v", err)
		}
	})

	t.Run("failed line refund aborts the approval", func(t *testing.T) {
		store, service, order, request := openRequest(&fakePayments{fail: true}, sellerID)

		_, err := service.ProcessReturnRequest(request.ID, true, "", seller)
		if KindOf(err) != KindStorage {
			t.Fatalf("expected storage error, got %v", err)
		}

		stored, _ := store.LoadOrder(order.ID)
		if stored.Items[0].Status != models.ItemStatusDelivered {
			t.Errorf("item status = %s, want delivered", stored.Items[0].Status)
		}
		if kept, _ := store.LoadReturnRequest(request.ID); kept.Processed {
			t.Error("request persisted as processed despite aborted refund")
		}
	})

	t.Run("unknown request reports not found", func(t *testing.T) {
		_, service, _, _ := openRequest(nil, sellerID)

		_, err := service.ProcessReturnRequest(uuid.New(), true, "", admin)
		if KindOf(err) != KindNotFound {
			t.Errorf("expected not_found, got %v", err)
		}
	})
}

func TestReturnListings(t *testing.T) {
	customerID := uuid.New()
	sellerID := uuid.New()
	customer := Actor{ID: customerID, Role: models.RoleCustomer}
	seller := Actor{ID: sellerID, Role: models.RoleSeller}
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}

	order := testOrder(customerID, sellerID)
	store := newMemStore(order)
	service := NewService(store, nil)
	deliverItem(t, service, order, order.Items[0].ID, seller)
	if _, err := service.CreateReturnRequest(order.Items[0].ID, "damaged", customer); err != nil {
		t.Fatalf("open request: %v", err)
	}

	t.Run("customer sees own requests", func(t *testing.T) {
		list, err := service.RequestsForCustomer(customer)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("len = %d, want 1", len(list))
		}
	})

	t.Run("seller sees requests touching own products", func(t *testing.T) {
		list, err := service.RequestsForSeller(seller)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("len = %d, want 1", len(list))
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		list, err := service.AllRequests(admin)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("len = %d, want 1", len(list))
		}
	})

	t.Run("customer may not use the admin listing", func(t *testing.T) {
		if _, err := service.AllRequests(customer); KindOf(err) != KindForbidden {
			t.Errorf("expected forbidden, got %v", err)
		}
	})
}
