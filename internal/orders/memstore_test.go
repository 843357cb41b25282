package orders

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
)

// memStore is an in-memory Store with the same staleness semantics as
// the database-backed one: saves are guarded on the version the order
// was loaded with.
type memStore struct {
	orders   map[uuid.UUID]*models.Order
	requests map[uuid.UUID]*models.ReturnRequest
	restocks [][]models.OrderItem
}

func newMemStore(seed ...*models.Order) *memStore {
	s := &memStore{
		orders:   make(map[uuid.UUID]*models.Order),
		requests: make(map[uuid.UUID]*models.ReturnRequest),
	}
	for _, order := range seed {
		s.orders[order.ID] = copyOrder(order)
	}
	return s
}

func copyOrder(order *models.Order) *models.Order {
	clone := *order
	clone.Items = make([]models.OrderItem, len(order.Items))
	copy(clone.Items, order.Items)
	return &clone
}

func (s *memStore) LoadOrder(id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (s *memStore) LoadOrderByItem(itemID uuid.UUID) (*models.Order, error) {
	for _, order := range s.orders {
		for _, item := range order.Items {
			if item.ID == itemID {
				return copyOrder(order), nil
			}
		}
	}
	return nil, ErrItemNotFound
}

func (s *memStore) SaveOrder(order *models.Order) error {
	stored, ok := s.orders[order.ID]
	if !ok {
		return ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return ErrStaleOrder
	}
	order.Version++
	s.orders[order.ID] = copyOrder(order)
	return nil
}

func (s *memStore) LoadReturnRequest(id uuid.UUID) (*models.ReturnRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	clone := *request
	return &clone, nil
}

func (s *memStore) SaveOrderWithRequest(order *models.Order, request *models.ReturnRequest) error {
	if err := s.SaveOrder(order); err != nil {
		return err
	}
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	clone := *request
	s.requests[request.ID] = &clone
	return nil
}

func (s *memStore) OpenRequestForItem(itemID uuid.UUID) (*models.ReturnRequest, error) {
	for _, request := range s.requests {
		if request.OrderItemID == itemID && request.Open() {
			clone := *request
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memStore) RestockItems(items []models.OrderItem) error {
	s.restocks = append(s.restocks, items)
	return nil
}

func (s *memStore) OrdersForCustomer(userID uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			list = append(list, *copyOrder(order))
		}
	}
	return list, nil
}

func (s *memStore) OrdersForSeller(sellerID uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	for _, order := range s.orders {
		for _, item := range order.Items {
			if item.OwnedBySeller(sellerID) {
				list = append(list, *copyOrder(order))
				break
			}
		}
	}
	return list, nil
}

func (s *memStore) AllOrders() ([]models.Order, error) {
	var list []models.Order
	for _, order := range s.orders {
		list = append(list, *copyOrder(order))
	}
	return list, nil
}

func (s *memStore) RequestsForCustomer(userID uuid.UUID) ([]models.ReturnRequest, error) {
	var list []models.ReturnRequest
	for _, request := range s.requests {
		order, ok := s.orders[request.OrderID]
		if ok && order.UserID == userID {
			list = append(list, *request)
		}
	}
	return list, nil
}

func (s *memStore) RequestsForSeller(sellerID uuid.UUID) ([]models.ReturnRequest, error) {
	var list []models.ReturnRequest
	for _, request := range s.requests {
		order, ok := s.orders[request.OrderID]
		if !ok {
			continue
		}
		for _, item := range order.Items {
			if item.ID == request.OrderItemID && item.OwnedBySeller(sellerID) {
				list = append(list, *request)
				break
			}
		}
	}
	return list, nil
}

func (s *memStore) AllRequests() ([]models.ReturnRequest, error) {
	var list []models.ReturnRequest
	for _, request := range s.requests {
		list = append(list, *request)
	}
	return list, nil
}

// fakePayments records refund calls instead of talking to a processor.
type fakePayments struct {
	refunds        []string
	partialRefunds []float64
	fail           bool
}

func (p *fakePayments) Refund(paymentID string) (string, error) {
	if p.fail {
		return "", fmt.Errorf("processor unavailable")
	}
	p.refunds = append(p.refunds, paymentID)
	return "re_" + paymentID, nil
}

func (p *fakePayments) PartialRefund(paymentID string, amount float64, description string) (string, error) {
	if p.fail {
		return "", fmt.Errorf("processor unavailable")
	}
	p.partialRefunds = append(p.partialRefunds, amount)
	return "re_" + paymentID, nil
}

// testOrder builds a received order for customerID with one pending item
// per seller in sellerIDs.
func testOrder(customerID uuid.UUID, sellerIDs ...uuid.UUID) *models.Order {
	order := &models.Order{
		UserID:      customerID,
		OrderNumber: "ORD-TEST-000001",
		Status:      models.OrderStatusReceived,
		PlacedAt:    time.Now(),
		Currency:    "USD",
		PaymentID:   "pi_test",
		Version:     1,
	}
	order.ID = uuid.New()

	for i, sellerID := range sellerIDs {
		sid := sellerID
		pid := uuid.New()
		item := models.OrderItem{
			OrderID:     order.ID,
			ProductID:   &pid,
			ProductName: fmt.Sprintf("Product %d", i+1),
			SellerID:    &sid,
			SellerName:  fmt.Sprintf("Seller %d", i+1),
			Quantity:    1,
			UnitPrice:   50,
			LineTotal:   50,
			Status:      models.ItemStatusPending,
		}
		item.ID = uuid.New()
		order.Items = append(order.Items, item)
		order.TotalAmount += item.LineTotal
	}
	return order
}

// deliverItem walks one item through the fulfillment chain to delivered.
func deliverItem(t interface{ Fatalf(string, ...interface{}) }, service *Service, order *models.Order, itemID uuid.UUID, seller Actor) *models.Order {
	var result *models.Order
	var err error
	for _, status := range []models.OrderItemStatus{
		models.ItemStatusPreparing,
		models.ItemStatusShipped,
		models.ItemStatusDelivered,
	} {
		result, err = service.UpdateItemStatus(order.ID, itemID, status, seller)
		if err != nil {
			t.Fatalf("advancing item to %s: %v", status, err)
		}
	}
	return result
}
