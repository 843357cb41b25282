package orders

import (
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
)

// Store is the persistence collaborator the workflow runs against.
//
// Save methods must apply the read-check-write cycle of one operation
// atomically: a save based on a stale order snapshot fails with
// ErrStaleOrder instead of committing, so no two transitions on the same
// order can commit from the same snapshot. Load methods never mutate.
type Store interface {
	LoadOrder(id uuid.UUID) (*models.Order, error)
	LoadOrderByItem(itemID uuid.UUID) (*models.Order, error)
	SaveOrder(order *models.Order) error

	LoadReturnRequest(id uuid.UUID) (*models.ReturnRequest, error)
	// SaveOrderWithRequest commits the order and the return request in
	// one transaction, under the same staleness guard as SaveOrder.
	SaveOrderWithRequest(order *models.Order, request *models.ReturnRequest) error
	OpenRequestForItem(itemID uuid.UUID) (*models.ReturnRequest, error)

	// RestockItems returns the quantities of the given items to product
	// inventory. Items without a live product reference are skipped.
	RestockItems(items []models.OrderItem) error

	OrdersForCustomer(userID uuid.UUID) ([]models.Order, error)
	OrdersForSeller(sellerID uuid.UUID) ([]models.Order, error)
	AllOrders() ([]models.Order, error)

	RequestsForCustomer(userID uuid.UUID) ([]models.ReturnRequest, error)
	RequestsForSeller(sellerID uuid.UUID) ([]models.ReturnRequest, error)
	AllRequests() ([]models.ReturnRequest, error)
}

// Sentinel errors a Store implementation reports precondition failures with.
// The service translates them into the typed workflow errors.
var (
	ErrOrderNotFound   = errNotFound("order not found")
	ErrItemNotFound    = errNotFound("order item not found")
	ErrRequestNotFound = errNotFound("return request not found")
	ErrStaleOrder      = errConflict("order was modified concurrently")
)

// PaymentProvider issues refunds against the upstream payment processor.
type PaymentProvider interface {
	// Refund reverses the full charge and returns the refund reference.
	Refund(paymentID string) (string, error)
	// PartialRefund reverses amount of the charge for one order line.
	PartialRefund(paymentID string, amount float64, description string) (string, error)
}
