package orders

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
)

// CreateReturnRequest opens a return dispute for one delivered item on
// behalf of the order's owning customer. At most one open request may
// exist per item.
func (s *Service) CreateReturnRequest(itemID uuid.UUID, reason string, actor Actor) (*models.ReturnRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errValidation("return reason must not be empty")
	}

	order, err := s.store.LoadOrderByItem(itemID)
	if err != nil {
		return nil, errStorage(err)
	}

	if !actor.IsCustomer() || order.UserID != actor.ID {
		return nil, errForbidden("you can only return items from your own orders")
	}

	item := findItem(order, itemID)
	if item == nil {
		return nil, ErrItemNotFound
	}

	if item.Status != models.ItemStatusDelivered {
		return nil, errInvalidTransition("only delivered items can be returned, item is %q", item.Status)
	}

	open, err := s.store.OpenRequestForItem(itemID)
	if err != nil {
		return nil, errStorage(err)
	}
	if open != nil || item.HasReturnRequest {
		return nil, errConflict("a return request for this item is already pending")
	}

	request := &models.ReturnRequest{
		OrderItemID: item.ID,
		OrderID:     order.ID,
		Reason:      reason,
		RequestedAt: now(),
	}

	item.HasReturnRequest = true
	order.HasReturnRequest = true

	if err := s.store.SaveOrderWithRequest(order, request); err != nil {
		return nil, errStorage(err)
	}

	log.Printf("[Returns] request %s opened for item %s of order %s", request.ID, item.ID, order.OrderNumber)
	return request, nil
}

// ProcessReturnRequest resolves an open request. The processor must be
// the seller owning the disputed item's product, or an admin.
//
// Approval moves the item to returned, refunds its line and, once every
// item in the order is returned or canceled, cascades the order status
// to refunded. Rejection records the decision and clears the pending
// marker while keeping the request row for history.
func (s *Service) ProcessReturnRequest(requestID uuid.UUID, approved bool, notes string, actor Actor) (*models.ReturnRequest, error) {
	request, err := s.store.LoadReturnRequest(requestID)
	if err != nil {
		return nil, errStorage(err)
	}
	if request.Processed {
		return nil, errConflict("return request has already been processed")
	}

	order, err := s.store.LoadOrderByItem(request.OrderItemID)
	if err != nil {
		return nil, errStorage(err)
	}

	item := findItem(order, request.OrderItemID)
	if item == nil {
		return nil, ErrItemNotFound
	}

	switch {
	case actor.IsAdmin():
	case actor.IsSeller() && item.OwnedBySeller(actor.ID):
	default:
		return nil, errForbidden("return request does not involve your product")
	}

	processedAt := now()
	request.Processed = true
	request.Approved = approved
	request.ProcessorNotes = notes
	request.ProcessedAt = &processedAt

	if approved {
		item.Status = models.ItemStatusReturned
		item.Refunded = true
		item.RefundedAt = &processedAt
		item.RefundReason = fmt.Sprintf("return approved: %s", request.Reason)

		if err := s.refundItem(order, item); err != nil {
			return nil, err
		}

		order.Status = DeriveOrderStatus(order)
		order.HasReturnRequest = hasOpenRequest(order)
	} else {
		// Item stays delivered; clearing the marker lets the customer
		// file a fresh request later.
		item.HasReturnRequest = false
		order.HasReturnRequest = hasOpenRequest(order)
	}

	if err := s.store.SaveOrderWithRequest(order, request); err != nil {
		return nil, errStorage(err)
	}

	if approved {
		if err := s.store.RestockItems([]models.OrderItem{*item}); err != nil {
			log.Printf("[Returns] restock after approval of request %s failed: %v", request.ID, err)
		}
	}

	log.Printf("[Returns] request %s processed by %s (%s), approved=%t", request.ID, actor.ID, actor.Role, approved)
	return request, nil
}

// refundItem reverses one line of the charge. When the whole order has
// collapsed to returned/canceled lines the refund reference is recorded
// on the order as well.
func (s *Service) refundItem(order *models.Order, item *models.OrderItem) error {
	if s.payments == nil || order.PaymentID == "" {
		return nil
	}
	description := fmt.Sprintf("refund for item %s of order %s", item.ProductName, order.OrderNumber)
	refundID, err := s.payments.PartialRefund(order.PaymentID, item.LineTotal, description)
	if err != nil {
		return &Error{Kind: KindStorage, Message: "payment refund failed", Err: err}
	}
	if order.RefundID == "" {
		order.RefundID = refundID
	}
	return nil
}

// hasOpenRequest reports whether any item in the order still carries a
// pending return request after the current mutation.
func hasOpenRequest(order *models.Order) bool {
	for _, item := range order.Items {
		if item.HasReturnRequest && item.Status != models.ItemStatusReturned {
			return true
		}
	}
	return false
}

// RequestsForCustomer lists the actor's own return requests.
func (s *Service) RequestsForCustomer(actor Actor) ([]models.ReturnRequest, error) {
	list, err := s.store.RequestsForCustomer(actor.ID)
	if err != nil {
		return nil, errStorage(err)
	}
	return list, nil
}

// RequestsForSeller lists requests touching the seller's products.
func (s *Service) RequestsForSeller(actor Actor) ([]models.ReturnRequest, error) {
	if !actor.IsSeller() && !actor.IsAdmin() {
		return nil, errForbidden("seller access required")
	}
	list, err := s.store.RequestsForSeller(actor.ID)
	if err != nil {
		return nil, errStorage(err)
	}
	return list, nil
}

// AllRequests lists every return request; admin only.
func (s *Service) AllRequests(actor Actor) ([]models.ReturnRequest, error) {
	if !actor.IsAdmin() {
		return nil, errForbidden("admin access required")
	}
	list, err := s.store.AllRequests()
	if err != nil {
		return nil, errStorage(err)
	}
	return list, nil
}
