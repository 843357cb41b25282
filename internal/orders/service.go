package orders

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
)

// Service implements the order status workflow and the return-request
// ledger on top of a Store. All operations are synchronous; every
// precondition failure short-circuits before any mutation is persisted.
type Service struct {
	store    Store
	payments PaymentProvider
}

// NewService constructs the workflow service. payments may be nil when no
// payment processor is configured; refunds are then skipped.
func NewService(store Store, payments PaymentProvider) *Service {
	return &Service{store: store, payments: payments}
}

// GetOrder loads one order the actor is allowed to see: the owning
// customer, a seller with at least one item in it, or an admin.
func (s *Service) GetOrder(orderID uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := s.store.LoadOrder(orderID)
	if err != nil {
		return nil, errStorage(err)
	}

	if err := s.canView(order, actor); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) canView(order *models.Order, actor Actor) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCustomer:
		if order.UserID != actor.ID {
			return errForbidden("order does not belong to you")
		}
		return nil
	case models.RoleSeller:
		for _, item := range order.Items {
			if item.OwnedBySeller(actor.ID) {
				return nil
			}
		}
		return errForbidden("order does not contain your products")
	default:
		return errForbidden("unknown role")
	}
}

// OrdersForCustomer lists the actor's own orders, newest first.
func (s *Service) OrdersForCustomer(actor Actor) ([]models.Order, error) {
	list, err := s.store.OrdersForCustomer(actor.ID)
	if err != nil {
		return nil, errStorage(err)
	}
	return list, nil
}

// OrdersForSeller lists orders containing at least one of the seller's
// products. Admins may also call it to inspect a seller's queue.
func (s *Service) OrdersForSeller(actor Actor) ([]models.Order, error) {
	if !actor.IsSeller() && !actor.IsAdmin() {
		return nil, errForbidden("seller access required")
	}
	list, err := s.store.OrdersForSeller(actor.ID)
	if err != nil {
		return nil, errStorage(err)
	}
	return list, nil
}

// AllOrders lists every order; admin only.
func (s *Service) AllOrders(actor Actor) ([]models.Order, error) {
	if !actor.IsAdmin() {
		return nil, errForbidden("admin access required")
	}
	list, err := s.store.AllOrders()
	if err != nil {
		return nil, errStorage(err)
	}
	return list, nil
}

// ForceOrderStatus lets an admin set the order status directly. Terminal
// statuses still reject further transitions; forcing canceled behaves
// like a cancellation and settles the items and the payment.
func (s *Service) ForceOrderStatus(orderID uuid.UUID, requested models.OrderStatus, actor Actor) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, errForbidden("admin access required")
	}
	order, err := s.store.LoadOrder(orderID)
	if err != nil {
		return nil, errStorage(err)
	}

	if err := AttemptOrderTransition(order, requested, actor); err != nil {
		return nil, err
	}

	if requested == models.OrderStatusCanceled {
		return s.cancel(order, actor)
	}

	order.Status = requested
	if err := s.store.SaveOrder(order); err != nil {
		return nil, errStorage(err)
	}
	return order, nil
}

// CancelOrder cancels an order on behalf of its owning customer. Only
// orders still in received state can be canceled; the payment is refunded
// and stock is restored.
func (s *Service) CancelOrder(orderID uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := s.store.LoadOrder(orderID)
	if err != nil {
		return nil, errStorage(err)
	}

	if err := AttemptOrderTransition(order, models.OrderStatusCanceled, actor); err != nil {
		return nil, err
	}

	return s.cancel(order, actor)
}

func (s *Service) cancel(order *models.Order, actor Actor) (*models.Order, error) {
	for i := range order.Items {
		if !order.Items[i].Status.Terminal() {
			order.Items[i].Status = models.ItemStatusCanceled
		}
	}
	order.Status = models.OrderStatusCanceled

	if err := s.refundOrder(order); err != nil {
		return nil, err
	}

	if err := s.store.SaveOrder(order); err != nil {
		return nil, errStorage(err)
	}

	if err := s.store.RestockItems(order.Items); err != nil {
		log.Printf("[Orders] restock after cancel of order %s failed: %v", order.ID, err)
	}

	log.Printf("[Orders] order %s canceled by %s (%s)", order.OrderNumber, actor.ID, actor.Role)
	return order, nil
}

// refundOrder reverses the full charge once. Orders placed without a
// payment reference (cash flows, tests) are skipped.
func (s *Service) refundOrder(order *models.Order) error {
	if s.payments == nil || order.PaymentID == "" || order.RefundID != "" {
		return nil
	}
	refundID, err := s.payments.Refund(order.PaymentID)
	if err != nil {
		return &Error{Kind: KindStorage, Message: "payment refund failed", Err: err}
	}
	order.RefundID = refundID
	return nil
}

// UpdateItemStatus advances one item along the fulfillment chain on
// behalf of the owning seller or an admin, then re-derives the order
// status from its items.
func (s *Service) UpdateItemStatus(orderID, itemID uuid.UUID, requested models.OrderItemStatus, actor Actor) (*models.Order, error) {
	order, err := s.store.LoadOrder(orderID)
	if err != nil {
		return nil, errStorage(err)
	}

	item := findItem(order, itemID)
	if item == nil {
		return nil, ErrItemNotFound
	}

	if err := AttemptItemTransition(item, requested, actor); err != nil {
		return nil, err
	}

	item.Status = requested
	order.Status = DeriveOrderStatus(order)

	if err := s.store.SaveOrder(order); err != nil {
		return nil, errStorage(err)
	}
	return order, nil
}

// CancelSellerItems cancels every non-terminal item of the acting seller
// in the order. The order total shrinks to the surviving lines; when
// nothing survives the whole order is canceled and refunded.
func (s *Service) CancelSellerItems(orderID uuid.UUID, actor Actor) (*models.Order, error) {
	if !actor.IsSeller() {
		return nil, errForbidden("seller access required")
	}

	order, err := s.store.LoadOrder(orderID)
	if err != nil {
		return nil, errStorage(err)
	}

	if order.Status != models.OrderStatusReceived {
		return nil, errInvalidTransition("cannot cancel items of order with status %q", order.Status)
	}

	var canceled []*models.OrderItem
	for i := range order.Items {
		item := &order.Items[i]
		if item.OwnedBySeller(actor.ID) && !item.Status.Terminal() {
			item.Status = models.ItemStatusCanceled
			canceled = append(canceled, item)
		}
	}
	if len(canceled) == 0 {
		return nil, errForbidden("order does not contain your products")
	}

	order.Status = DeriveOrderStatus(order)
	if order.Status == models.OrderStatusCanceled {
		if err := s.refundOrder(order); err != nil {
			return nil, err
		}
	} else {
		var total float64
		for _, item := range order.Items {
			if item.Status != models.ItemStatusCanceled {
				total += item.LineTotal
			}
		}
		order.TotalAmount = total

		if err := s.refundCanceledLines(order, canceled); err != nil {
			return nil, err
		}
	}

	if err := s.store.SaveOrder(order); err != nil {
		return nil, errStorage(err)
	}

	restock := make([]models.OrderItem, 0, len(canceled))
	for _, item := range canceled {
		restock = append(restock, *item)
	}
	if err := s.store.RestockItems(restock); err != nil {
		log.Printf("[Orders] restock after seller cancel of order %s failed: %v", order.ID, err)
	}
	return order, nil
}

// refundCanceledLines reverses the charge for seller-canceled lines while
// the rest of the order stays live. One partial refund covers the whole
// batch; the refund reference lands on the order like any other refund.
func (s *Service) refundCanceledLines(order *models.Order, items []*models.OrderItem) error {
	if s.payments == nil || order.PaymentID == "" {
		return nil
	}

	var amount float64
	for _, item := range items {
		amount += item.LineTotal
	}
	if amount == 0 {
		return nil
	}

	description := fmt.Sprintf("refund for canceled items of order %s", order.OrderNumber)
	refundID, err := s.payments.PartialRefund(order.PaymentID, amount, description)
	if err != nil {
		return &Error{Kind: KindStorage, Message: "payment refund failed", Err: err}
	}

	refundedAt := now()
	for _, item := range items {
		item.Refunded = true
		item.RefundedAt = &refundedAt
		item.RefundReason = "canceled by seller"
	}
	if order.RefundID == "" {
		order.RefundID = refundID
	}
	return nil
}

func findItem(order *models.Order, itemID uuid.UUID) *models.OrderItem {
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return &order.Items[i]
		}
	}
	return nil
}

func now() time.Time {
	return time.Now()
}
