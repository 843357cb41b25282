package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/orders"
	"github.com/example/bazaar/internal/services"
)

// OrderHandler exposes checkout and the order status workflow.
type OrderHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	service  *orders.Service
	payments *services.PaymentService
	telegram *services.TelegramService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, cfg *config.Config, service *orders.Service, payments *services.PaymentService, telegram *services.TelegramService) *OrderHandler {
	return &OrderHandler{db: db, cfg: cfg, service: service, payments: payments, telegram: telegram}
}

type checkoutRequest struct {
	AddressID *uuid.UUID `json:"address_id"`
}

// Checkout opens a payment session for the caller's cart. The cart is
// left intact and no stock moves here; the order is placed when the
// payment is confirmed. Without a configured processor the order is
// placed immediately.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.loadCheckoutCart(userID)
	if err != nil {
		return err
	}

	_, lines, _, _, err := buildOrderItems(cart)
	if err != nil {
		return err
	}

	metadata := map[string]string{"user_id": userID.String()}
	if req.AddressID != nil {
		if _, err := h.loadAddress(*req.AddressID, userID); err != nil {
			return err
		}
		metadata["address_id"] = req.AddressID.String()
	}

	if !h.payments.Enabled() {
		return h.placeOrder(c, userID, req.AddressID, "")
	}

	sessionID, url, err := h.payments.CreateCheckoutSession(lines, "USD",
		h.cfg.CheckoutSuccessURL, h.cfg.CheckoutCancelURL, metadata)
	if err != nil {
		log.Printf("[Orders] checkout session for user %s failed: %v", userID, err)
		return fiber.NewError(fiber.StatusBadGateway, "could not start payment session")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"checkout_session_id": sessionID,
			"checkout_url":        url,
		},
	})
}

type confirmPaymentRequest struct {
	SessionID string `json:"session_id"`
}

// ConfirmPayment places the order once Stripe reports the checkout
// session as paid. Retrying a confirmation returns the already placed
// order instead of charging the cart twice.
func (h *OrderHandler) ConfirmPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req confirmPaymentRequest
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}

	confirmation, err := h.payments.ConfirmCheckoutSession(req.SessionID)
	if err != nil {
		log.Printf("[Orders] payment confirmation for user %s failed: %v", userID, err)
		return fiber.NewError(fiber.StatusBadGateway, "could not verify payment session")
	}
	if err := confirmationBelongsTo(confirmation, userID); err != nil {
		return err
	}
	if !confirmation.Paid {
		return fiber.NewError(fiber.StatusConflict, "payment has not completed")
	}

	paymentID := confirmation.PaymentIntentID
	if paymentID == "" {
		paymentID = req.SessionID
	}

	var existing models.Order
	err = h.db.Preload("Items").
		Where("payment_id IN ?", []string{paymentID, req.SessionID}).
		First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{"success": true, "data": orderView(&existing)})
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	var addressID *uuid.UUID
	if raw := confirmation.Metadata["address_id"]; raw != "" {
		if parsed, err := uuid.Parse(raw); err == nil {
			addressID = &parsed
		}
	}

	return h.placeOrder(c, userID, addressID, paymentID)
}

// confirmationBelongsTo rejects sessions opened by another account.
func confirmationBelongsTo(confirmation *services.CheckoutConfirmation, userID uuid.UUID) error {
	if confirmation.Metadata["user_id"] != userID.String() {
		return fiber.NewError(fiber.StatusForbidden, "payment session belongs to another account")
	}
	return nil
}

// placeOrder turns the caller's cart into an order: stock is decremented
// with a guard, the order row is created, and the cart is cleared, all
// in one transaction.
func (h *OrderHandler) placeOrder(c *fiber.Ctx, userID uuid.UUID, addressID *uuid.UUID, paymentID string) error {
	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	cart, err := h.loadCheckoutCart(userID)
	if err != nil {
		return err
	}

	items, _, notifyItems, total, err := buildOrderItems(cart)
	if err != nil {
		return err
	}

	order := models.Order{
		UserID:      userID,
		OrderNumber: generateOrderNumber(),
		Status:      models.OrderStatusReceived,
		PlacedAt:    time.Now(),
		Currency:    "USD",
		TotalAmount: total,
		PaymentID:   paymentID,
		Items:       items,
	}

	if addressID != nil {
		address, err := h.loadAddress(*addressID, userID)
		if err != nil {
			return err
		}
		order.ShippingAddressID = &address.ID
		order.AddressLine = address.AddressLine
		order.Apartment = address.Apartment
		order.City = address.City
		order.District = address.District
		order.PostalCode = address.PostalCode
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			// Guarded decrement so two checkouts cannot oversell.
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusConflict,
					fmt.Sprintf("not enough stock for %s", item.ProductName))
			}
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return err
	}

	if h.telegram != nil {
		go h.telegram.NotifyNewOrder(services.OrderNotification{
			OrderNumber: order.OrderNumber,
			Items:       notifyItems,
			TotalAmount: order.TotalAmount,
			Currency:    order.Currency,
			UserName:    user.DisplayName,
			UserEmail:   user.Email,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// buildOrderItems snapshots cart lines into order items along with the
// payment lines and the admin notification. Inactive or deleted
// products fail the whole checkout.
func buildOrderItems(cart *models.Cart) ([]models.OrderItem, []services.CheckoutLine, []services.OrderItemNotification, float64, error) {
	items := make([]models.OrderItem, 0, len(cart.Items))
	lines := make([]services.CheckoutLine, 0, len(cart.Items))
	notify := make([]services.OrderItemNotification, 0, len(cart.Items))
	var total float64

	for _, cartItem := range cart.Items {
		product := cartItem.Product
		if product == nil || !product.IsActive {
			return nil, nil, nil, 0, fiber.NewError(fiber.StatusConflict, "a cart item is no longer available")
		}

		item := models.OrderItem{
			ProductID:   &product.ID,
			ProductName: product.Name,
			SellerID:    product.SellerID,
			Quantity:    cartItem.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   product.Price * float64(cartItem.Quantity),
			Status:      models.ItemStatusPending,
		}
		if product.Seller != nil {
			item.SellerName = product.Seller.DisplayName
		}
		items = append(items, item)
		total += item.LineTotal

		lines = append(lines, services.CheckoutLine{
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  cartItem.Quantity,
		})
		notify = append(notify, services.OrderItemNotification{
			Name:     product.Name,
			Seller:   item.SellerName,
			Quantity: cartItem.Quantity,
			Price:    item.LineTotal,
		})
	}
	return items, lines, notify, total, nil
}

func (h *OrderHandler) loadCheckoutCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := h.db.Preload("Items.Product.Seller").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusBadRequest, "cart is empty")
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	}
	return &cart, nil
}

func (h *OrderHandler) loadAddress(addressID, userID uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := h.db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "address not found")
		}
		return nil, err
	}
	return &address, nil
}

// ListMyOrders returns the caller's own orders.
func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	list, err := h.service.OrdersForCustomer(actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orderViews(list)})
}

// ListSellerOrders returns orders containing the caller's products.
func (h *OrderHandler) ListSellerOrders(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	list, err := h.service.OrdersForSeller(actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orderViews(list)})
}

// ListAllOrders returns every order for the admin dashboard.
func (h *OrderHandler) ListAllOrders(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	list, err := h.service.AllOrders(actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orderViews(list)})
}

// GetOrder returns one order with its derived presentation.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.service.GetOrder(orderID, actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orderView(order)})
}

// CancelOrder cancels the caller's own order while it is still received.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.service.CancelOrder(orderID, actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orderView(order)})
}

type itemStatusRequest struct {
	Status models.OrderItemStatus `json:"status"`
}

// UpdateItemStatus advances one item along the fulfillment chain.
func (h *OrderHandler) UpdateItemStatus(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var req itemStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.service.UpdateItemStatus(orderID, itemID, req.Status, actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orderView(order)})
}

// CancelSellerItems cancels all of the calling seller's items in an order.
func (h *OrderHandler) CancelSellerItems(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.service.CancelSellerItems(orderID, actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orderView(order)})
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// ForceOrderStatus lets an admin set any order status directly.
func (h *OrderHandler) ForceOrderStatus(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.service.ForceOrderStatus(orderID, req.Status, actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orderView(order)})
}

// orderView decorates an order with the derived presentation the clients
// render: per-item display status and returnability, progress, and the
// items grouped by seller.
func orderView(order *models.Order) fiber.Map {
	items := make([]fiber.Map, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		display := orders.DisplayItemStatus(item)
		items = append(items, fiber.Map{
			"item":           item,
			"display_status": display,
			"status_label":   orders.ItemStatusLabel(display),
			"status_color":   orders.ItemStatusColor(display),
			"progress":       orders.ItemProgress(display),
			"can_return":     orders.CanReturnItem(item),
		})
	}

	groups := orders.GroupItemsBySeller(order)
	sellerGroups := make([]fiber.Map, 0, len(groups))
	for name, groupItems := range groups {
		sellerGroups = append(sellerGroups, fiber.Map{
			"seller_name": name,
			"items":       groupItems,
		})
	}

	return fiber.Map{
		"order":         order,
		"status_label":  orders.OrderStatusLabel(order.Status),
		"status_color":  orders.OrderStatusColor(order.Status),
		"progress":      orders.OrderProgress(order),
		"items":         items,
		"seller_groups": sellerGroups,
	}
}

func orderViews(list []models.Order) []fiber.Map {
	views := make([]fiber.Map, 0, len(list))
	for i := range list {
		views = append(views, orderView(&list[i]))
	}
	return views
}

// workflowError maps the workflow error taxonomy onto HTTP statuses.
func workflowError(err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return err
	}

	switch orders.KindOf(err) {
	case orders.KindValidation:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case orders.KindForbidden:
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case orders.KindConflict:
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case orders.KindInvalidTransition:
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case orders.KindNotFound:
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}

func actorFromCtx(c *fiber.Ctx) (orders.Actor, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return orders.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	role, ok := middleware.GetCurrentUserRole(c)
	if !ok {
		return orders.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return orders.Actor{ID: userID, Role: role}, nil
}

func generateOrderNumber() string {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return fmt.Sprintf("ORD-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("ORD-%s-%06d", time.Now().Format("20060102"), n.Int64())
}
