package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/orders"
	"github.com/example/bazaar/internal/services"
)

// ReturnHandler exposes the return-request ledger.
type ReturnHandler struct {
	db       *gorm.DB
	service  *orders.Service
	telegram *services.TelegramService
}

// NewReturnHandler constructs ReturnHandler.
func NewReturnHandler(db *gorm.DB, service *orders.Service, telegram *services.TelegramService) *ReturnHandler {
	return &ReturnHandler{db: db, service: service, telegram: telegram}
}

type createReturnRequest struct {
	OrderItemID uuid.UUID `json:"order_item_id"`
	Reason      string    `json:"reason"`
}

// CreateReturn opens a return request for one delivered item.
func (h *ReturnHandler) CreateReturn(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	var req createReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.OrderItemID == uuid.Nil {
		return fiber.NewError(fiber.StatusBadRequest, "order_item_id is required")
	}

	request, err := h.service.CreateReturnRequest(req.OrderItemID, req.Reason, actor)
	if err != nil {
		return workflowError(err)
	}

	if h.telegram != nil {
		h.notifyCreated(request)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": request})
}

type processReturnRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes"`
}

// ProcessReturn resolves an open return request as the owning seller or
// an admin.
func (h *ReturnHandler) ProcessReturn(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req processReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.service.ProcessReturnRequest(requestID, req.Approved, req.Notes, actor)
	if err != nil {
		return workflowError(err)
	}

	if h.telegram != nil {
		h.notifyProcessed(request)
	}

	return c.JSON(fiber.Map{"success": true, "data": request})
}

// ListMyReturns lists the caller's own return requests.
func (h *ReturnHandler) ListMyReturns(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	list, err := h.service.RequestsForCustomer(actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": list})
}

// ListSellerReturns lists requests touching the caller's products.
func (h *ReturnHandler) ListSellerReturns(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	list, err := h.service.RequestsForSeller(actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": list})
}

// ListAllReturns lists every return request for the admin dashboard.
func (h *ReturnHandler) ListAllReturns(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	list, err := h.service.AllRequests(actor)
	if err != nil {
		return workflowError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": list})
}

func (h *ReturnHandler) notifyCreated(request *models.ReturnRequest) {
	order, item, err := h.loadContext(request)
	if err != nil {
		log.Printf("[Returns] notification lookup failed: %v", err)
		return
	}
	go h.telegram.NotifyReturnRequest(order.OrderNumber, item.ProductName, request.Reason)
}

func (h *ReturnHandler) notifyProcessed(request *models.ReturnRequest) {
	order, item, err := h.loadContext(request)
	if err != nil {
		log.Printf("[Returns] notification lookup failed: %v", err)
		return
	}
	go h.telegram.NotifyReturnProcessed(order.OrderNumber, item.ProductName, request.Approved, request.ProcessorNotes)
}

func (h *ReturnHandler) loadContext(request *models.ReturnRequest) (*models.Order, *models.OrderItem, error) {
	var item models.OrderItem
	if err := h.db.First(&item, "id = ?", request.OrderItemID).Error; err != nil {
		return nil, nil, err
	}
	var order models.Order
	if err := h.db.First(&order, "id = ?", item.OrderID).Error; err != nil {
		return nil, nil, err
	}
	return &order, &item, nil
}
