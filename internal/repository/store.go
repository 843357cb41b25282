package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/orders"
)

// GormStore is the Postgres-backed orders.Store. Writes are serialized
// per order through the version column: every save is guarded on the
// version the order was loaded with and bumps it, so a concurrent writer
// that committed first makes this save fail with ErrStaleOrder.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) LoadOrder(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orders.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *GormStore) LoadOrderByItem(itemID uuid.UUID) (*models.Order, error) {
	var item models.OrderItem
	err := s.db.First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orders.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.LoadOrder(item.OrderID)
}

func (s *GormStore) SaveOrder(order *models.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return saveOrderTx(tx, order)
	})
}

func (s *GormStore) SaveOrderWithRequest(order *models.Order, request *models.ReturnRequest) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := saveOrderTx(tx, order); err != nil {
			return err
		}
		return tx.Save(request).Error
	})
}

func saveOrderTx(tx *gorm.DB, order *models.Order) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"status":             order.Status,
			"total_amount":       order.TotalAmount,
			"refund_id":          order.RefundID,
			"has_return_request": order.HasReturnRequest,
			"version":            order.Version + 1,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orders.ErrStaleOrder
	}
	order.Version++

	for i := range order.Items {
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) LoadReturnRequest(id uuid.UUID) (*models.ReturnRequest, error) {
	var request models.ReturnRequest
	err := s.db.First(&request, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orders.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *GormStore) OpenRequestForItem(itemID uuid.UUID) (*models.ReturnRequest, error) {
	var request models.ReturnRequest
	err := s.db.First(&request, "order_item_id = ? AND processed = false", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *GormStore) RestockItems(items []models.OrderItem) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if item.ProductID == nil {
				continue
			}
			err := tx.Model(&models.Product{}).
				Where("id = ?", *item.ProductID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) OrdersForCustomer(userID uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("placed_at desc").
		Find(&list).Error
	return list, err
}

func (s *GormStore) OrdersForSeller(sellerID uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	err := s.db.Preload("Items").
		Where("id IN (?)", s.db.Model(&models.OrderItem{}).
			Select("order_id").Where("seller_id = ?", sellerID)).
		Order("placed_at desc").
		Find(&list).Error
	return list, err
}

func (s *GormStore) AllOrders() ([]models.Order, error) {
	var list []models.Order
	err := s.db.Preload("Items").Order("placed_at desc").Find(&list).Error
	return list, err
}

func (s *GormStore) RequestsForCustomer(userID uuid.UUID) ([]models.ReturnRequest, error) {
	var list []models.ReturnRequest
	err := s.db.Preload("OrderItem").
		Where("order_id IN (?)", s.db.Model(&models.Order{}).
			Select("id").Where("user_id = ?", userID)).
		Order("requested_at desc").
		Find(&list).Error
	return list, err
}

func (s *GormStore) RequestsForSeller(sellerID uuid.UUID) ([]models.ReturnRequest, error) {
	var list []models.ReturnRequest
	err := s.db.Preload("OrderItem").
		Where("order_item_id IN (?)", s.db.Model(&models.OrderItem{}).
			Select("id").Where("seller_id = ?", sellerID)).
		Order("requested_at desc").
		Find(&list).Error
	return list, err
}

func (s *GormStore) AllRequests() ([]models.ReturnRequest, error) {
	var list []models.ReturnRequest
	err := s.db.Preload("OrderItem").Order("requested_at desc").Find(&list).Error
	return list, err
}
