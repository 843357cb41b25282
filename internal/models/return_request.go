package models

import (
	"time"

	"github.com/google/uuid"
)

// ReturnRequest is a customer dispute against a delivered order item.
// At most one unprocessed request may exist per item; once processed the
// record is immutable and kept for display history.
type ReturnRequest struct {
	BaseModel
	OrderItemID uuid.UUID  `gorm:"type:uuid;index" json:"order_item_id"`
	OrderItem   *OrderItem `json:"order_item,omitempty"`
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`

	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`

	Processed      bool       `json:"processed"`
	Approved       bool       `json:"approved"`
	ProcessorNotes string     `json:"processor_notes"`
	ProcessedAt    *time.Time `json:"processed_at"`
}

// Open reports whether the request still awaits a decision.
func (r *ReturnRequest) Open() bool {
	return !r.Processed
}
