package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Notification types understood by the admin dashboard.
const (
	NotifNewOrder     = "new_order"
	NotifStatusUpdate = "order_status_update"
	NotifCancelled    = "order_cancelled"
)

// Read states of a notification.
const (
	NotifUnread = "unread"
	NotifRead   = "read"
)

// AdminNotification is one entry in the shared admin queue. The queue is
// append-only and kept newest-first. Payload fields beyond OrderID are
// type-specific and omitted when empty.
type AdminNotification struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	OrderID string `json:"orderId"`

	// new_order / order_cancelled payload
	CustomerName  string           `json:"customerName,omitempty"`
	CustomerPhone string           `json:"customerPhone,omitempty"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	DeliveryDate  string           `json:"deliveryDate,omitempty"`
	DeliveryTime  string           `json:"deliveryTime,omitempty"`

	// order_status_update payload
	OldStatus Status `json:"oldStatus,omitempty"`
	NewStatus Status `json:"newStatus,omitempty"`
	UpdatedBy string `json:"updatedBy,omitempty"`

	// order_cancelled payload
	CancelledBy string `json:"cancelledBy,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Unread reports whether the notification is still unread.
func (n AdminNotification) Unread() bool { return n.Status == NotifUnread }
