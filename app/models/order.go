package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus maps a stored or user-supplied string to a Status.
// Matching is case-insensitive: old records mix "Processing" and "processing".
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusProcessing:
		return StatusProcessing, nil
	case StatusShipped:
		return StatusShipped, nil
	case StatusDelivered:
		return StatusDelivered, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanEditOrCancel reports whether the order is still editable.
// Shipped orders are locked even though Shipped itself is not terminal.
func (s Status) CanEditOrCancel() bool {
	return s != StatusShipped && s != StatusDelivered && s != StatusCancelled
}

// UnmarshalJSON normalises mixed-case stored statuses. Unrecognised values
// are kept lowercased rather than rejected, so one odd record never makes a
// whole stored list unreadable.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if parsed, err := ParseStatus(raw); err == nil {
		*s = parsed
		return nil
	}
	*s = Status(strings.ToLower(strings.TrimSpace(raw)))
	return nil
}

// Order is a committed purchase. Everything except Status (and its timestamp)
// is immutable after checkout; orders are never physically deleted.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	Items           []CartItem      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	DeliveryDate    string          `json:"deliveryDate"`
	DeliveryTime    string          `json:"deliveryTime"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Notes           string          `json:"notes,omitempty"`
	Status          Status          `json:"status"`
	OrderDate       time.Time       `json:"orderDate"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
}

// BelongsTo reports whether the order is owned by the given user, matching
// by user id or by customer email.
func (o Order) BelongsTo(u *User) bool {
	if u == nil {
		return false
	}
	if o.UserID != "" && o.UserID == u.ID {
		return true
	}
	return o.CustomerEmail != "" && strings.EqualFold(o.CustomerEmail, u.Email)
}
