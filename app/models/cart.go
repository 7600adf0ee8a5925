package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of the working cart. Price, name and unit are frozen
// copies of the product at the moment it was added; checkout snapshots them
// again into the order, so later catalogue edits never touch history.
type CartItem struct {
	ProductID string          `json:"productId"`
	MongoID   string          `json:"_id,omitempty"`
	LegacyID  string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit,omitempty"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

// Identity resolves the item's product identifier with the same fallback
// chain used for inbound products.
func (it CartItem) Identity() string {
	if it.MongoID != "" {
		return it.MongoID
	}
	if it.LegacyID != "" {
		return it.LegacyID
	}
	return it.ProductID
}

// Subtotal is price × quantity for this line.
func (it CartItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// UnmarshalJSON decodes the persisted shape defensively: ids may be numbers,
// a non-numeric price becomes 0 and a missing or non-positive quantity
// becomes 1. A stored cart line is repaired, never rejected.
func (it *CartItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID json.RawMessage `json:"productId"`
		MongoID   json.RawMessage `json:"_id"`
		LegacyID  json.RawMessage `json:"id"`
		Name      string          `json:"name"`
		Price     json.RawMessage `json:"price"`
		Unit      string          `json:"unit"`
		Quantity  json.RawMessage `json:"quantity"`
		Stock     json.RawMessage `json:"stock"`
		AddedAt   string          `json:"addedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	it.ProductID = flexString(raw.ProductID)
	it.MongoID = flexString(raw.MongoID)
	it.LegacyID = flexString(raw.LegacyID)
	it.Name = raw.Name
	it.Price = flexDecimal(raw.Price)
	it.Unit = raw.Unit
	it.Quantity = flexInt(raw.Quantity, 1)
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	it.Stock = flexInt(raw.Stock, 0)
	if t, err := time.Parse(time.RFC3339, raw.AddedAt); err == nil {
		it.AddedAt = t
	}
	return nil
}

// ─── Flexible scalar decoding ────────────────────────────────────────────────

func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func flexDecimal(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err == nil {
		return d
	}
	return decimal.Zero
}

func flexInt(raw json.RawMessage, fallback int) int {
	if len(raw) == 0 {
		return fallback
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return fallback
}
