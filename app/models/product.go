package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is the add-to-cart payload coming from the catalogue side.
// Legacy clients send either a Mongo-style "_id" or a plain "id"; both are
// accepted and the first one present wins.
type Product struct {
	MongoID  string          `json:"_id,omitempty"`
	LegacyID string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Unit     string          `json:"unit,omitempty"`
	Stock    int             `json:"stock,omitempty"`
}

// Identity resolves the product's identifier, preferring "_id" over "id".
// Returns "" when the payload has neither.
func (p Product) Identity() string {
	if p.MongoID != "" {
		return p.MongoID
	}
	return p.LegacyID
}

// UnmarshalJSON tolerates numeric ids and prices sent as strings, which old
// catalogue exports still produce.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID  json.RawMessage `json:"_id"`
		LegacyID json.RawMessage `json:"id"`
		Name     string          `json:"name"`
		Price    json.RawMessage `json:"price"`
		Unit     string          `json:"unit"`
		Stock    json.RawMessage `json:"stock"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.MongoID = flexString(raw.MongoID)
	p.LegacyID = flexString(raw.LegacyID)
	p.Name = raw.Name
	p.Price = flexDecimal(raw.Price)
	p.Unit = raw.Unit
	p.Stock = flexInt(raw.Stock, 0)
	return nil
}
