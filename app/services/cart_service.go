package services

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/pkg/collection"
	"github.com/shashiranjanraj/mandi/pkg/event"
	"github.com/shashiranjanraj/mandi/pkg/logger"
	"github.com/shashiranjanraj/mandi/pkg/metrics"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

// CartService maintains the working cart: the set of product lines a user
// intends to order. Every mutation is one atomic store write followed by a
// cart.updated broadcast.
type CartService struct {
	store store.Store
}

func NewCartService(st store.Store) *CartService {
	return &CartService{store: st}
}

// Cart returns the persisted cart lines. An absent, corrupt or malformed
// value degrades to an empty cart; a legacy bare-object value (written by
// very old clients as a single item rather than a list) is wrapped into a
// one-line cart.
func (s *CartService) Cart() []models.CartItem {
	raw, ok := s.store.Read(store.KeyCart)
	if !ok {
		return nil
	}

	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}

	var single models.CartItem
	if err := json.Unmarshal(raw, &single); err == nil {
		return []models.CartItem{single}
	}

	logger.Warn("cart: malformed stored value, starting empty")
	return nil
}

// AddToCart adds the product, or bumps its quantity by one if a line for the
// same product already exists. Returns the updated cart.
func (s *CartService) AddToCart(p models.Product) ([]models.CartItem, error) {
	id := p.Identity()
	if id == "" {
		return nil, ErrInvalidProduct
	}

	items := s.Cart()
	found := false
	for i := range items {
		if items[i].Identity() == id {
			items[i].Quantity++
			found = true
			break
		}
	}

	if !found {
		items = append(items, models.CartItem{
			ProductID: id,
			MongoID:   p.MongoID,
			LegacyID:  p.LegacyID,
			Name:      p.Name,
			Price:     p.Price,
			Unit:      p.Unit,
			Quantity:  1,
			Stock:     p.Stock,
			AddedAt:   time.Now().UTC(),
		})
	}

	if err := s.save(items); err != nil {
		return nil, err
	}
	metrics.CartOps.WithLabelValues("add").Inc()
	return items, nil
}

// UpdateQuantity replaces the quantity of the matching line. Quantities below
// one are rejected: callers remove the line explicitly instead. An unknown
// product id is a silent no-op.
func (s *CartService) UpdateQuantity(productID string, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	items := s.Cart()
	matched := false
	for i := range items {
		if items[i].Identity() == productID {
			items[i].Quantity = quantity
			matched = true
			break
		}
	}
	if !matched {
		// Nothing changed, so nothing is written or broadcast.
		return items, nil
	}

	if err := s.save(items); err != nil {
		return nil, err
	}
	metrics.CartOps.WithLabelValues("update").Inc()
	return items, nil
}

// RemoveFromCart drops the matching line. Removing an absent id is not an
// error; the call is idempotent.
func (s *CartService) RemoveFromCart(productID string) ([]models.CartItem, error) {
	items := collection.Reject(s.Cart(), func(it models.CartItem) bool {
		return it.Identity() == productID
	})

	if err := s.save(items); err != nil {
		return nil, err
	}
	metrics.CartOps.WithLabelValues("remove").Inc()
	return items, nil
}

// ClearCart deletes the cart key entirely.
func (s *CartService) ClearCart() error {
	if err := s.store.Remove(store.KeyCart); err != nil {
		return err
	}
	metrics.CartOps.WithLabelValues("clear").Inc()
	event.Fire(EventCartUpdated, []models.CartItem(nil))
	return nil
}

// Count is the total quantity across all lines.
func (s *CartService) Count() int {
	total := 0
	for _, it := range s.Cart() {
		q := it.Quantity
		if q < 1 {
			q = 1
		}
		total += q
	}
	return total
}

// Total is Σ price×quantity over the cart.
func (s *CartService) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Cart() {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Item looks up a single line by product id.
func (s *CartService) Item(productID string) (models.CartItem, bool) {
	return collection.First(s.Cart(), func(it models.CartItem) bool {
		return it.Identity() == productID
	})
}

func (s *CartService) save(items []models.CartItem) error {
	if err := s.store.Write(store.KeyCart, items); err != nil {
		return err
	}
	event.Fire(EventCartUpdated, items)
	return nil
}
