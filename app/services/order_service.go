package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/pkg/collection"
	"github.com/shashiranjanraj/mandi/pkg/event"
	"github.com/shashiranjanraj/mandi/pkg/logger"
	"github.com/shashiranjanraj/mandi/pkg/metrics"
	"github.com/shashiranjanraj/mandi/pkg/store"
	"github.com/shashiranjanraj/mandi/pkg/validate"
)

// CheckoutInfo carries the customer and delivery details collected at
// checkout time.
type CheckoutInfo struct {
	CustomerName    string `json:"customerName"    validate:"required"`
	CustomerPhone   string `json:"customerPhone"   validate:"required"`
	DeliveryAddress string `json:"deliveryAddress" validate:"required"`
	DeliveryDate    string `json:"deliveryDate"    validate:"required"`
	DeliveryTime    string `json:"deliveryTime"    validate:"required"`
	Notes           string `json:"notes"`
}

// OrderService owns the order lifecycle: checkout, listing, status
// transitions and cancellation. Orders are immutable except for status and
// are never physically deleted. Every successful mutation also enqueues
// exactly one admin notification.
type OrderService struct {
	store  store.Store
	carts  *CartService
	notify *NotificationService
}

func NewOrderService(st store.Store, carts *CartService, notify *NotificationService) *OrderService {
	return &OrderService{store: st, carts: carts, notify: notify}
}

// Orders returns every stored order. A corrupt stored list degrades to empty.
func (s *OrderService) Orders() []models.Order {
	raw, ok := s.store.Read(store.KeyOrders)
	if !ok {
		return nil
	}

	var orders []models.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		logger.Warn("orders: malformed stored value, starting empty")
		return nil
	}
	return orders
}

// Checkout converts the current cart into an order. Prices and names are
// frozen from the cart snapshot, not re-read from the catalogue. The cart is
// cleared afterwards; if the clear fails the order still stands — there is no
// rollback on this single-writer store.
func (s *OrderService) Checkout(actor *models.User, info CheckoutInfo) (models.Order, error) {
	items := s.carts.Cart()
	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	if err := validateCheckout(info); err != nil {
		return models.Order{}, err
	}

	total := decimal.Zero
	snapshot := make([]models.CartItem, len(items))
	for i, it := range items {
		snapshot[i] = it
		total = total.Add(it.Subtotal())
	}

	order := models.Order{
		ID:              "ORD-" + uuid.NewString(),
		CustomerName:    info.CustomerName,
		CustomerPhone:   info.CustomerPhone,
		Items:           snapshot,
		Total:           total,
		DeliveryDate:    info.DeliveryDate,
		DeliveryTime:    info.DeliveryTime,
		DeliveryAddress: info.DeliveryAddress,
		Notes:           info.Notes,
		Status:          models.StatusProcessing,
		OrderDate:       time.Now().UTC(),
	}
	if actor != nil {
		order.UserID = actor.ID
		order.CustomerEmail = actor.Email
	}

	if err := s.saveAll(append(s.Orders(), order)); err != nil {
		return models.Order{}, err
	}

	if err := s.carts.ClearCart(); err != nil {
		// Accepted weak-consistency tradeoff: the order exists, the stale
		// cart will be overwritten by the next cart mutation.
		logger.Warn("checkout: cart clear failed after order write",
			"order_id", order.ID, "error", err)
	}

	s.notify.NotifyNewOrder(order)
	metrics.OrdersPlaced.Inc()
	return order, nil
}

// List returns the orders visible to the actor: admins see all, users see
// their own (by user id or customer email), a missing actor sees none.
// statusFilter narrows by status when non-empty and not "all".
func (s *OrderService) List(actor *models.User, statusFilter string) []models.Order {
	orders := s.Orders()

	if !actor.IsAdmin() {
		if actor == nil {
			return nil // fail open to "no orders", never an error
		}
		orders = collection.Filter(orders, func(o models.Order) bool {
			return o.BelongsTo(actor)
		})
	}

	if statusFilter != "" && !strings.EqualFold(statusFilter, "all") {
		want, err := models.ParseStatus(statusFilter)
		if err != nil {
			return nil
		}
		orders = collection.Filter(orders, func(o models.Order) bool {
			return o.Status == want
		})
	}
	return orders
}

// Get looks up one order by id.
func (s *OrderService) Get(id string) (models.Order, bool) {
	return collection.First(s.Orders(), func(o models.Order) bool {
		return o.ID == id
	})
}

// UpdateStatus moves an order to newStatus. Admin only; orders that are
// shipped, delivered or cancelled are locked, enforced here and not just in
// the UI.
func (s *OrderService) UpdateStatus(id string, newStatus models.Status, actor *models.User) (models.Order, error) {
	if !actor.IsAdmin() {
		return models.Order{}, ErrForbidden
	}

	return s.transition(id, func(o *models.Order) {
		now := time.Now().UTC()
		o.Status = newStatus
		o.UpdatedAt = &now
	}, func(o models.Order, old models.Status) {
		s.notify.NotifyStatusChange(o, old, newStatus, actor)
		metrics.StatusChanges.WithLabelValues(string(newStatus)).Inc()
	})
}

// Cancel sets the order to cancelled. Permitted for admins and for the
// order's owning user, under the same terminal-state guard.
func (s *OrderService) Cancel(id string, actor *models.User) (models.Order, error) {
	existing, ok := s.Get(id)
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	if !actor.IsAdmin() && !existing.BelongsTo(actor) {
		return models.Order{}, ErrForbidden
	}

	return s.transition(id, func(o *models.Order) {
		now := time.Now().UTC()
		o.Status = models.StatusCancelled
		o.CancelledAt = &now
	}, func(o models.Order, _ models.Status) {
		s.notify.NotifyCancelled(o, actor)
		metrics.StatusChanges.WithLabelValues(string(models.StatusCancelled)).Inc()
	})
}

// transition applies mutate to the order with the given id if it is still
// editable, persists the whole list, then runs after with the updated order
// and the status it moved from.
func (s *OrderService) transition(id string, mutate func(*models.Order), after func(models.Order, models.Status)) (models.Order, error) {
	orders := s.Orders()

	idx := -1
	for i := range orders {
		if orders[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return models.Order{}, ErrOrderNotFound
	}

	old := orders[idx].Status
	if !old.CanEditOrCancel() {
		return models.Order{}, fmt.Errorf("%w: order %s is %s", ErrInvalidTransition, id, old)
	}

	mutate(&orders[idx])
	if err := s.saveAll(orders); err != nil {
		return models.Order{}, err
	}

	updated := orders[idx]
	after(updated, old)
	return updated, nil
}

func (s *OrderService) saveAll(orders []models.Order) error {
	if err := s.store.Write(store.KeyOrders, orders); err != nil {
		return err
	}
	event.Fire(EventOrderUpdated, orders)
	return nil
}

// checkoutFields is the reporting order for validation failures, so the
// same bad payload always yields the same error.
var checkoutFields = []string{
	"customerName", "customerPhone", "deliveryAddress", "deliveryDate", "deliveryTime",
}

func validateCheckout(info CheckoutInfo) error {
	errs := validate.Struct(info)
	if !validate.HasErrors(errs) {
		return nil
	}
	for _, name := range checkoutFields {
		if _, bad := errs[name]; bad {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	for name := range errs {
		return fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return nil
}
