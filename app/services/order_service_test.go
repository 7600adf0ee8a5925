package services_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

func admin() *models.User {
	return &models.User{ID: "u-admin", Name: "Asha", Email: "asha@mandi.test", Role: models.RoleAdmin}
}

func customer() *models.User {
	return &models.User{ID: "u-ravi", Name: "Ravi", Email: "ravi@mandi.test", Role: models.RoleUser}
}

func checkoutInfo() services.CheckoutInfo {
	return services.CheckoutInfo{
		CustomerName:    "Ravi Traders",
		CustomerPhone:   "9876543210",
		DeliveryAddress: "Shop 14, Azadpur Mandi",
		DeliveryDate:    "2026-09-05",
		DeliveryTime:    "06:00",
	}
}

func newOrderHarness() (*services.OrderService, *services.CartService, *services.NotificationService, *store.Memory) {
	mem := store.NewMemory()
	carts := services.NewCartService(mem)
	notify := services.NewNotificationService(mem)
	return services.NewOrderService(mem, carts, notify), carts, notify, mem
}

func placeOrder(t *testing.T, orders *services.OrderService, carts *services.CartService, actor *models.User) models.Order {
	t.Helper()
	_, err := carts.AddToCart(rice())
	require.NoError(t, err)
	order, err := orders.Checkout(actor, checkoutInfo())
	require.NoError(t, err)
	return order
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	orders, carts, notify, _ := newOrderHarness()

	_, err := carts.AddToCart(rice())
	require.NoError(t, err)
	_, err = carts.AddToCart(oil())
	require.NoError(t, err)

	order, err := orders.Checkout(customer(), checkoutInfo())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.ID, "ORD-"))
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, "u-ravi", order.UserID)
	assert.Equal(t, "ravi@mandi.test", order.CustomerEmail)
	assert.Equal(t, "Ravi Traders", order.CustomerName)
	assert.False(t, order.OrderDate.IsZero())
	require.Len(t, order.Items, 2)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(310)), "total = %s", order.Total)

	assert.Empty(t, carts.Cart(), "cart must be cleared after checkout")

	queue := notify.All()
	require.Len(t, queue, 1)
	assert.Equal(t, models.NotifNewOrder, queue[0].Type)
	assert.Equal(t, order.ID, queue[0].OrderID)
	assert.Equal(t, "New Order Received", queue[0].Title)
	assert.Equal(t, "New order #"+order.ID+" from Ravi Traders", queue[0].Message)
}

func TestCheckoutFreezesCartSnapshot(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	order := placeOrder(t, orders, carts, customer())

	// The snapshot keeps the price and name the cart saw, even if the
	// catalogue changes afterwards.
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Basmati Rice 25kg", order.Items[0].Name)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(120)))
}

func TestCheckoutEmptyCart(t *testing.T) {
	orders, _, _, _ := newOrderHarness()

	_, err := orders.Checkout(customer(), checkoutInfo())
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckoutEmptyCartBeforeValidation(t *testing.T) {
	orders, _, _, _ := newOrderHarness()

	// With nothing in the cart the empty-cart check wins even when the
	// form is also unusable.
	_, err := orders.Checkout(customer(), services.CheckoutInfo{})
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckoutMissingFields(t *testing.T) {
	cases := map[string]func(*services.CheckoutInfo){
		"customerName":    func(i *services.CheckoutInfo) { i.CustomerName = "" },
		"customerPhone":   func(i *services.CheckoutInfo) { i.CustomerPhone = "  " },
		"deliveryAddress": func(i *services.CheckoutInfo) { i.DeliveryAddress = "" },
		"deliveryDate":    func(i *services.CheckoutInfo) { i.DeliveryDate = "" },
		"deliveryTime":    func(i *services.CheckoutInfo) { i.DeliveryTime = "" },
	}

	for field, blank := range cases {
		t.Run(field, func(t *testing.T) {
			orders, carts, _, _ := newOrderHarness()
			_, err := carts.AddToCart(rice())
			require.NoError(t, err)

			info := checkoutInfo()
			blank(&info)

			_, err = orders.Checkout(customer(), info)
			require.ErrorIs(t, err, services.ErrMissingField)
			assert.Contains(t, err.Error(), field)
			assert.Empty(t, orders.Orders(), "no order written on bad form")
		})
	}
}

func TestCheckoutNotesOptional(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	_, err := carts.AddToCart(rice())
	require.NoError(t, err)

	info := checkoutInfo()
	info.Notes = ""
	_, err = orders.Checkout(customer(), info)
	assert.NoError(t, err)
}

func TestCheckoutAnonymousActor(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	_, err := carts.AddToCart(rice())
	require.NoError(t, err)

	order, err := orders.Checkout(nil, checkoutInfo())
	require.NoError(t, err)
	assert.Empty(t, order.UserID)
	assert.Empty(t, order.CustomerEmail)
}

func TestListVisibility(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	mine := placeOrder(t, orders, carts, customer())
	placeOrder(t, orders, carts, &models.User{ID: "u-meena", Email: "meena@mandi.test", Role: models.RoleUser})

	all := orders.List(admin(), "")
	assert.Len(t, all, 2)

	own := orders.List(customer(), "")
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	assert.Nil(t, orders.List(nil, ""), "anonymous actor sees no orders")
}

func TestListMatchesByEmailCaseInsensitive(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	placeOrder(t, orders, carts, customer())

	// Same person, different session id, email cased differently.
	actor := &models.User{ID: "session-2", Email: "RAVI@mandi.test", Role: models.RoleUser}
	assert.Len(t, orders.List(actor, ""), 1)
}

func TestListStatusFilter(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	first := placeOrder(t, orders, carts, customer())
	placeOrder(t, orders, carts, customer())

	_, err := orders.UpdateStatus(first.ID, models.StatusShipped, admin())
	require.NoError(t, err)

	shipped := orders.List(admin(), "shipped")
	require.Len(t, shipped, 1)
	assert.Equal(t, first.ID, shipped[0].ID)

	assert.Len(t, orders.List(admin(), "Shipped"), 1, "filter is case-insensitive")
	assert.Len(t, orders.List(admin(), "all"), 2)
	assert.Nil(t, orders.List(admin(), "returned"), "unknown status matches nothing")
}

func TestGet(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	order := placeOrder(t, orders, carts, customer())

	got, ok := orders.Get(order.ID)
	require.True(t, ok)
	assert.Equal(t, order.ID, got.ID)

	_, ok = orders.Get("ORD-nope")
	assert.False(t, ok)
}

func TestUpdateStatus(t *testing.T) {
	orders, carts, notify, _ := newOrderHarness()
	order := placeOrder(t, orders, carts, customer())

	updated, err := orders.UpdateStatus(order.ID, models.StatusShipped, admin())
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, updated.Status)
	require.NotNil(t, updated.UpdatedAt)

	queue := notify.All()
	require.NotEmpty(t, queue)
	assert.Equal(t, models.NotifStatusUpdate, queue[0].Type)
	assert.Equal(t, "Order #"+order.ID+" status changed to shipped", queue[0].Message)
	assert.Equal(t, models.StatusProcessing, queue[0].OldStatus)
	assert.Equal(t, models.StatusShipped, queue[0].NewStatus)
	assert.Equal(t, "Asha", queue[0].UpdatedBy)
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	order := placeOrder(t, orders, carts, customer())

	_, err := orders.UpdateStatus(order.ID, models.StatusShipped, customer())
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = orders.UpdateStatus(order.ID, models.StatusShipped, nil)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	orders, _, _, _ := newOrderHarness()

	_, err := orders.UpdateStatus("ORD-nope", models.StatusShipped, admin())
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestUpdateStatusLockedOrder(t *testing.T) {
	for _, locked := range []models.Status{models.StatusShipped, models.StatusDelivered, models.StatusCancelled} {
		t.Run(string(locked), func(t *testing.T) {
			orders, carts, _, _ := newOrderHarness()
			order := placeOrder(t, orders, carts, customer())

			_, err := orders.UpdateStatus(order.ID, locked, admin())
			require.NoError(t, err)

			_, err = orders.UpdateStatus(order.ID, models.StatusProcessing, admin())
			assert.ErrorIs(t, err, services.ErrInvalidTransition)
		})
	}
}

func TestCancelByOwner(t *testing.T) {
	orders, carts, notify, _ := newOrderHarness()
	order := placeOrder(t, orders, carts, customer())

	cancelled, err := orders.Cancel(order.ID, customer())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	queue := notify.All()
	require.NotEmpty(t, queue)
	assert.Equal(t, models.NotifCancelled, queue[0].Type)
	assert.Equal(t, "Order #"+order.ID+" has been cancelled", queue[0].Message)
	assert.Equal(t, "Ravi", queue[0].CancelledBy)
}

func TestCancelByAdmin(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	order := placeOrder(t, orders, carts, customer())

	_, err := orders.Cancel(order.ID, admin())
	assert.NoError(t, err)
}

func TestCancelByStranger(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	order := placeOrder(t, orders, carts, customer())

	stranger := &models.User{ID: "u-x", Email: "x@mandi.test", Role: models.RoleUser}
	_, err := orders.Cancel(order.ID, stranger)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = orders.Cancel(order.ID, nil)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestCancelUnknownOrder(t *testing.T) {
	orders, _, _, _ := newOrderHarness()

	_, err := orders.Cancel("ORD-nope", customer())
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestCancelTwice(t *testing.T) {
	orders, carts, _, _ := newOrderHarness()
	order := placeOrder(t, orders, carts, customer())

	_, err := orders.Cancel(order.ID, customer())
	require.NoError(t, err)

	_, err = orders.Cancel(order.ID, customer())
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestOrdersDegradeOnGarbage(t *testing.T) {
	orders, _, _, mem := newOrderHarness()
	mem.Seed(store.KeyOrders, []byte(`{"not":"a list"`))

	assert.Empty(t, orders.Orders())
}
