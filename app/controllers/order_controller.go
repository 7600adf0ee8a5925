package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/middleware"
	"github.com/shashiranjanraj/mandi/pkg/queue"
	"github.com/shashiranjanraj/mandi/pkg/response"
	"github.com/shashiranjanraj/mandi/pkg/storage"
)

type OrderController struct {
	orders *services.OrderService
	export *services.ExportService
}

func NewOrderController(orders *services.OrderService, export *services.ExportService) *OrderController {
	return &OrderController{orders: orders, export: export}
}

// Create places an order from the current cart.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var info services.CheckoutInfo
	if !decode(w, r, &info) {
		return
	}

	order, err := c.orders.Checkout(middleware.UserFromCtx(r.Context()), info)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, order)
}

// List returns the actor's orders, every order for admins. An optional
// ?status= query narrows the list to one lifecycle state.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromCtx(r.Context())
	orders := c.orders.List(actor, r.URL.Query().Get("status"))
	if orders == nil {
		orders = []models.Order{}
	}
	response.Success(w, orders)
}

// Show returns one order. Owners and admins only.
func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromCtx(r.Context())
	order, ok := c.orders.Get(chi.URLParam(r, "id"))
	if !ok {
		fail(w, r, services.ErrOrderNotFound)
		return
	}
	if !actor.IsAdmin() && !order.BelongsTo(actor) {
		fail(w, r, services.ErrForbidden)
		return
	}
	response.Success(w, order)
}

// UpdateStatus moves an order to a new lifecycle state. Admin only;
// the service enforces the role again so the rule holds without the route
// guard too.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}

	status, err := models.ParseStatus(body.Status)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "Unknown order status")
		return
	}

	order, err := c.orders.UpdateStatus(chi.URLParam(r, "id"), status, middleware.UserFromCtx(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}

// Cancel cancels an order. Admins may cancel any order, customers only
// their own, and only while the order is still editable.
func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	order, err := c.orders.Cancel(chi.URLParam(r, "id"), middleware.UserFromCtx(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}

// ExportCSV streams every order as CSV, for a quick download.
func (c *OrderController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	if err := c.export.WriteCSV(w); err != nil {
		fail(w, r, err)
	}
}

// ExportArchive queues a background job that writes the CSV snapshot to the
// configured archive disk (local or S3).
func (c *OrderController) ExportArchive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Disk string `json:"disk"`
		Path string `json:"path"`
	}
	if !decode(w, r, &body) {
		return
	}
	if !storage.Has(body.Disk) {
		response.Error(w, http.StatusUnprocessableEntity, "Unknown archive disk")
		return
	}

	job := &services.ExportOrdersJob{Disk: body.Disk, Path: body.Path}
	if err := queue.Dispatch(job); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"queued": "orders export"})
}
