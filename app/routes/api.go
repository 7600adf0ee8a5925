package routes

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/mandi/app/controllers"
	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/metrics"
	"github.com/shashiranjanraj/mandi/pkg/middleware"
	"github.com/shashiranjanraj/mandi/pkg/router"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

// RegisterAPI mounts every route of the commerce engine.
func RegisterAPI(r *router.Router, st store.Store) {
	carts := services.NewCartService(st)
	notify := services.NewNotificationService(st)
	orders := services.NewOrderService(st, carts, notify)
	export := services.NewExportService(orders)
	sessions := services.NewSessionService(st)

	cartCtrl := controllers.NewCartController(carts)
	orderCtrl := controllers.NewOrderController(orders, export)
	notifCtrl := controllers.NewNotificationController(notify)
	sessionCtrl := controllers.NewSessionController(sessions)
	streamCtrl := controllers.NewStreamController()

	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")
	api.Post("/login", "session.login", sessionCtrl.Login, middleware.RateLimit(20, time.Minute))

	protected := api.Group("", middleware.Auth)

	protected.Post("/logout", "session.logout", sessionCtrl.Logout)

	protected.Get("/cart", "cart.show", cartCtrl.Show)
	protected.Post("/cart/items", "cart.add", cartCtrl.Add)
	protected.Put("/cart/items/{id}", "cart.update", cartCtrl.UpdateQuantity)
	protected.Delete("/cart/items/{id}", "cart.remove", cartCtrl.Remove)
	protected.Delete("/cart", "cart.clear", cartCtrl.Clear)

	protected.Post("/orders", "orders.create", orderCtrl.Create)
	protected.Get("/orders", "orders.list", orderCtrl.List)
	protected.Get("/orders/{id}", "orders.show", orderCtrl.Show)
	protected.Post("/orders/{id}/cancel", "orders.cancel", orderCtrl.Cancel)

	admin := protected.Group("/admin", middleware.RequireAdmin)
	admin.Put("/orders/{id}/status", "admin.orders.status", orderCtrl.UpdateStatus)
	admin.Get("/orders/export.csv", "admin.orders.export", orderCtrl.ExportCSV)
	admin.Post("/orders/export", "admin.orders.archive", orderCtrl.ExportArchive)
	admin.Get("/notifications", "admin.notifications", notifCtrl.List)
	admin.Put("/notifications/{id}/read", "admin.notifications.read", notifCtrl.MarkRead)
	admin.Get("/events", "admin.events", streamCtrl.SSE)
	admin.Get("/ws", "admin.ws", streamCtrl.WS)
}
