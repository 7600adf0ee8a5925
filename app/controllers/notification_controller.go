package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/response"
)

type NotificationController struct {
	notify *services.NotificationService
}

func NewNotificationController(notify *services.NotificationService) *NotificationController {
	return &NotificationController{notify: notify}
}

// List returns the notification queue, newest first.
// ?unread=true narrows the list to unread entries.
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	queue := c.notify.List(unreadOnly)
	if queue == nil {
		queue = []models.AdminNotification{}
	}
	response.Success(w, map[string]interface{}{
		"notifications": queue,
		"unreadCount":   c.notify.UnreadCount(),
	})
}

// MarkRead flips one notification to read. Unknown IDs are a no-op.
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := c.notify.MarkRead(chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]int{"unreadCount": c.notify.UnreadCount()})
}
