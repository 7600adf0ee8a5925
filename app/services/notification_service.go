package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/pkg/collection"
	"github.com/shashiranjanraj/mandi/pkg/event"
	"github.com/shashiranjanraj/mandi/pkg/logger"
	"github.com/shashiranjanraj/mandi/pkg/metrics"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

// NotificationService maintains the shared admin notification queue. The
// queue is newest-first: every notification is prepended, never appended.
// Delivery is best-effort: the in-app queue is authoritative, and each entry
// is also relayed to the configured outbound channels (mail, Slack).
type NotificationService struct {
	store store.Store
}

func NewNotificationService(st store.Store) *NotificationService {
	return &NotificationService{store: st}
}

// All returns the stored queue, newest first. Corrupt data degrades to empty.
func (s *NotificationService) All() []models.AdminNotification {
	raw, ok := s.store.Read(store.KeyNotifications)
	if !ok {
		return nil
	}

	var queue []models.AdminNotification
	if err := json.Unmarshal(raw, &queue); err != nil {
		logger.Warn("notifications: malformed stored value, starting empty")
		return nil
	}
	return queue
}

// List returns the queue, optionally narrowed to unread entries.
func (s *NotificationService) List(unreadOnly bool) []models.AdminNotification {
	queue := s.All()
	if !unreadOnly {
		return queue
	}
	return collection.Filter(queue, models.AdminNotification.Unread)
}

// UnreadCount is the number of unread entries, for the dashboard badge.
func (s *NotificationService) UnreadCount() int {
	return len(s.List(true))
}

// MarkRead flips one notification to read. Marking an unknown or already
// read id is a no-op.
func (s *NotificationService) MarkRead(id string) error {
	queue := s.All()
	changed := false
	for i := range queue {
		if queue[i].ID == id && queue[i].Status != models.NotifRead {
			queue[i].Status = models.NotifRead
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.store.Write(store.KeyNotifications, queue)
}

// NotifyNewOrder records a new_order notification for the admin dashboard.
func (s *NotificationService) NotifyNewOrder(o models.Order) models.AdminNotification {
	total := o.Total
	return s.push(models.AdminNotification{
		Type:          models.NotifNewOrder,
		Title:         "New Order Received",
		Message:       fmt.Sprintf("New order #%s from %s", o.ID, o.CustomerName),
		OrderID:       o.ID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Total:         &total,
		DeliveryDate:  o.DeliveryDate,
		DeliveryTime:  o.DeliveryTime,
	})
}

// NotifyStatusChange records an order_status_update notification.
func (s *NotificationService) NotifyStatusChange(o models.Order, old, updated models.Status, actor *models.User) models.AdminNotification {
	return s.push(models.AdminNotification{
		Type:      models.NotifStatusUpdate,
		Title:     "Order Status Updated",
		Message:   fmt.Sprintf("Order #%s status changed to %s", o.ID, updated),
		OrderID:   o.ID,
		OldStatus: old,
		NewStatus: updated,
		UpdatedBy: actorName(actor, "Admin"),
	})
}

// NotifyCancelled records an order_cancelled notification.
func (s *NotificationService) NotifyCancelled(o models.Order, actor *models.User) models.AdminNotification {
	total := o.Total
	return s.push(models.AdminNotification{
		Type:          models.NotifCancelled,
		Title:         "Order Cancelled",
		Message:       fmt.Sprintf("Order #%s has been cancelled", o.ID),
		OrderID:       o.ID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Total:         &total,
		CancelledBy:   actorName(actor, "Customer"),
	})
}

// push stamps the notification, prepends it and broadcasts it. A failed
// write is logged, not returned: the order mutation it annotates has already
// committed and must stand.
func (s *NotificationService) push(n models.AdminNotification) models.AdminNotification {
	n.ID = "NTF-" + uuid.NewString()
	n.Status = models.NotifUnread
	n.CreatedAt = time.Now().UTC()

	queue := append([]models.AdminNotification{n}, s.All()...)
	if err := s.store.Write(store.KeyNotifications, queue); err != nil {
		logger.Error("notifications: write failed", "type", n.Type, "error", err)
		return n
	}

	metrics.Notifications.WithLabelValues(n.Type).Inc()
	event.Fire(EventAdminNotification, n)
	relay(n)
	return n
}

func actorName(u *models.User, fallback string) string {
	if u != nil && u.Name != "" {
		return u.Name
	}
	return fallback
}
