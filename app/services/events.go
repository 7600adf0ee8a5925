package services

// Event names fired on the in-process bus. Payload-bearing events are
// optimistic hints for open views; EventStoreChanged is the payload-less,
// cross-process signal bridged from store.Watch and is the authoritative
// trigger to re-read.
const (
	EventCartUpdated       = "cart.updated"
	EventOrderUpdated      = "order.updated"
	EventAdminNotification = "admin.notification"
	EventSessionLogout     = "session.logout"
	EventStoreChanged      = "store.changed"
)
