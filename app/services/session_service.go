package services

import (
	"errors"

	"github.com/shashiranjanraj/mandi/pkg/event"
	"github.com/shashiranjanraj/mandi/pkg/logger"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

// SessionService handles the teardown side of authentication. Token issuance
// and verification live outside this engine; all we own is the state that
// must not survive a logout.
type SessionService struct {
	store store.Store
}

func NewSessionService(st store.Store) *SessionService {
	return &SessionService{store: st}
}

// Logout deletes the cart, order and notification keys and broadcasts a
// session.logout signal so every open view resets its in-memory state.
// All keys are attempted even if one removal fails.
func (s *SessionService) Logout() error {
	var errs []error
	for _, key := range []string{store.KeyCart, store.KeyOrders, store.KeyNotifications} {
		if err := s.store.Remove(key); err != nil {
			errs = append(errs, err)
		}
	}

	event.Fire(EventSessionLogout, nil)
	logger.Info("session: state cleared on logout")
	return errors.Join(errs...)
}
