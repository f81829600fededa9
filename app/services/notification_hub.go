package services

import (
	"sync"

	"github.com/address-cache/app/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// callbackEntry a registered per-level callback with its opaque id
type callbackEntry struct {
	id string
	fn models.ChangeCallback
}

// NotificationHub per-level callback registry plus a generic broadcast
// observer registry. Dispatch isolates every callback: one panicking
// consumer never prevents the remaining ones from running.
type NotificationHub struct {
	mu        sync.Mutex
	callbacks map[models.ChangeLevel][]callbackEntry
	observers []models.AddressObserver
	logger    *zap.Logger
}

// NewNotificationHub creates a new NotificationHub
func NewNotificationHub(logger *zap.Logger) *NotificationHub {
	return &NotificationHub{
		callbacks: make(map[models.ChangeLevel][]callbackEntry),
		logger:    logger,
	}
}

// RegisterCallback binds fn to the level's change event. The returned
// id unregisters it later. Callbacks run in registration order.
func (nh *NotificationHub) RegisterCallback(level models.ChangeLevel, fn models.ChangeCallback) (string, error) {
	if fn == nil {
		return "", ErrNilCallback
	}
	if !level.IsValid() {
		return "", ErrInvalidLevel
	}

	nh.mu.Lock()
	defer nh.mu.Unlock()

	id := uuid.NewString()
	nh.callbacks[level] = append(nh.callbacks[level], callbackEntry{id: id, fn: fn})

	nh.logger.Debug("registered change callback",
		zap.String("level", string(level)),
		zap.String("id", id))
	return id, nil
}

// UnregisterCallback removes the callback with the given id from the
// level, reporting whether it was registered
func (nh *NotificationHub) UnregisterCallback(level models.ChangeLevel, id string) bool {
	nh.mu.Lock()
	defer nh.mu.Unlock()

	entries := nh.callbacks[level]
	for i, entry := range entries {
		if entry.id == id {
			nh.callbacks[level] = append(entries[:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch invokes every callback registered for the level in
// registration order. A panicking callback is caught, logged and
// isolated from its siblings and from coordinator state.
func (nh *NotificationHub) Dispatch(level models.ChangeLevel, details *models.ChangeDetails) {
	nh.mu.Lock()
	entries := make([]callbackEntry, len(nh.callbacks[level]))
	copy(entries, nh.callbacks[level])
	nh.mu.Unlock()

	for _, entry := range entries {
		nh.safeInvoke(level, entry, details)
	}
}

// safeInvoke runs one callback behind a recover barrier
func (nh *NotificationHub) safeInvoke(level models.ChangeLevel, entry callbackEntry, details *models.ChangeDetails) {
	defer func() {
		if r := recover(); r != nil {
			nh.logger.Error("change callback panicked",
				zap.String("level", string(level)),
				zap.String("id", entry.id),
				zap.Any("panic", r))
		}
	}()
	entry.fn(details)
}

// Subscribe registers an observer that receives every processed update
// regardless of which level changed. Subscribing the same observer
// twice is a no-op. The observer's dynamic type must be comparable
// (use a pointer receiver); see models.AddressObserver.
func (nh *NotificationHub) Subscribe(observer models.AddressObserver) {
	if observer == nil {
		return
	}

	nh.mu.Lock()
	defer nh.mu.Unlock()

	for _, existing := range nh.observers {
		if existing == observer {
			return
		}
	}
	nh.observers = append(nh.observers, observer)
}

// Unsubscribe removes a previously subscribed observer
func (nh *NotificationHub) Unsubscribe(observer models.AddressObserver) {
	nh.mu.Lock()
	defer nh.mu.Unlock()

	for i, existing := range nh.observers {
		if existing == observer {
			nh.observers = append(nh.observers[:i], nh.observers[i+1:]...)
			return
		}
	}
}

// Broadcast notifies every observer of a processed update. Observers
// are isolated from each other the same way callbacks are.
func (nh *NotificationHub) Broadcast(current *models.BrazilianStandardAddress, changedLevels []models.ChangeLevel) {
	nh.mu.Lock()
	observers := make([]models.AddressObserver, len(nh.observers))
	copy(observers, nh.observers)
	nh.mu.Unlock()

	for _, observer := range observers {
		nh.safeBroadcast(observer, current, changedLevels)
	}
}

// safeBroadcast runs one observer behind a recover barrier
func (nh *NotificationHub) safeBroadcast(observer models.AddressObserver, current *models.BrazilianStandardAddress, changedLevels []models.ChangeLevel) {
	defer func() {
		if r := recover(); r != nil {
			nh.logger.Error("address observer panicked", zap.Any("panic", r))
		}
	}()
	observer.OnAddressUpdate(current, changedLevels)
}

// CallbackCount returns how many callbacks are registered for the level
func (nh *NotificationHub) CallbackCount(level models.ChangeLevel) int {
	nh.mu.Lock()
	defer nh.mu.Unlock()
	return len(nh.callbacks[level])
}
