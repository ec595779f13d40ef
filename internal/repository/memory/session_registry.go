package memory

import (
	"time"

	editorsession "trace-journal-be/pkg/editor/session"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRegistry holds the live editing session of each device. Sessions
// survive the device navigating around the app; only an explicit close or the
// idle TTL tears one down. Eviction calls End so debounce timers and in-flight
// save completions are neutralized even when nobody said goodbye.
type SessionRegistry struct {
	cache *cache.Cache
}

func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(key string, value interface{}) {
		if mgr, ok := value.(*editorsession.Manager); ok {
			mgr.End()
		}
	})
	return &SessionRegistry{
		cache: c,
	}
}

func (r *SessionRegistry) Put(deviceId uuid.UUID, mgr *editorsession.Manager) {
	r.cache.Set(deviceId.String(), mgr, cache.DefaultExpiration)
}

// Get returns the device's session and refreshes its idle TTL.
func (r *SessionRegistry) Get(deviceId uuid.UUID) (*editorsession.Manager, bool) {
	key := deviceId.String()
	x, found := r.cache.Get(key)
	if !found {
		return nil, false
	}
	mgr := x.(*editorsession.Manager)
	r.cache.Set(key, mgr, cache.DefaultExpiration)
	return mgr, true
}

// Remove drops the session. The eviction hook runs and calls End again,
// which is harmless; End is safe to repeat.
func (r *SessionRegistry) Remove(deviceId uuid.UUID) {
	r.cache.Delete(deviceId.String())
}

// All returns every live session, for routing incoming revisions.
func (r *SessionRegistry) All() map[uuid.UUID]*editorsession.Manager {
	items := r.cache.Items()
	out := make(map[uuid.UUID]*editorsession.Manager, len(items))
	for key, item := range items {
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		if mgr, ok := item.Object.(*editorsession.Manager); ok {
			out[id] = mgr
		}
	}
	return out
}
