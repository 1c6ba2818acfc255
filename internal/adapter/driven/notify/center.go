package notify

import (
	"context"
	"sync"

	"github.com/Wyydra/speakerbox/internal/core/domain"
)

type subscription struct {
	id       uint64
	name     domain.NotificationName
	observer domain.Observer
}

// Center delivers named notifications to subscribers synchronously, in the
// order they subscribed. Observers run without the center's lock held and
// may subscribe or cancel from inside a delivery.
type Center struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func NewCenter() *Center {
	return &Center{}
}

// Subscribe registers observer for notifications named name. cancel may be
// called any number of times.
func (c *Center) Subscribe(name domain.NotificationName, observer domain.Observer) (cancel func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, name: name, observer: observer})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.remove(id) })
	}
}

func (c *Center) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return
		}
	}
}

func (c *Center) Post(ctx context.Context, n domain.Notification) {
	c.mu.RLock()
	targets := make([]subscription, 0, len(c.subs))
	for _, s := range c.subs {
		if s.name == n.Name {
			targets = append(targets, s)
		}
	}
	c.mu.RUnlock()

	for _, s := range targets {
		if !c.active(s.id) {
			continue
		}
		s.observer(ctx, n)
	}
}

func (c *Center) active(id uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, s := range c.subs {
		if s.id == id {
			return true
		}
	}
	return false
}
