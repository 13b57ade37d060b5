// Package notify holds transient on-screen toasts, sound cues and desktop notifications.
package notify

import (
	"sync"
	"time"

	"pinned/internal/models"
)

// ToastLifetime is how long a toast stays visible
const ToastLifetime = 3 * time.Second

type Toast struct {
	models.Notification
	ID      int
	Expires time.Time
}

// Toasts is a queue of visible notifications. Safe for concurrent use.
type Toasts struct {
	mu       sync.Mutex
	items    []Toast
	nextID   int
	lifetime time.Duration
	max      int
}

// NewToasts keeps at most limit toasts; older ones are dropped first
func NewToasts(limit int) *Toasts {
	if limit <= 0 {
		limit = 3
	}
	return &Toasts{lifetime: ToastLifetime, max: limit}
}

// Push adds n and returns the toast with its expiry
func (q *Toasts) Push(n models.Notification) Toast {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	t := Toast{Notification: n, ID: q.nextID, Expires: n.At.Add(q.lifetime)}
	q.items = append(q.items, t)
	if len(q.items) > q.max {
		q.items = q.items[len(q.items)-q.max:]
	}
	return t
}

// Dismiss removes a toast by id
func (q *Toasts) Dismiss(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Active drops expired toasts and returns the rest, oldest first
func (q *Toasts) Active(now time.Time) []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	for _, t := range q.items {
		if now.Before(t.Expires) {
			kept = append(kept, t)
		}
	}
	q.items = kept
	return append([]Toast(nil), kept...)
}
