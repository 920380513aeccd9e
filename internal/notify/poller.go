package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/NikamRenuka/cabadmin/internal/models"
	"github.com/NikamRenuka/cabadmin/internal/observability"
)

// Backend is the subset of the upstream client the poller needs.
type Backend interface {
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// Broadcaster receives unread-count changes for push delivery.
type Broadcaster interface {
	UnreadCount(n int)
}

// Poller refreshes the notification list from the backend on a fixed
// interval and mirrors read-flag updates locally without a re-fetch.
type Poller struct {
	Backend   Backend
	Interval  time.Duration
	Logger    *slog.Logger
	Broadcast Broadcaster // optional

	mu         sync.RWMutex
	items      []models.Notification
	lastUnread int
	seen       bool
}

func NewPoller(backend Backend, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{Backend: backend, Interval: interval, Logger: logger, lastUnread: -1}
}

// Run polls until the context is cancelled. The first poll happens
// immediately; the ticker is torn down on exit so no timer outlives the
// poller.
func (p *Poller) Run(ctx context.Context) {
	p.pollOnce(ctx)
	t := time.NewTicker(p.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	items, err := p.Backend.Notifications(ctx)
	if ctx.Err() != nil {
		// shut down while the fetch was in flight; discard the result
		return
	}
	if err != nil {
		observability.NotificationPollsTotal.WithLabelValues("error").Inc()
		p.Logger.Warn("notification poll failed", "error", err)
		return
	}
	observability.NotificationPollsTotal.WithLabelValues("ok").Inc()

	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}

	p.mu.Lock()
	p.items = items
	p.seen = true
	changed := unread != p.lastUnread
	p.lastUnread = unread
	p.mu.Unlock()

	observability.NotificationsUnread.Set(float64(unread))
	if changed && p.Broadcast != nil {
		p.Broadcast.UnreadCount(unread)
	}
}

// Snapshot returns a copy of the current list, optionally narrowed to
// "read" or "unread".
func (p *Poller) Snapshot(filter string) []models.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Notification, 0, len(p.items))
	for _, n := range p.items {
		switch filter {
		case "read":
			if !n.Read {
				continue
			}
		case "unread":
			if n.Read {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// UnreadCount returns the unread total from the last successful poll.
func (p *Poller) UnreadCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.lastUnread < 0 {
		return 0
	}
	return p.lastUnread
}

// MarkRead flips the read flag on the backend and, only on success, in the
// local mirror. The rest of the list is untouched.
func (p *Poller) MarkRead(ctx context.Context, id string) error {
	if err := p.Backend.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	p.mu.Lock()
	unread := 0
	for i := range p.items {
		if p.items[i].ID == id {
			p.items[i].Read = true
		}
		if !p.items[i].Read {
			unread++
		}
	}
	changed := unread != p.lastUnread
	p.lastUnread = unread
	p.mu.Unlock()

	observability.NotificationsUnread.Set(float64(unread))
	if changed && p.Broadcast != nil {
		p.Broadcast.UnreadCount(unread)
	}
	return nil
}
