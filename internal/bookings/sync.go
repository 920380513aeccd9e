package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/NikamRenuka/cabadmin/internal/models"
	"github.com/NikamRenuka/cabadmin/internal/observability"
)

var (
	// ErrUnknownBooking is returned for mutations against an ID not in the cache.
	ErrUnknownBooking = errors.New("bookings: unknown booking")
	// ErrInvalidTransition is returned when a mutation is not allowed from the
	// booking's current status.
	ErrInvalidTransition = errors.New("bookings: invalid status transition")
)

// Backend is the subset of the upstream client the synchronizer needs.
type Backend interface {
	Bookings(ctx context.Context) ([]models.Booking, error)
	UpdateBooking(ctx context.Context, id string, status models.BookingStatus, driverName string) error
}

// Dispatcher pushes a mutated booking to connected dashboard sessions.
type Dispatcher interface {
	BookingUpdated(b models.Booking)
}

// Auditor records booking mutations on the event stream.
type Auditor interface {
	PublishBookingEvent(ev models.BookingEvent) error
}

// Summary is the headline counters shown above the booking table.
type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
}

// Synchronizer keeps a local mirror of the backend booking collection
// consistent under a text filter and point mutations, without re-fetching the
// whole collection after every change.
type Synchronizer struct {
	Backend  Backend
	Dispatch Dispatcher // optional
	Audit    Auditor    // optional

	mu      sync.RWMutex
	items   []models.Booking
	index   map[string]int
	loading bool
	loaded  bool
}

func NewSynchronizer(backend Backend) *Synchronizer {
	return &Synchronizer{Backend: backend, index: make(map[string]int), loading: true}
}

// Load replaces the mirror with one full read of the backend collection.
// The loading flag clears on completion whether or not the read succeeded;
// on failure the previous mirror (possibly empty) is kept.
func (s *Synchronizer) Load(ctx context.Context) error {
	items, err := s.Backend.Bookings(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}
	s.items = items
	s.index = make(map[string]int, len(items))
	for i, b := range items {
		s.index[b.ID] = i
	}
	s.loaded = true
	observability.BookingsLoaded.Set(float64(len(items)))
	return nil
}

// Loading reports whether the initial load is still outstanding.
func (s *Synchronizer) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Snapshot returns a copy of the full mirror.
func (s *Synchronizer) Snapshot() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Booking, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns one booking by ID.
func (s *Synchronizer) Get(id string) (models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.Booking{}, false
	}
	return s.items[i], true
}

// Filter returns the bookings whose customer name, phone, pickup, drop or
// driver name contains the query as a case-insensitive substring. A pure
// function of the mirror; an empty query matches everything.
func (s *Synchronizer) Filter(query string) []models.Booking {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Booking, 0, len(s.items))
	for _, b := range s.items {
		if matchesQuery(b, q) {
			out = append(out, b)
		}
	}
	return out
}

func matchesQuery(b models.Booking, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.CustomerName), q) ||
		strings.Contains(strings.ToLower(b.Phone), q) ||
		strings.Contains(strings.ToLower(b.Pickup), q) ||
		strings.Contains(strings.ToLower(b.Drop), q) ||
		(b.DriverName != "" && strings.Contains(strings.ToLower(b.DriverName), q))
}

// Summarize counts the filtered view for the stat cards.
func Summarize(items []models.Booking) Summary {
	sum := Summary{Total: len(items)}
	for _, b := range items {
		switch b.Status {
		case models.StatusPending:
			sum.Pending++
		case models.StatusConfirmed:
			sum.Confirmed++
		}
	}
	return sum
}

// AllocateDriver confirms a pending booking with the given driver, or
// re-edits the driver on an already confirmed one. The backend write happens
// first; only on success is the single cache entry patched in place, leaving
// every other entry untouched.
func (s *Synchronizer) AllocateDriver(ctx context.Context, id, driverName string) (models.Booking, error) {
	if driverName == "" {
		return models.Booking{}, fmt.Errorf("bookings: driver name required")
	}
	cur, ok := s.Get(id)
	if !ok {
		return models.Booking{}, fmt.Errorf("%w: %s", ErrUnknownBooking, id)
	}
	if cur.Status != models.StatusPending && cur.Status != models.StatusConfirmed {
		return models.Booking{}, fmt.Errorf("%w: allocate from %s", ErrInvalidTransition, cur.Status)
	}
	if err := s.Backend.UpdateBooking(ctx, id, models.StatusConfirmed, driverName); err != nil {
		return models.Booking{}, err
	}
	updated := s.patch(id, func(b *models.Booking) {
		b.Status = models.StatusConfirmed
		b.DriverName = driverName
	})
	s.emit(updated)
	return updated, nil
}

// Reject cancels a pending booking. The allocated driver field, if any, is
// left as-is.
func (s *Synchronizer) Reject(ctx context.Context, id string) (models.Booking, error) {
	cur, ok := s.Get(id)
	if !ok {
		return models.Booking{}, fmt.Errorf("%w: %s", ErrUnknownBooking, id)
	}
	if cur.Status != models.StatusPending {
		return models.Booking{}, fmt.Errorf("%w: reject from %s", ErrInvalidTransition, cur.Status)
	}
	if err := s.Backend.UpdateBooking(ctx, id, models.StatusCancelled, ""); err != nil {
		return models.Booking{}, err
	}
	updated := s.patch(id, func(b *models.Booking) {
		b.Status = models.StatusCancelled
	})
	s.emit(updated)
	return updated, nil
}

func (s *Synchronizer) patch(id string, fn func(*models.Booking)) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return models.Booking{}
	}
	fn(&s.items[i])
	return s.items[i]
}

// emit fans the mutation out to websocket sessions and the audit stream,
// best-effort on both.
func (s *Synchronizer) emit(b models.Booking) {
	observability.BookingMutationsTotal.WithLabelValues(string(b.Status)).Inc()
	if s.Dispatch != nil {
		s.Dispatch.BookingUpdated(b)
	}
	if s.Audit != nil {
		_ = s.Audit.PublishBookingEvent(models.BookingEvent{
			BookingID:  b.ID,
			Status:     b.Status,
			DriverName: b.DriverName,
			At:         time.Now(),
		})
	}
}
