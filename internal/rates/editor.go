package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NikamRenuka/cabadmin/internal/observability"
)

// Status is the save-state label surfaced to the dashboard.
type Status string

const (
	StatusLoading    Status = "Loading"
	StatusReady      Status = "Ready"
	StatusLoaded     Status = "Loaded"
	StatusAutoSaving Status = "Auto Saving"
	StatusSaving     Status = "Saving"
	StatusSaved      Status = "Saved"
	StatusSaveFailed Status = "Save Failed"
	StatusLoadFailed Status = "Load Failed"
)

// ErrNoSuchRoute is returned for edits addressing a route ID or position that
// is not in the working copy.
var ErrNoSuchRoute = errors.New("rates: no such route")

const saveTimeout = 30 * time.Second

// Backend is the subset of the upstream client the editor needs.
type Backend interface {
	Rates(ctx context.Context) (json.RawMessage, error)
	SaveRates(ctx context.Context, sheet any) error
}

// Options tune the editor; zero values pick the observed production timings.
type Options struct {
	QuietPeriod time.Duration // debounce window after the last edit, default 500ms
	ResetDelay  time.Duration // Save Failed -> Ready delay, default 5s
	Logger      *slog.Logger
}

// Editor holds the working copy of the rate sheet and keeps the backend copy
// eventually consistent with local edits. Every edit (re)arms a quiet-period
// timer; when it fires the whole sheet is written as one bulk save, so bursts
// of edits collapse into a single write. Saves are serialized: at most one
// write is in flight, and edits arriving during a write get their own
// follow-up save, so no edit is ever lost to coalescing.
type Editor struct {
	backend    Backend
	logger     *slog.Logger
	quiet      time.Duration
	resetDelay time.Duration

	mu         sync.Mutex
	sheet      Sheet
	status     Status
	detail     string
	saveTimer  *time.Timer
	resetTimer *time.Timer
	saving     bool
	pending    bool
	closed     bool
}

func NewEditor(backend Backend, opts Options) *Editor {
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = 500 * time.Millisecond
	}
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Editor{
		backend:    backend,
		logger:     opts.Logger,
		quiet:      opts.QuietPeriod,
		resetDelay: opts.ResetDelay,
		status:     StatusLoading,
	}
}

// Load reads the backend sheet once. An empty object from the backend means
// the defaults template becomes the working copy verbatim; otherwise the
// saved sheet is merged over the defaults. On failure the defaults still
// become the working copy so the editor stays usable.
func (e *Editor) Load(ctx context.Context) error {
	raw, err := e.backend.Rates(ctx)
	var saved Sheet
	var present bool
	if err == nil {
		saved, present, err = ParseSheet(raw)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.sheet = Defaults()
		e.sheet.EnsureRouteIDs()
		e.setStatusLocked(StatusLoadFailed, shortReason(err))
		return fmt.Errorf("load rates: %w", err)
	}
	if !present {
		e.sheet = Defaults()
		e.sheet.EnsureRouteIDs()
		e.setStatusLocked(StatusReady, "")
		return nil
	}
	e.sheet = Merge(saved)
	e.setStatusLocked(StatusLoaded, "")
	return nil
}

// Sheet returns a deep copy of the working copy.
func (e *Editor) Sheet() Sheet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sheet.Clone()
}

// Status returns the current label and, for the failure states, the reason.
func (e *Editor) Status() (Status, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.detail
}

// SetRate updates one leaf of a flat category (perSeatRates, fixedCabRates).
func (e *Editor) SetRate(category, key string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch category {
	case "perSeatRates":
		if e.sheet.PerSeatRates == nil {
			e.sheet.PerSeatRates = map[string]float64{}
		}
		e.sheet.PerSeatRates[key] = value
	case "fixedCabRates":
		if e.sheet.FixedCabRates == nil {
			e.sheet.FixedCabRates = map[string]float64{}
		}
		e.sheet.FixedCabRates[key] = value
	default:
		return fmt.Errorf("rates: unknown scalar category %q", category)
	}
	e.scheduleLocked()
	return nil
}

// SetNestedRate updates one leaf of a two-level category (perKmRates, busRates).
func (e *Editor) SetNestedRate(category, key1, key2 string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var cat map[string]map[string]float64
	switch category {
	case "perKmRates":
		if e.sheet.PerKmRates == nil {
			e.sheet.PerKmRates = map[string]map[string]float64{}
		}
		cat = e.sheet.PerKmRates
	case "busRates":
		if e.sheet.BusRates == nil {
			e.sheet.BusRates = map[string]map[string]float64{}
		}
		cat = e.sheet.BusRates
	default:
		return fmt.Errorf("rates: unknown nested category %q", category)
	}
	if cat[key1] == nil {
		cat[key1] = map[string]float64{}
	}
	cat[key1][key2] = value
	e.scheduleLocked()
	return nil
}

// AddCustomRoute appends a placeholder custom route and returns it.
func (e *Editor) AddCustomRoute() CustomRoute {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := CustomRoute{ID: uuid.NewString(), Route: "New Route", Vehicle: "Vehicle", Rate: 0}
	e.sheet.CustomRoutes = append(e.sheet.CustomRoutes, r)
	e.scheduleLocked()
	return r
}

// CustomRoutePatch carries the fields of a custom-route edit; nil fields are
// left unchanged.
type CustomRoutePatch struct {
	Route   *string  `json:"route,omitempty"`
	Vehicle *string  `json:"vehicle,omitempty"`
	Rate    *float64 `json:"rate,omitempty"`
}

// UpdateCustomRoute edits the route with the given stable ID.
func (e *Editor) UpdateCustomRoute(id string, patch CustomRoutePatch) (CustomRoute, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.sheet.CustomRoutes {
		if e.sheet.CustomRoutes[i].ID != id {
			continue
		}
		if patch.Route != nil {
			e.sheet.CustomRoutes[i].Route = *patch.Route
		}
		if patch.Vehicle != nil {
			e.sheet.CustomRoutes[i].Vehicle = *patch.Vehicle
		}
		if patch.Rate != nil {
			e.sheet.CustomRoutes[i].Rate = *patch.Rate
		}
		e.scheduleLocked()
		return e.sheet.CustomRoutes[i], nil
	}
	return CustomRoute{}, fmt.Errorf("%w: custom %s", ErrNoSuchRoute, id)
}

// DeleteCustomRoute removes the route with the given stable ID.
func (e *Editor) DeleteCustomRoute(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.sheet.CustomRoutes {
		if e.sheet.CustomRoutes[i].ID == id {
			e.sheet.CustomRoutes = append(e.sheet.CustomRoutes[:i], e.sheet.CustomRoutes[i+1:]...)
			e.scheduleLocked()
			return nil
		}
	}
	return fmt.Errorf("%w: custom %s", ErrNoSuchRoute, id)
}

// SharingForm is the add-sharing-route form. All six fields are required.
type SharingForm struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Pickup  string `json:"pickup"`
	Drop    string `json:"drop"`
	Seating string `json:"seating"`
	Price   string `json:"price"`
}

// AddSharingRoute validates the form and appends the derived route record.
func (e *Editor) AddSharingRoute(form SharingForm) (SharingRoute, error) {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"from", form.From}, {"to", form.To}, {"pickup", form.Pickup},
		{"drop", form.Drop}, {"seating", form.Seating}, {"price", form.Price},
	} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return SharingRoute{}, fmt.Errorf("rates: missing fields: %s", strings.Join(missing, ", "))
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
	if err != nil {
		return SharingRoute{}, fmt.Errorf("rates: bad price %q", form.Price)
	}
	r := SharingRoute{
		DisplayRoute: form.From + " → " + form.To,
		Pickup:       form.Pickup,
		Drop:         form.Drop,
		Seating:      form.Seating,
		Price:        price,
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sheet.SharingRoutes = append(e.sheet.SharingRoutes, r)
	e.scheduleLocked()
	return r, nil
}

// DeleteSharingRoute removes the sharing route at the given position.
func (e *Editor) DeleteSharingRoute(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.sheet.SharingRoutes) {
		return fmt.Errorf("%w: sharing %d", ErrNoSuchRoute, index)
	}
	e.sheet.SharingRoutes = append(e.sheet.SharingRoutes[:index], e.sheet.SharingRoutes[index+1:]...)
	e.scheduleLocked()
	return nil
}

// Close stops the debounce and reset timers. An in-flight save is left to
// finish; its completion will not touch editor state afterwards.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.saveTimer != nil {
		e.saveTimer.Stop()
		e.saveTimer = nil
	}
	if e.resetTimer != nil {
		e.resetTimer.Stop()
		e.resetTimer = nil
	}
}

// scheduleLocked (re)arms the quiet-period timer after an edit.
func (e *Editor) scheduleLocked() {
	if e.closed {
		return
	}
	if e.saveTimer != nil {
		e.saveTimer.Stop()
		observability.RateEditsCoalesced.Inc()
	}
	e.saveTimer = time.AfterFunc(e.quiet, e.fire)
}

func (e *Editor) fire() {
	e.mu.Lock()
	e.saveTimer = nil
	if e.closed {
		e.mu.Unlock()
		return
	}
	if e.saving {
		// a write is already in flight; run again once it completes
		e.pending = true
		e.mu.Unlock()
		return
	}
	e.saving = true
	e.setStatusLocked(StatusAutoSaving, "")
	snapshot := e.sheet.Clone()
	e.mu.Unlock()
	e.save(snapshot)
}

func (e *Editor) save(snapshot Sheet) {
	e.mu.Lock()
	if e.closed {
		e.saving = false
		e.mu.Unlock()
		return
	}
	e.setStatusLocked(StatusSaving, "")
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	err := e.backend.SaveRates(ctx, snapshot)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	rerun := e.pending
	e.pending = false
	if e.closed {
		return
	}
	if err != nil {
		observability.RateSavesTotal.WithLabelValues("error").Inc()
		e.logger.Error("rates save failed", "error", err)
		e.setStatusLocked(StatusSaveFailed, shortReason(err))
		e.armResetLocked()
	} else {
		observability.RateSavesTotal.WithLabelValues("ok").Inc()
		e.setStatusLocked(StatusSaved, "")
	}
	if rerun {
		// edits made during the write still need a save of their own
		e.scheduleLocked()
	}
}

// armResetLocked returns the label to Ready a fixed delay after a failed
// save. No retry of the failed write happens; the next edit schedules its
// own save.
func (e *Editor) armResetLocked() {
	if e.resetTimer != nil {
		e.resetTimer.Stop()
	}
	e.resetTimer = time.AfterFunc(e.resetDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.closed && e.status == StatusSaveFailed {
			e.setStatusLocked(StatusReady, "")
		}
	})
}

func (e *Editor) setStatusLocked(s Status, detail string) {
	e.status = s
	e.detail = detail
}

func shortReason(err error) string {
	msg := err.Error()
	if len(msg) > 60 {
		msg = msg[:60] + "..."
	}
	return msg
}
