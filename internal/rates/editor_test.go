package rates

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeRatesBackend struct {
	mu      sync.Mutex
	raw     json.RawMessage
	loadErr error
	saveErr error
	block   chan struct{} // when set, SaveRates waits on it before returning
	saves   []Sheet
}

func (f *fakeRatesBackend) Rates(ctx context.Context) (json.RawMessage, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.raw, nil
}

func (f *fakeRatesBackend) SaveRates(ctx context.Context, sheet any) error {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := sheet.(Sheet); ok {
		f.saves = append(f.saves, s.Clone())
	}
	return f.saveErr
}

func (f *fakeRatesBackend) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeRatesBackend) lastSave(t *testing.T) Sheet {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		t.Fatal("no save recorded")
	}
	return f.saves[len(f.saves)-1]
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func newTestEditor(t *testing.T, f *fakeRatesBackend) *Editor {
	t.Helper()
	e := NewEditor(f, Options{QuietPeriod: 40 * time.Millisecond, ResetDelay: 80 * time.Millisecond})
	t.Cleanup(e.Close)
	return e
}

func TestLoadEmptyBackendUsesDefaults(t *testing.T) {
	f := &fakeRatesBackend{raw: json.RawMessage(`{}`)}
	e := newTestEditor(t, f)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	st, _ := e.Status()
	if st != StatusReady {
		t.Fatalf("expected Ready, got %s", st)
	}
	def := Defaults()
	got := e.Sheet()
	if got.PerSeatRates["Sambhaji nagar to Pune (Home Drop)"] != def.PerSeatRates["Sambhaji nagar to Pune (Home Drop)"] {
		t.Fatal("empty backend must yield the defaults template")
	}
	if len(got.CustomRoutes) != len(def.CustomRoutes) {
		t.Fatal("default custom routes missing")
	}
}

func TestLoadMergesSavedSheet(t *testing.T) {
	f := &fakeRatesBackend{raw: json.RawMessage(`{"perSeatRates":{"Sambhaji nagar to Pune (Home Drop)":1500}}`)}
	e := newTestEditor(t, f)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if st, _ := e.Status(); st != StatusLoaded {
		t.Fatalf("expected Loaded, got %s", st)
	}
	if got := e.Sheet().PerSeatRates["Sambhaji nagar to Pune (Home Drop)"]; got != 1500 {
		t.Fatalf("saved rate must win, got %v", got)
	}
}

func TestLoadFailureKeepsEditorUsable(t *testing.T) {
	f := &fakeRatesBackend{loadErr: errors.New("gateway timeout")}
	e := newTestEditor(t, f)
	if err := e.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	st, detail := e.Status()
	if st != StatusLoadFailed || detail == "" {
		t.Fatalf("expected Load Failed with detail, got %s %q", st, detail)
	}
	if len(e.Sheet().PerSeatRates) == 0 {
		t.Fatal("defaults must still be editable after a failed load")
	}
	if err := e.SetRate("perSeatRates", "Sambhaji nagar to Pune (Home Drop)", 1); err != nil {
		t.Fatalf("edit after failed load: %v", err)
	}
}

func TestEditsWithinQuietPeriodCoalesceIntoOneSave(t *testing.T) {
	f := &fakeRatesBackend{raw: json.RawMessage(`{}`)}
	e := newTestEditor(t, f)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := e.SetRate("perSeatRates", "Sambhaji nagar to Pune (Home Drop)", 1300); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond) // well inside the quiet period
	if err := e.SetNestedRate("busRates", "17 Seater Bus", "Pune", 21); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return f.saveCount() >= 1 }, "save never fired")
	waitFor(t, func() bool { st, _ := e.Status(); return st == StatusSaved }, "never reached Saved")

	if n := f.saveCount(); n != 1 {
		t.Fatalf("expected exactly one save, got %d", n)
	}
	saved := f.lastSave(t)
	if saved.PerSeatRates["Sambhaji nagar to Pune (Home Drop)"] != 1300 {
		t.Fatal("first edit missing from the coalesced save")
	}
	if saved.BusRates["17 Seater Bus"]["Pune"] != 21 {
		t.Fatal("second edit missing from the coalesced save")
	}
}

func TestSaveFailureResetsToReadyWithoutRetry(t *testing.T) {
	f := &fakeRatesBackend{raw: json.RawMessage(`{}`), saveErr: errors.New("503 from backend")}
	e := newTestEditor(t, f)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := e.SetRate("fixedCabRates", "Swift Dezire (4+1)", 3000); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { st, _ := e.Status(); return st == StatusSaveFailed }, "never reached Save Failed")
	if _, detail := e.Status(); detail == "" {
		t.Fatal("failure detail must be surfaced")
	}
	waitFor(t, func() bool { st, _ := e.Status(); return st == StatusReady }, "never reset to Ready")
	if n := f.saveCount(); n != 1 {
		t.Fatalf("failed save must not retry on its own, got %d saves", n)
	}
}

func TestEditDuringInFlightSaveGetsFollowUpSave(t *testing.T) {
	block := make(chan struct{})
	f := &fakeRatesBackend{raw: json.RawMessage(`{}`), block: block}
	e := newTestEditor(t, f)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := e.SetRate("perSeatRates", "Sambhaji nagar to Pune (Home Drop)", 1400); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { st, _ := e.Status(); return st == StatusSaving }, "first save never started")

	// this edit lands while the first write is blocked
	if err := e.SetRate("perSeatRates", "Pune to Sambhaji nagar (Home Pickup)", 1250); err != nil {
		t.Fatal(err)
	}
	// let the follow-up debounce fire while the write is still held open
	time.Sleep(100 * time.Millisecond)
	f.mu.Lock()
	f.block = nil
	f.mu.Unlock()
	close(block)

	waitFor(t, func() bool { return f.saveCount() >= 2 }, "follow-up save never fired")
	saved := f.lastSave(t)
	if saved.PerSeatRates["Pune to Sambhaji nagar (Home Pickup)"] != 1250 {
		t.Fatal("follow-up save must carry the late edit")
	}
}

func TestCloseStopsPendingSave(t *testing.T) {
	f := &fakeRatesBackend{raw: json.RawMessage(`{}`)}
	e := NewEditor(f, Options{QuietPeriod: 40 * time.Millisecond, ResetDelay: 80 * time.Millisecond})
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := e.SetRate("fixedCabRates", "Innova Crysta", 4500); err != nil {
		t.Fatal(err)
	}
	e.Close()
	time.Sleep(120 * time.Millisecond)
	if n := f.saveCount(); n != 0 {
		t.Fatalf("close must cancel the armed save, got %d saves", n)
	}
}

func TestCustomRouteLifecycle(t *testing.T) {
	f := &fakeRatesBackend{raw: json.RawMessage(`{}`)}
	e := newTestEditor(t, f)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	added := e.AddCustomRoute()
	if added.ID == "" || added.Route != "New Route" {
		t.Fatalf("unexpected placeholder route: %+v", added)
	}

	route := "Sambhaji nagar → Nashik"
	rate := 3200.0
	updated, err := e.UpdateCustomRoute(added.ID, CustomRoutePatch{Route: &route, Rate: &rate})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Route != route || updated.Rate != rate || updated.Vehicle != "Vehicle" {
		t.Fatalf("patch must only touch the given fields: %+v", updated)
	}

	if _, err := e.UpdateCustomRoute("no-such-id", CustomRoutePatch{Route: &route}); !errors.Is(err, ErrNoSuchRoute) {
		t.Fatalf("unknown id: got %v", err)
	}

	if err := e.DeleteCustomRoute(added.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := e.DeleteCustomRoute(added.ID); !errors.Is(err, ErrNoSuchRoute) {
		t.Fatalf("double delete: got %v", err)
	}
}

func TestAddSharingRouteValidation(t *testing.T) {
	f := &fakeRatesBackend{raw: json.RawMessage(`{}`)}
	e := newTestEditor(t, f)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	_, err := e.AddSharingRoute(SharingForm{From: "Sambhaji nagar", To: "Pune"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"pickup", "drop", "seating", "price"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error should name missing field %q: %v", field, err)
		}
	}

	if _, err := e.AddSharingRoute(SharingForm{
		From: "A", To: "B", Pickup: "P", Drop: "D", Seating: "4", Price: "cheap",
	}); err == nil {
		t.Fatal("expected bad price error")
	}

	r, err := e.AddSharingRoute(SharingForm{
		From: "Sambhaji nagar", To: "Pune", Pickup: "CIDCO", Drop: "Shivajinagar",
		Seating: "6", Price: "450",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if r.DisplayRoute != "Sambhaji nagar → Pune" || r.Price != 450 {
		t.Fatalf("unexpected sharing route: %+v", r)
	}
	if err := e.DeleteSharingRoute(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := e.DeleteSharingRoute(0); !errors.Is(err, ErrNoSuchRoute) {
		t.Fatalf("delete past end: got %v", err)
	}
}
