package rates

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Sheet is the nested pricing configuration owned by the backend. Map
// categories hold scalar prices keyed by route/vehicle labels; the two route
// lists are ordered and user-managed.
type Sheet struct {
	PerSeatRates  map[string]float64            `json:"perSeatRates" yaml:"perSeatRates"`
	PerKmRates    map[string]map[string]float64 `json:"perKmRates" yaml:"perKmRates"`
	BusRates      map[string]map[string]float64 `json:"busRates" yaml:"busRates"`
	FixedCabRates map[string]float64            `json:"fixedCabRates" yaml:"fixedCabRates"`
	CustomRoutes  []CustomRoute                 `json:"customRoutes" yaml:"customRoutes"`
	SharingRoutes []SharingRoute                `json:"sharingRoutes" yaml:"sharingRoutes"`
}

// CustomRoute is a special predefined route with a fixed rate. Routes are
// addressed by a stable ID rather than list position so edits and deletes
// cannot race on shifting indices.
type CustomRoute struct {
	ID      string  `json:"id,omitempty" yaml:"-"`
	Route   string  `json:"route" yaml:"route"`
	Vehicle string  `json:"vehicle" yaml:"vehicle"`
	Rate    float64 `json:"rate" yaml:"rate"`
}

// SharingRoute is a shared-cab route built from the add form.
type SharingRoute struct {
	DisplayRoute string  `json:"displayRoute" yaml:"displayRoute"`
	Pickup       string  `json:"pickup" yaml:"pickup"`
	Drop         string  `json:"drop" yaml:"drop"`
	Seating      string  `json:"seating" yaml:"seating"`
	Price        float64 `json:"price" yaml:"price"`
}

// ParseSheet decodes the backend rates payload. The second return is false
// when the backend returned an empty object, in which case the caller should
// fall back to the defaults template entirely.
func ParseSheet(raw json.RawMessage) (Sheet, bool, error) {
	if len(raw) == 0 {
		return Sheet{}, false, nil
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Sheet{}, false, err
	}
	if len(keys) == 0 {
		return Sheet{}, false, nil
	}
	var s Sheet
	if err := json.Unmarshal(raw, &s); err != nil {
		return Sheet{}, false, err
	}
	return s, true, nil
}

// EnsureRouteIDs assigns IDs to custom routes that arrived without one
// (backend data predating stable IDs).
func (s *Sheet) EnsureRouteIDs() {
	for i := range s.CustomRoutes {
		if s.CustomRoutes[i].ID == "" {
			s.CustomRoutes[i].ID = uuid.NewString()
		}
	}
}

// Clone deep-copies the sheet so autosave snapshots are unaffected by later
// edits.
func (s Sheet) Clone() Sheet {
	out := Sheet{
		PerSeatRates:  copyScalarMap(s.PerSeatRates),
		PerKmRates:    copyNestedMap(s.PerKmRates),
		BusRates:      copyNestedMap(s.BusRates),
		FixedCabRates: copyScalarMap(s.FixedCabRates),
	}
	if s.CustomRoutes != nil {
		out.CustomRoutes = make([]CustomRoute, len(s.CustomRoutes))
		copy(out.CustomRoutes, s.CustomRoutes)
	}
	if s.SharingRoutes != nil {
		out.SharingRoutes = make([]SharingRoute, len(s.SharingRoutes))
		copy(out.SharingRoutes, s.SharingRoutes)
	}
	return out
}

func copyScalarMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyNestedMap(in map[string]map[string]float64) map[string]map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]float64, len(in))
	for k, inner := range in {
		out[k] = copyScalarMap(inner)
	}
	return out
}
