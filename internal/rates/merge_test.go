package rates

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseSheetEmptyObject(t *testing.T) {
	for _, raw := range []string{"", "{}"} {
		_, present, err := ParseSheet(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if present {
			t.Fatalf("parse %q: expected empty sheet", raw)
		}
	}
}

func TestMergeFillsMissingVehicleFromDefaults(t *testing.T) {
	saved := Sheet{
		PerKmRates: map[string]map[string]float64{
			"Ertiga (6+1)": {"Sambhaji nagar-Pune-Sambhaji nagar": 99},
		},
	}
	merged := Merge(saved)

	def := Defaults()
	if !reflect.DeepEqual(merged.PerKmRates["Swift Dezire (4+1)"], def.PerKmRates["Swift Dezire (4+1)"]) {
		t.Fatalf("missing vehicle must come from defaults, got %v", merged.PerKmRates["Swift Dezire (4+1)"])
	}
	if merged.PerKmRates["Ertiga (6+1)"]["Sambhaji nagar-Pune-Sambhaji nagar"] != 99 {
		t.Fatal("saved zone price must win over the default")
	}
	// untouched zones of a partially saved vehicle still come from defaults
	if merged.PerKmRates["Ertiga (6+1)"]["Local within Sambhaji nagar"] != def.PerKmRates["Ertiga (6+1)"]["Local within Sambhaji nagar"] {
		t.Fatal("unsaved zones of a saved vehicle must keep default prices")
	}
}

func TestMergeCustomRoutesServerWins(t *testing.T) {
	saved := Sheet{
		CustomRoutes: []CustomRoute{{ID: "r1", Route: "A → B", Vehicle: "Dzire", Rate: 1234}},
	}
	merged := Merge(saved)
	if len(merged.CustomRoutes) != 1 || merged.CustomRoutes[0].Rate != 1234 {
		t.Fatalf("saved custom routes must be preserved verbatim, got %+v", merged.CustomRoutes)
	}
}

func TestMergeCustomRoutesDefaultWhenAbsent(t *testing.T) {
	merged := Merge(Sheet{})
	def := Defaults()
	if len(merged.CustomRoutes) != len(def.CustomRoutes) {
		t.Fatalf("expected %d default custom routes, got %d", len(def.CustomRoutes), len(merged.CustomRoutes))
	}
	for _, r := range merged.CustomRoutes {
		if r.ID == "" {
			t.Fatal("merged custom routes must have stable IDs")
		}
	}
	if merged.SharingRoutes == nil || len(merged.SharingRoutes) != 0 {
		t.Fatalf("sharing routes default to empty, got %v", merged.SharingRoutes)
	}
}

func TestMergeStripsRetiredBusZone(t *testing.T) {
	saved := Sheet{
		BusRates: map[string]map[string]float64{
			"40 Seater Bus": {"Aurangabad": 44, "Pune": 51},
			"50 Seater Bus": {"Aurangabad": 53},
			"17 Seater Bus": {"Aurangabad": 19},
		},
	}
	merged := Merge(saved)
	if _, ok := merged.BusRates["40 Seater Bus"]["Aurangabad"]; ok {
		t.Fatal("retired zone must be stripped from the 40 seater row")
	}
	if _, ok := merged.BusRates["50 Seater Bus"]["Aurangabad"]; ok {
		t.Fatal("retired zone must be stripped from the 50 seater row")
	}
	// only the two big bus rows are affected
	if _, ok := merged.BusRates["17 Seater Bus"]["Aurangabad"]; !ok {
		t.Fatal("17 seater row is not subject to stripping")
	}
	if merged.BusRates["40 Seater Bus"]["Pune"] != 51 {
		t.Fatal("saved row must otherwise win")
	}
}

func TestDefaultsReturnsFreshCopies(t *testing.T) {
	a := Defaults()
	a.PerSeatRates["Sambhaji nagar to Pune (Home Drop)"] = 1
	b := Defaults()
	if b.PerSeatRates["Sambhaji nagar to Pune (Home Drop)"] != 1200 {
		t.Fatal("Defaults must not share state between calls")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := Defaults()
	c := s.Clone()
	c.PerKmRates["Swift Dezire (4+1)"]["Local within Sambhaji nagar"] = 0
	if s.PerKmRates["Swift Dezire (4+1)"]["Local within Sambhaji nagar"] == 0 {
		t.Fatal("clone must not alias nested maps")
	}
}
