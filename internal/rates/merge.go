package rates

// Legacy zone dropped from the big bus rows on every merge. The city was
// renamed; old saved sheets still carry the retired key.
const legacyBusZone = "Aurangabad"

var legacyBusRows = []string{"40 Seater Bus", "50 Seater Bus"}

// Merge layers a saved backend sheet over the defaults template:
//
//   - perSeatRates, fixedCabRates: per-key, saved value wins.
//   - busRates: per-row, a saved row replaces the default row wholesale.
//   - perKmRates: per-vehicle deep merge; only vehicles in the template
//     survive, with saved zone prices layered over the template's.
//   - customRoutes: saved list verbatim when present, template list otherwise.
//   - sharingRoutes: saved list verbatim when present, empty otherwise.
//
// The retired bus zone is stripped afterwards regardless of input.
func Merge(saved Sheet) Sheet {
	def := Defaults()
	out := Sheet{
		PerSeatRates:  overlayScalar(def.PerSeatRates, saved.PerSeatRates),
		BusRates:      overlayRows(def.BusRates, saved.BusRates),
		FixedCabRates: overlayScalar(def.FixedCabRates, saved.FixedCabRates),
		PerKmRates:    make(map[string]map[string]float64, len(def.PerKmRates)),
	}

	for vehicle, zones := range def.PerKmRates {
		out.PerKmRates[vehicle] = overlayScalar(zones, saved.PerKmRates[vehicle])
	}

	if saved.CustomRoutes != nil {
		out.CustomRoutes = append([]CustomRoute(nil), saved.CustomRoutes...)
	} else {
		out.CustomRoutes = append([]CustomRoute(nil), def.CustomRoutes...)
	}
	if saved.SharingRoutes != nil {
		out.SharingRoutes = append([]SharingRoute(nil), saved.SharingRoutes...)
	} else {
		out.SharingRoutes = []SharingRoute{}
	}

	for _, row := range legacyBusRows {
		if zones, ok := out.BusRates[row]; ok {
			delete(zones, legacyBusZone)
		}
	}

	out.EnsureRouteIDs()
	return out
}

func overlayScalar(base, over map[string]float64) map[string]float64 {
	out := copyScalarMap(base)
	if out == nil {
		out = make(map[string]float64, len(over))
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func overlayRows(base, over map[string]map[string]float64) map[string]map[string]float64 {
	out := copyNestedMap(base)
	if out == nil {
		out = make(map[string]map[string]float64, len(over))
	}
	for k, v := range over {
		out[k] = copyScalarMap(v)
	}
	return out
}
