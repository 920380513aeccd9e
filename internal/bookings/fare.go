package bookings

import "github.com/NikamRenuka/cabadmin/internal/models"

// Fare is the display fare for one booking. Exclusive rides carry only the
// total; shared rides quote per seat and derive the total from the passenger
// count. Keeping the variant explicit here means callers never branch on
// ride type themselves.
type Fare struct {
	Shared     bool    `json:"shared"`
	PerSeat    float64 `json:"perSeat,omitempty"`
	Passengers int     `json:"passengers,omitempty"`
	Total      float64 `json:"total"`
}

// ComputeFare maps a booking to its display fare. For shared rides the
// booking's fare field is the per-seat price; a missing passenger count is
// treated as one seat.
func ComputeFare(b models.Booking) Fare {
	if b.RideType == models.RideShared {
		seats := b.Passengers
		if seats <= 0 {
			seats = 1
		}
		return Fare{
			Shared:     true,
			PerSeat:    b.Fare,
			Passengers: seats,
			Total:      b.Fare * float64(seats),
		}
	}
	return Fare{Total: b.Fare}
}
