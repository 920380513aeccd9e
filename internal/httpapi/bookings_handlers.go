package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/NikamRenuka/cabadmin/internal/bookings"
	"github.com/NikamRenuka/cabadmin/internal/models"
	"github.com/NikamRenuka/cabadmin/internal/upstream"
)

// bookingView is one row of the booking table: the record plus its display
// fare, so clients never have to branch on ride type.
type bookingView struct {
	models.Booking
	FareDetails bookings.Fare `json:"fareDetails"`
}

func toViews(items []models.Booking) []bookingView {
	out := make([]bookingView, len(items))
	for i, b := range items {
		out[i] = bookingView{Booking: b, FareDetails: bookings.ComputeFare(b)}
	}
	return out
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	filtered := s.deps.Bookings.Filter(q)
	writeJSON(w, http.StatusOK, map[string]any{
		"loading":  s.deps.Bookings.Loading(),
		"bookings": toViews(filtered),
		"summary":  bookings.Summarize(filtered),
	})
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		DriverName string `json:"driverName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.deps.Bookings.AllocateDriver(r.Context(), id, body.DriverName)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingView{Booking: updated, FareDetails: bookings.ComputeFare(updated)})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	updated, err := s.deps.Bookings.Reject(r.Context(), id)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingView{Booking: updated, FareDetails: bookings.ComputeFare(updated)})
}

// writeBookingError maps synchronizer failures onto the API surface:
// unknown IDs and bad transitions are client errors, upstream trouble is a
// gateway error the client may retry.
func (s *Server) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bookings.ErrUnknownBooking):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, bookings.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case upstream.IsTemporary(err):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		var ue *upstream.Error
		if errors.As(err, &ue) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) handleDrivers(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	out := make([]models.Driver, 0, len(driverRoster))
	for _, d := range driverRoster {
		if q == "" || strings.Contains(strings.ToLower(d.Name), q) {
			out = append(out, d)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
