package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NikamRenuka/cabadmin/internal/bookings"
	"github.com/NikamRenuka/cabadmin/internal/dispatch"
	"github.com/NikamRenuka/cabadmin/internal/models"
	"github.com/NikamRenuka/cabadmin/internal/notify"
	"github.com/NikamRenuka/cabadmin/internal/rates"
	"github.com/NikamRenuka/cabadmin/internal/session"
	"github.com/NikamRenuka/cabadmin/internal/storage"
	"github.com/NikamRenuka/cabadmin/internal/upstream"
)

// driverRoster is the fixed list of allocatable drivers. The backend does
// not manage drivers; the roster has always been dashboard-side.
var driverRoster = []models.Driver{
	{ID: 1, Name: "Ramesh"},
	{ID: 2, Name: "Suresh"},
	{ID: 3, Name: "Amit"},
	{ID: 4, Name: "Deepak"},
	{ID: 5, Name: "Vijay"},
	{ID: 6, Name: "Arjun"},
}

// earningsSnapshot is the static analytics shown on the earnings page.
var earningsSnapshot = models.Earnings{
	Today:           12500,
	Week:            89000,
	Month:           350000,
	TotalBookings:   156,
	CompletedTrips:  134,
	PendingBookings: 8,
}

// Deps carries the wired subsystems the server exposes.
type Deps struct {
	Bookings      *bookings.Synchronizer
	Rates         *rates.Editor
	Notifications *notify.Poller
	Upstream      *upstream.Client
	Sessions      session.Store
	Payments      storage.PaymentStore
	WSReg         *dispatch.WSRegistry
	Logger        *slog.Logger
}

type Server struct {
	deps   Deps
	logger *slog.Logger
	mux    *mux.Router
}

func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{deps: deps, logger: deps.Logger, mux: mux.NewRouter()}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST")
	s.mux.HandleFunc("/ws", s.handleWS)

	api := s.mux.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)

	api.HandleFunc("/bookings", s.handleBookings).Methods("GET")
	api.HandleFunc("/bookings/{id}/allocate", s.handleAllocate).Methods("POST")
	api.HandleFunc("/bookings/{id}/reject", s.handleReject).Methods("POST")
	api.HandleFunc("/drivers", s.handleDrivers).Methods("GET")

	api.HandleFunc("/rates", s.handleRates).Methods("GET")
	api.HandleFunc("/rates/value", s.handleRateValue).Methods("PUT")
	api.HandleFunc("/rates/nested", s.handleRateNested).Methods("PUT")
	api.HandleFunc("/rates/custom", s.handleCustomRouteAdd).Methods("POST")
	api.HandleFunc("/rates/custom/{id}", s.handleCustomRouteUpdate).Methods("PUT")
	api.HandleFunc("/rates/custom/{id}", s.handleCustomRouteDelete).Methods("DELETE")
	api.HandleFunc("/rates/sharing", s.handleSharingRouteAdd).Methods("POST")
	api.HandleFunc("/rates/sharing/{index}", s.handleSharingRouteDelete).Methods("DELETE")

	api.HandleFunc("/notifications", s.handleNotifications).Methods("GET")
	api.HandleFunc("/notifications/count", s.handleNotificationCount).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", s.handleNotificationRead).Methods("PUT")

	api.HandleFunc("/payments", s.handlePayments).Methods("GET")
	api.HandleFunc("/earnings", s.handleEarnings).Methods("GET")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
