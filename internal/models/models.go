package models

import "time"

// BookingStatus is the lifecycle state of a booking as stored by the backend.
type BookingStatus string

const (
	StatusPending    BookingStatus = "Pending"
	StatusConfirmed  BookingStatus = "Confirmed"
	StatusInProgress BookingStatus = "In Progress"
	StatusCompleted  BookingStatus = "Completed"
	StatusCancelled  BookingStatus = "Cancelled"
)

// TripType is one of the fixed trip classifications.
type TripType string

const (
	TripOneWay    TripType = "One Way"
	TripRoundTrip TripType = "Round Trip"
	TripMultiCity TripType = "Multi City"
)

// RideType distinguishes exclusive bookings from shared (per-seat) ones.
type RideType string

const (
	RideExclusive RideType = "Exclusive"
	RideShared    RideType = "Shared"
)

// Booking is the backend's booking record. Fare is the total fare for
// exclusive rides and the per-seat fare for shared rides; use
// bookings.ComputeFare rather than reading Fare directly when displaying money.
type Booking struct {
	ID           string        `json:"_id"`
	CustomerID   string        `json:"customerId,omitempty"`
	CustomerName string        `json:"customerName"`
	Phone        string        `json:"phone"`
	Email        string        `json:"email,omitempty"`
	DOB          string        `json:"dob,omitempty"`
	Pickup       string        `json:"pickup"`
	Drop         string        `json:"drop"`
	TripType     TripType      `json:"tripType"`
	VehicleType  string        `json:"vehicleType"`
	RideType     RideType      `json:"rideType,omitempty"`
	Fare         float64       `json:"fare"`
	Passengers   int           `json:"passengers,omitempty"`
	Status       BookingStatus `json:"status"`
	BookingTime  string        `json:"bookingTime"`
	DriverName   string        `json:"driverName,omitempty"`
	DriverPhone  string        `json:"driverPhone,omitempty"`
}

// Notification is a server-generated message shown in the dashboard bell.
type Notification struct {
	ID      string    `json:"_id"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Read    bool      `json:"read"`
}

// Payment is one row of the payments listing.
type Payment struct {
	ID       string  `json:"id"`
	Customer string  `json:"customer"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
}

// Driver is an allocatable driver from the static roster.
type Driver struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Earnings is the analytics snapshot shown on the earnings page. Values are
// static; the dashboard does not compute real analytics.
type Earnings struct {
	Today           float64 `json:"today"`
	Week            float64 `json:"week"`
	Month           float64 `json:"month"`
	TotalBookings   int     `json:"totalBookings"`
	CompletedTrips  int     `json:"completedTrips"`
	PendingBookings int     `json:"pendingBookings"`
}

// User is the authenticated admin identity returned by the backend login.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// BookingEvent is the audit record published when the dashboard mutates a
// booking.
type BookingEvent struct {
	BookingID  string        `json:"booking_id"`
	Status     BookingStatus `json:"status"`
	DriverName string        `json:"driver_name,omitempty"`
	Actor      string        `json:"actor,omitempty"`
	At         time.Time     `json:"at"`
}
