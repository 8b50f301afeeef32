package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	// BookingRefunded is set by an external refund process only.
	BookingRefunded BookingStatus = "REFUNDED"
)

// ActiveBookingStatuses hold seats on a trip.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingRefunded:
		return true
	}
	return false
}

// Cancellable reports whether a cancel transition is allowed from s.
func (s BookingStatus) Cancellable() bool {
	return s != BookingCancelled && s != BookingRefunded
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type Passenger struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PassengerCount is the number of seats a passenger list occupies; an empty list still holds one seat.
func PassengerCount(passengers []Passenger) int {
	if len(passengers) == 0 {
		return 1
	}
	return len(passengers)
}

type Booking struct {
	ID                 string        `json:"id"`
	TripID             string        `json:"tripId"`
	UserID             string        `json:"userId"`
	Passengers         []Passenger   `json:"passengers"`
	TotalPrice         float64       `json:"totalPrice"`
	BookingReference   string        `json:"bookingReference"`
	Status             BookingStatus `json:"status"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	BookingDate        *time.Time    `json:"bookingDate"`
	CancelledAt        *time.Time    `json:"cancelledAt"`
	CancellationReason *string       `json:"cancellationReason"`
	ReminderSentAt     *time.Time    `json:"-"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`

	Trip *TripSummary `json:"trip,omitempty"`
	User *UserSummary `json:"user,omitempty"`
}

func (b Booking) PassengerCount() int { return PassengerCount(b.Passengers) }

// BookingInput is the payload of a new booking.
type BookingInput struct {
	Passengers  []Passenger
	BookingDate *time.Time
}

// BookingUpdate supports PATCH-style updates via key presence.
type BookingUpdate struct {
	Passengers  *[]Passenger
	BookingDate *time.Time
}

func (u BookingUpdate) Empty() bool {
	return u.Passengers == nil && u.BookingDate == nil
}

type BookingFilter struct {
	UserID string
	TripID string
	Status BookingStatus
}
