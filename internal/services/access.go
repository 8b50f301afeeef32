package services

import (
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

type BookingAction string

const (
	BookingRead   BookingAction = "read"
	BookingUpdate BookingAction = "update"
	BookingCancel BookingAction = "cancel"
)

// Decision is the outcome of an access check. Reason is the Forbidden message when denied.
type Decision struct {
	Allowed bool
	Reason  string
}

var deniedReasons = map[BookingAction]string{
	BookingRead:   "You can only view your own bookings",
	BookingUpdate: "You can only update your own bookings",
	BookingCancel: "You can only cancel your own bookings",
}

// CanAccessBooking decides whether actor may perform action on b.
// Only admins and the owner pass. SUPPORT gets no booking access here.
func CanAccessBooking(actor domain.RequestContext, b models.Booking, action BookingAction) Decision {
	switch {
	case actor.UserID == "":
		return Decision{Reason: "Authentication required"}
	case actor.Role == domain.RoleAdmin:
		return Decision{Allowed: true}
	case actor.UserID == b.UserID:
		return Decision{Allowed: true}
	}
	reason, ok := deniedReasons[action]
	if !ok {
		reason = "Insufficient permissions"
	}
	return Decision{Reason: reason}
}

func requireBookingAccess(actor domain.RequestContext, b models.Booking, action BookingAction) error {
	d := CanAccessBooking(actor, b, action)
	if d.Allowed {
		return nil
	}
	if actor.UserID == "" {
		return domain.UnauthorizedError{Msg: d.Reason}
	}
	return domain.ForbiddenError{Msg: d.Reason}
}
