package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

func TestCanAccessBooking(t *testing.T) {
	b := models.Booking{ID: testBookingID, UserID: testUserID}

	cases := []struct {
		name    string
		actor   domain.RequestContext
		action  BookingAction
		allowed bool
		reason  string
	}{
		{"owner reads", domain.RequestContext{UserID: testUserID, Role: domain.RoleUser}, BookingRead, true, ""},
		{"owner cancels", domain.RequestContext{UserID: testUserID, Role: domain.RoleUser}, BookingCancel, true, ""},
		{"admin updates", domain.RequestContext{UserID: otherUserID, Role: domain.RoleAdmin}, BookingUpdate, true, ""},
		{"support reads", domain.RequestContext{UserID: otherUserID, Role: domain.RoleSupport}, BookingRead, false, "You can only view your own bookings"},
		{"support cancels", domain.RequestContext{UserID: otherUserID, Role: domain.RoleSupport}, BookingCancel, false, "You can only cancel your own bookings"},
		{"stranger reads", domain.RequestContext{UserID: otherUserID, Role: domain.RoleUser}, BookingRead, false, "You can only view your own bookings"},
		{"stranger updates", domain.RequestContext{UserID: otherUserID, Role: domain.RoleUser}, BookingUpdate, false, "You can only update your own bookings"},
		{"anonymous", domain.RequestContext{}, BookingRead, false, "Authentication required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := CanAccessBooking(tc.actor, b, tc.action)
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
}

func TestRequireBookingAccessErrorKinds(t *testing.T) {
	b := models.Booking{UserID: testUserID}
	assert.True(t, domain.IsUnauthorized(requireBookingAccess(domain.RequestContext{}, b, BookingRead)))
	assert.True(t, domain.IsForbidden(requireBookingAccess(domain.RequestContext{UserID: otherUserID}, b, BookingRead)))
	assert.True(t, domain.IsForbidden(requireBookingAccess(domain.RequestContext{UserID: otherUserID, Role: domain.RoleSupport}, b, BookingRead)))
	assert.NoError(t, requireBookingAccess(domain.RequestContext{UserID: testUserID}, b, BookingUpdate))
}
