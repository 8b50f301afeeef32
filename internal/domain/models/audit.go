package models

import "time"

type AuditAction string

const (
	AuditUserRegistered AuditAction = "USER_REGISTERED"
	AuditUserLogin      AuditAction = "USER_LOGIN"
	AuditUserLogout     AuditAction = "USER_LOGOUT"
	AuditPasswordChange AuditAction = "PASSWORD_CHANGED"
	AuditPasswordReset  AuditAction = "PASSWORD_RESET"

	AuditUserUpdated     AuditAction = "USER_UPDATED"
	AuditUserDeleted     AuditAction = "USER_DELETED"
	AuditUserRoleChanged AuditAction = "USER_ROLE_CHANGED"

	AuditTripCreated     AuditAction = "TRIP_CREATED"
	AuditTripUpdated     AuditAction = "TRIP_UPDATED"
	AuditTripDeleted     AuditAction = "TRIP_DELETED"
	AuditTripPublished   AuditAction = "TRIP_PUBLISHED"
	AuditTripUnpublished AuditAction = "TRIP_UNPUBLISHED"

	AuditBookingCreated   AuditAction = "BOOKING_CREATED"
	AuditBookingConfirmed AuditAction = "BOOKING_CONFIRMED"
	AuditBookingCancelled AuditAction = "BOOKING_CANCELLED"
	AuditBookingDeleted   AuditAction = "BOOKING_DELETED"

	AuditReviewCreated   AuditAction = "REVIEW_CREATED"
	AuditReviewModerated AuditAction = "REVIEW_MODERATED"
	AuditReviewDeleted   AuditAction = "REVIEW_DELETED"

	AuditImageUploaded AuditAction = "IMAGE_UPLOADED"
	AuditImageDeleted  AuditAction = "IMAGE_DELETED"
)

const (
	TargetUser    = "User"
	TargetTrip    = "Trip"
	TargetBooking = "Booking"
	TargetUpload  = "Upload"
)

// AuditEntry is what callers hand to the recorder; it is also the queued payload.
type AuditEntry struct {
	ActorID    string         `json:"actorId,omitempty"`
	Action     AuditAction    `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   string         `json:"targetId,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

type AuditLog struct {
	ID         string         `json:"id"`
	ActorID    *string        `json:"actorId"`
	Action     AuditAction    `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   *string        `json:"targetId"`
	Metadata   map[string]any `json:"metadata"`
	IPAddress  *string        `json:"ipAddress"`
	UserAgent  *string        `json:"userAgent"`
	Timestamp  time.Time      `json:"timestamp"`
	Actor      *UserSummary   `json:"actor"`
}

type AuditFilter struct {
	ActorID    string
	Action     AuditAction
	TargetType string
	StartDate  *time.Time
	EndDate    *time.Time
}
