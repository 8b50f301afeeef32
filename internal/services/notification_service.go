package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

var ErrEmailTransportMissing = errors.New("email transport not configured")

// Notifier sends transactional email. Each method returns a provider message id.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, b models.Booking, user models.UserSummary, trip models.TripSummary) (string, error)
	SendBookingCancellation(ctx context.Context, b models.Booking, user models.UserSummary, trip models.TripSummary) (string, error)
	SendBookingReminder(ctx context.Context, b models.Booking, user models.UserSummary, trip models.TripSummary, daysUntilTrip int) (string, error)
	SendPasswordResetEmail(ctx context.Context, user models.UserSummary, token string) (string, error)
	SendWelcomeEmail(ctx context.Context, user models.UserSummary) (string, error)
}

type Email struct {
	To      string
	Subject string
	Body    string
}

// EmailService formats messages and, in development, logs them instead of sending.
type EmailService struct {
	Env intconfig.Env
	Now func() time.Time
}

func (s EmailService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s EmailService) send(ctx context.Context, m Email) (string, error) {
	if !s.Env.IsDevelopment() {
		return "", ErrEmailTransportMissing
	}
	preview := m.Body
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	logrus.WithFields(logrus.Fields{
		"to":         m.To,
		"subject":    m.Subject,
		"preview":    preview,
		"request_id": domain.RequestContextFrom(ctx).RequestID,
	}).Info("Email (development)")
	return fmt.Sprintf("dev-%d", s.now().UnixMilli()), nil
}

func passengerLines(b models.Booking) string {
	if len(b.Passengers) == 0 {
		return "  1 traveller\n"
	}
	var sb strings.Builder
	for i, p := range b.Passengers {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, utils.SafeOr(p.Name, "-"))
	}
	return sb.String()
}

func (s EmailService) SendBookingConfirmation(ctx context.Context, b models.Booking, user models.UserSummary, trip models.TripSummary) (string, error) {
	body := fmt.Sprintf("Hi %s,\n\nYour booking %s for %s is confirmed.\n\nDates: %s - %s\nPassengers:\n%sTotal paid: %s\n\nSee you soon!",
		user.Name, b.BookingReference, trip.Title,
		utils.FormatDate(trip.StartDate), utils.FormatDate(trip.EndDate),
		passengerLines(b), utils.FormatPrice(trip.Currency, b.TotalPrice))
	return s.send(ctx, Email{To: user.Email, Subject: "Booking Confirmed - " + b.BookingReference, Body: body})
}

func (s EmailService) SendBookingCancellation(ctx context.Context, b models.Booking, user models.UserSummary, trip models.TripSummary) (string, error) {
	reason := "No reason provided"
	if b.CancellationReason != nil && strings.TrimSpace(*b.CancellationReason) != "" {
		reason = *b.CancellationReason
	}
	body := fmt.Sprintf("Hi %s,\n\nYour booking %s for %s has been cancelled.\nReason: %s\n\nIf a payment was made, a refund will be processed according to our policy.",
		user.Name, b.BookingReference, trip.Title, reason)
	return s.send(ctx, Email{To: user.Email, Subject: "Booking Cancelled - " + b.BookingReference, Body: body})
}

func (s EmailService) SendBookingReminder(ctx context.Context, b models.Booking, user models.UserSummary, trip models.TripSummary, daysUntilTrip int) (string, error) {
	when := fmt.Sprintf("in %d days", daysUntilTrip)
	if daysUntilTrip == 1 {
		when = "tomorrow"
	}
	body := fmt.Sprintf("Hi %s,\n\nThis is a reminder that %s starts %s (%s).\nBooking reference: %s\nPassengers:\n%s",
		user.Name, trip.Title, when, utils.FormatDate(trip.StartDate), b.BookingReference, passengerLines(b))
	return s.send(ctx, Email{To: user.Email, Subject: "Upcoming Trip Reminder - " + trip.Title, Body: body})
}

func (s EmailService) SendPasswordResetEmail(ctx context.Context, user models.UserSummary, token string) (string, error) {
	link := strings.TrimRight(s.Env.FrontendURL, "/") + "/reset-password?token=" + token
	body := fmt.Sprintf("Hi %s,\n\nUse the link below to reset your password. It expires in 1 hour.\n\n%s\n\nIf you did not request this, ignore this email.",
		user.Name, link)
	return s.send(ctx, Email{To: user.Email, Subject: "Password Reset Request", Body: body})
}

func (s EmailService) SendWelcomeEmail(ctx context.Context, user models.UserSummary) (string, error) {
	body := fmt.Sprintf("Hi %s,\n\nWelcome aboard! Your account is ready and you can start booking trips right away.", user.Name)
	return s.send(ctx, Email{To: user.Email, Subject: "Welcome to Tourism", Body: body})
}

// dispatch runs send in the background, detached from the request lifetime.
func dispatch(ctx context.Context, kind, targetID string, send func(context.Context) (string, error)) {
	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, 30*time.Second)
		defer cancel()
		id, err := send(ctx)
		entry := logrus.WithFields(logrus.Fields{
			"notification": kind,
			"target_id":    targetID,
			"request_id":   domain.RequestContextFrom(ctx).RequestID,
		})
		if err != nil {
			entry.WithError(err).Warn("Notification failed")
			return
		}
		entry.WithField("message_id", id).Debug("Notification sent")
	}()
}
