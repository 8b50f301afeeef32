package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mustafa2080/tourism-API/internal/repositories"
	"github.com/mustafa2080/tourism-API/internal/services"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

const reminderBatchSize = 100

// ReminderWorker emails travellers of confirmed bookings shortly before departure.
type ReminderWorker struct {
	Bookings  repositories.BookingRepository
	Notifier  services.Notifier
	Interval  time.Duration
	DaysAhead int
	Now       func() time.Time
}

func NewReminderWorker(bookings repositories.BookingRepository, notifier services.Notifier, interval time.Duration, daysAhead int) *ReminderWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if daysAhead <= 0 {
		daysAhead = 3
	}
	return &ReminderWorker{Bookings: bookings, Notifier: notifier, Interval: interval, DaysAhead: daysAhead}
}

func (w *ReminderWorker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return utils.NowUTC()
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	logrus.WithField("interval", w.Interval.String()).Info("Reminder worker started")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.SendDue(ctx)
		}
	}
}

// SendDue processes one batch and returns how many reminders went out.
func (w *ReminderWorker) SendDue(ctx context.Context) int {
	now := w.now()
	due, err := w.Bookings.ListDueReminders(ctx, now, now.AddDate(0, 0, w.DaysAhead), reminderBatchSize)
	if err != nil {
		logrus.WithError(err).Error("Failed to list due reminders")
		return 0
	}
	if len(due) == 0 {
		logrus.Debug("No reminders due")
		return 0
	}

	sent, failed := 0, 0
	for _, b := range due {
		if ctx.Err() != nil {
			logrus.Info("Reminder run interrupted")
			break
		}
		user, trip := b.User, b.Trip
		if user == nil || trip == nil || trip.StartDate == nil {
			failed++
			continue
		}
		days := utils.DaysUntil(now, *trip.StartDate)
		if _, err := w.Notifier.SendBookingReminder(ctx, b, *user, *trip, days); err != nil {
			logrus.WithField("booking_id", b.ID).WithError(err).Warn("Reminder failed")
			failed++
			continue
		}
		if err := w.Bookings.MarkReminderSent(ctx, b.ID, now); err != nil {
			logrus.WithField("booking_id", b.ID).WithError(err).Error("Failed to stamp reminder")
			failed++
			continue
		}
		sent++
	}

	logrus.WithFields(logrus.Fields{"sent": sent, "failed": failed}).Info("Reminder run completed")
	return sent
}
