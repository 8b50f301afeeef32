package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

func TestDocsServiceGenerate(t *testing.T) {
	start := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	loader := func(_ context.Context, id string, _ domain.RequestContext) (models.Booking, error) {
		return models.Booking{
			ID:               id,
			BookingReference: "ST-MF3K2Q1-A1B2C3",
			Status:           models.BookingConfirmed,
			PaymentStatus:    models.PaymentPaid,
			TotalPrice:       900,
			Passengers:       []models.Passenger{{Name: "Ann"}, {Name: "Bob", Email: "bob@example.com"}},
			Trip:             &models.TripSummary{Title: "Nile Cruise", Currency: "USD", DurationDays: 5, StartDate: &start},
			User:             &models.UserSummary{Name: "Ann", Email: "ann@example.com"},
		}, nil
	}

	svc := DocsService{Loader: loader}
	actor := domain.RequestContext{UserID: "u1"}

	pdf, filename, err := svc.GenerateETicket(context.Background(), "b1", actor)
	if err != nil {
		t.Fatalf("GenerateETicket returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) || filename != "ETICKET_ST-MF3K2Q1-A1B2C3.pdf" {
		t.Fatalf("GenerateETicket returned unexpected output %q", filename)
	}

	invoice, invName, err := svc.GenerateInvoice(context.Background(), "b1", actor)
	if err != nil {
		t.Fatalf("GenerateInvoice returned error: %v", err)
	}
	if len(invoice) == 0 || invName != "INVOICE_ST-MF3K2Q1-A1B2C3.pdf" {
		t.Fatalf("GenerateInvoice returned unexpected output %q", invName)
	}
}

func TestDocsServiceRejectsCancelledTicket(t *testing.T) {
	svc := DocsService{Loader: func(_ context.Context, id string, _ domain.RequestContext) (models.Booking, error) {
		return models.Booking{ID: id, Status: models.BookingCancelled}, nil
	}}
	_, _, err := svc.GenerateETicket(context.Background(), "b1", domain.RequestContext{UserID: "u1"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
