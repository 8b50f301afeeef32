package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

// DocsService renders booking documents as PDF.
type DocsService struct {
	Bookings BookingService
	Loader   func(ctx context.Context, bookingID string, actor domain.RequestContext) (models.Booking, error)
	Now      func() time.Time
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s DocsService) load(ctx context.Context, bookingID string, actor domain.RequestContext) (models.Booking, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID, actor)
	}
	return s.Bookings.Get(ctx, bookingID, actor)
}

// GenerateETicket is available for active bookings only.
func (s DocsService) GenerateETicket(ctx context.Context, bookingID string, actor domain.RequestContext) ([]byte, string, error) {
	b, err := s.load(ctx, bookingID, actor)
	if err != nil {
		return nil, "", err
	}
	if !b.Status.Cancellable() {
		return nil, "", domain.ValidationError{Field: "status", Msg: "Tickets are not available for cancelled bookings"}
	}
	utils.LogEvent(domain.RequestContextFrom(ctx).RequestID, "docs", "generate_eticket", "booking_id="+b.ID)
	return buildETicketPDF(b)
}

func (s DocsService) GenerateInvoice(ctx context.Context, bookingID string, actor domain.RequestContext) ([]byte, string, error) {
	b, err := s.load(ctx, bookingID, actor)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(domain.RequestContextFrom(ctx).RequestID, "docs", "generate_invoice", "booking_id="+b.ID)
	return buildInvoicePDF(b, s.now())
}

func tripOf(b models.Booking) models.TripSummary {
	if b.Trip != nil {
		return *b.Trip
	}
	return models.TripSummary{ID: b.TripID}
}

func userOf(b models.Booking) models.UserSummary {
	if b.User != nil {
		return *b.User
	}
	return models.UserSummary{ID: b.UserID}
}

func buildETicketPDF(b models.Booking) ([]byte, string, error) {
	trip, user := tripOf(b), userOf(b)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+b.BookingReference, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Reference   : %s", b.BookingReference),
		fmt.Sprintf("Trip        : %s", utils.SafeOr(trip.Title, "-")),
		fmt.Sprintf("Dates       : %s - %s", utils.FormatDate(trip.StartDate), utils.FormatDate(trip.EndDate)),
		fmt.Sprintf("Duration    : %d days", trip.DurationDays),
		fmt.Sprintf("Booked by   : %s <%s>", utils.SafeOr(user.Name, "-"), utils.SafeOr(user.Email, "-")),
		fmt.Sprintf("Status      : %s / %s", b.Status, b.PaymentStatus),
		fmt.Sprintf("Total price : %s", utils.FormatPrice(trip.Currency, b.TotalPrice)),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Passengers (%d)", b.PassengerCount()))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	if len(b.Passengers) == 0 {
		pdf.Cell(0, 6, "1. "+utils.SafeOr(user.Name, "-"))
		pdf.Ln(6)
	}
	for i, p := range b.Passengers {
		line := fmt.Sprintf("%d. %s", i+1, utils.SafeOr(p.Name, "-"))
		if p.Email != "" {
			line += "  " + p.Email
		}
		if p.Phone != "" {
			line += "  " + p.Phone
		}
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Present this e-ticket together with a valid ID at departure.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(b.BookingReference)), nil
}

func buildInvoicePDF(b models.Booking, issued time.Time) ([]byte, string, error) {
	trip, user := tripOf(b), userOf(b)
	count := b.PassengerCount()
	unit := b.TotalPrice
	if count > 0 {
		unit = b.TotalPrice / float64(count)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+b.BookingReference, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	invNo := "INV-" + strings.TrimPrefix(b.BookingReference, bookingReferencePrefix)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice no : "+invNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+issued.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, utils.SafeOr(user.Name, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, utils.SafeOr(user.Email, "-"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	desc := fmt.Sprintf("%s (%s - %s) x %d", utils.SafeOr(trip.Title, "-"),
		utils.FormatDate(trip.StartDate), utils.FormatDate(trip.EndDate), count)
	pdf.MultiCell(0, 6, desc, "", "", false)
	pdf.Ln(2)
	pdf.Cell(0, 6, "Price per passenger: "+utils.FormatPrice(trip.Currency, unit))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatPrice(trip.Currency, b.TotalPrice))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Payment status: "+string(b.PaymentStatus))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("INVOICE_%s.pdf", safeFilenamePart(b.BookingReference)), nil
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
