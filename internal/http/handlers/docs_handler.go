package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/http/middleware"
)

type pdfGenerator func(ctx context.Context, bookingID string, actor domain.RequestContext) ([]byte, string, error)

func (h *Handler) servePDF(c *gin.Context, gen pdfGenerator) {
	id, ok := uuidParam(c, "bookingId")
	if !ok {
		return
	}
	pdfBytes, filename, err := gen(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GET /api/v1/bookings/:bookingId/ticket
func (h *Handler) GetBookingTicket(c *gin.Context) {
	h.servePDF(c, h.Docs.GenerateETicket)
}

// GET /api/v1/bookings/:bookingId/invoice
func (h *Handler) GetBookingInvoice(c *gin.Context) {
	h.servePDF(c, h.Docs.GenerateInvoice)
}
