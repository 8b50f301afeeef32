package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

// GET /api/v1/admin/audit-logs
func (h *Handler) ListAuditLogs(c *gin.Context) {
	actorID, err := queryUUID(c, "actorId")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	f := models.AuditFilter{
		ActorID:    actorID,
		Action:     models.AuditAction(strings.ToUpper(strings.TrimSpace(c.Query("action")))),
		TargetType: strings.TrimSpace(c.Query("targetType")),
	}
	if f.StartDate, err = queryDate(c, "startDate"); err != nil {
		RespondDomainError(c, err)
		return
	}
	if f.EndDate, err = queryDate(c, "endDate"); err != nil {
		RespondDomainError(c, err)
		return
	}
	page, err := pageParams(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	items, p, err := h.Audit.List(c.Request.Context(), f, page)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondPage(c, "Audit logs retrieved successfully", items, p)
}
