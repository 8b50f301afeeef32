package handlers

import (
	"database/sql"
	"time"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	"github.com/mustafa2080/tourism-API/internal/services"
)

// Handler groups the HTTP endpoints and the services behind them.
type Handler struct {
	Env      intconfig.Env
	DB       *sql.DB
	Auth     services.AuthService
	Bookings services.BookingService
	Trips    services.TripService
	Uploads  services.UploadService
	Docs     services.DocsService
	Audit    *services.AuditRecorder
	Started  time.Time
}

func (h *Handler) db() *sql.DB {
	if h.DB != nil {
		return h.DB
	}
	return intconfig.DB
}
