package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

func TestEmailServiceLogsInDevelopment(t *testing.T) {
	svc := EmailService{Env: intconfig.Env{AppEnv: "development", FrontendURL: "http://localhost:3000/"}, Now: func() time.Time { return fixedNow }}
	id, err := svc.SendPasswordResetEmail(context.Background(), models.UserSummary{Name: "Ann", Email: "ann@example.com"}, "abc")
	require.NoError(t, err)
	assert.Equal(t, "dev-1790856000000", id)
}

func TestEmailServiceWithoutTransport(t *testing.T) {
	svc := EmailService{Env: intconfig.Env{AppEnv: "production"}}
	_, err := svc.SendWelcomeEmail(context.Background(), models.UserSummary{Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrEmailTransportMissing)
}

func TestPassengerLines(t *testing.T) {
	assert.Equal(t, "  1 traveller\n", passengerLines(models.Booking{}))
	assert.Equal(t, "  1. Ann\n  2. -\n", passengerLines(models.Booking{Passengers: []models.Passenger{{Name: "Ann"}, {}}}))
}
