package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/mustafa2080/tourism-API/internal/utils"
)

const (
	bookingReferencePrefix = "ST-"
	maxReferenceAttempts   = 5
)

// NewBookingReference builds "ST-<base36 unix ms>-<6 hex>", all upper case.
func NewBookingReference(now time.Time) (string, error) {
	suffix, err := utils.RandomHexUpper(3)
	if err != nil {
		return "", err
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return bookingReferencePrefix + stamp + "-" + suffix, nil
}
