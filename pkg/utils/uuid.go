package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// GenerateSaleCode generates a sale code for clients that do not send one
func GenerateSaleCode(now time.Time) string {
	return "V-" + now.Format("060102") + "-" + strings.ToUpper(uuid.New().String()[:8])
}
