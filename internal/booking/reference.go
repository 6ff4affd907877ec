package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/tripbuilder/internal/airport"
)

const referencePrefix = "TRP"

// NewReference returns a quotable booking reference such as
// TRP-261017-4F3A9C: the booking day in Georgian time plus six hex digits
// of a random UUID.
func NewReference(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return referencePrefix + "-" + airport.LocalDate(now).Format("060102") + "-" + strings.ToUpper(id[:6])
}

// ValidReference reports whether ref has the shape NewReference produces.
func ValidReference(ref string) bool {
	parts := strings.Split(ref, "-")
	if len(parts) != 3 || parts[0] != referencePrefix || len(parts[1]) != 6 || len(parts[2]) != 6 {
		return false
	}
	if _, err := time.Parse("060102", parts[1]); err != nil {
		return false
	}
	for _, r := range parts[2] {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			return false
		}
	}
	return true
}
