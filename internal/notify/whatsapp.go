package notify

import (
	"net/url"
	"strings"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

// WhatsAppLink builds a wa.me link that opens a chat with the agency with
// the booking reference prefilled. It returns "" when no number is set.
func WhatsAppLink(number string, rec models.BookingRecord) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}

	text := "مرحباً، أود تأكيد الحجز رقم " + rec.Reference
	if rec.Quote.FormattedTotal != "" {
		text += " بقيمة " + rec.Quote.FormattedTotal
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text)
}
