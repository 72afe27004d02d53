package notifier

import (
	"fmt"
	"strings"

	"github.com/pauljones0/listing-watch-bot/internal/models"
)

// FormatAd renders an ad as a message body labeled with its topic.
// Empty fields are left out.
func FormatAd(topic string, ad models.AdRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏠 %s", topic)
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "\n%s %s", label, value)
		}
	}
	line("📍", ad.Address)
	line("📝", ad.Description)
	line("🛏", ad.Structure)
	line("💰", ad.Price)
	line("🔗", ad.FullLink)
	return b.String()
}

// FormatFailure renders the message sent when a topic run fails.
func FormatFailure(topic string, err error) string {
	return fmt.Sprintf("⚠️ %s failed: %v", topic, err)
}
