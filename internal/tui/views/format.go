package views

import (
	"time"

	"github.com/geekhirusha/chatapp/internal/wire"
)

// formatTimestamp renders a backend timestamp: clock time today,
// month/day otherwise, empty when unparseable.
func formatTimestamp(s string) string {
	t := wire.ParseTime(s)
	if t.IsZero() {
		return ""
	}
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

// presence renders a user's availability: a live marker when online,
// otherwise the last-seen timestamp.
func presence(u wire.User) string {
	if u.Status == wire.StatusOnline {
		return "[green]online[-]"
	}
	if ts := formatTimestamp(u.UpdatedAt); ts != "" {
		return "seen " + ts
	}
	return ""
}
