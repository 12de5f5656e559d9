package appointment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Location anchors every appointment to the clinic's timezone.
var Location = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DefaultSlot is the time assumed for events with no time component.
const DefaultSlot = "09:00"

// businessSlots is the fixed bookable sequence: morning and afternoon blocks
// in 30-minute increments. A static constant, not derived from business rules.
var businessSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// Slots returns the ordered bookable start times for a business day.
func Slots() []string {
	out := make([]string, len(businessSlots))
	copy(out, businessSlots)
	return out
}

var hhmmRE = regexp.MustCompile(`^\d{2}:\d{2}$`)
var minutesRE = regexp.MustCompile(`^\d{2}$`)

// NormalizeTime converts either 24-hour "HH:MM" or 12-hour "h:mm AM/PM" input
// to 24-hour "HH:MM". Missing or unparseable input yields DefaultSlot.
// Pure and idempotent.
func NormalizeTime(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return DefaultSlot
	}
	if hhmmRE.MatchString(s) {
		return s
	}

	fields := strings.Fields(s)
	parts := strings.SplitN(fields[0], ":", 2)
	if len(parts) != 2 || !minutesRE.MatchString(parts[1]) {
		return DefaultSlot
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return DefaultSlot
	}

	var modifier string
	if len(fields) > 1 {
		modifier = strings.ToUpper(fields[1])
	}
	if modifier == "PM" && hours != 12 {
		hours += 12
	} else if modifier == "AM" && hours == 12 {
		hours = 0
	}

	return fmt.Sprintf("%02d:%s", hours, parts[1])
}

func lower(s string) string { return strings.ToLower(s) }
