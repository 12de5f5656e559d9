package appointment

import (
	"regexp"
	"strings"
)

// statusTags are the bracketed markers embedded in event titles.
var statusTags = map[Status]string{
	StatusPending:   "[PENDING]",
	StatusConfirmed: "[CONFIRMED]",
	StatusDeclined:  "[DECLINED]",
}

var leadingTagRE = regexp.MustCompile(`(?i)^\[(PENDING|CONFIRMED|DECLINED)\]\s*`)
var statusLineRE = regexp.MustCompile(`(?i)Status:\s*\w+`)

// StripStatusTag removes any leading status tags from a title.
func StripStatusTag(summary string) string {
	for {
		stripped := leadingTagRE.ReplaceAllString(summary, "")
		if stripped == summary {
			return stripped
		}
		summary = stripped
	}
}

// TagSummary prepends the status tag for st to an untagged title.
func TagSummary(summary string, st Status) string {
	tag, ok := statusTags[st]
	if !ok {
		return summary
	}
	return tag + " " + summary
}

// ApplyTransition rewrites an event's title and description for a status
// change: the old tag is stripped, the new one prepended, and the Status:
// description line is rewritten in place (or appended when absent).
func ApplyTransition(summary, description string, st Status) (string, string) {
	summary = TagSummary(StripStatusTag(summary), st)

	if loc := statusLineRE.FindStringIndex(description); loc != nil {
		description = description[:loc[0]] + "Status: " + string(st) + description[loc[1]:]
	} else {
		description += "\nStatus: " + string(st)
	}
	return summary, description
}

// CreationStatus is the only automatic transition: admins book confirmed,
// everyone else books pending.
func CreationStatus(isAdmin bool) Status {
	if isAdmin {
		return StatusConfirmed
	}
	return StatusPending
}

// titleStatus extracts a status tag embedded anywhere in a title. The title
// tag deliberately overrides the Status: description line; differently-shaped
// legacy events rely on that tie-break.
func titleStatus(summary string) (Status, bool) {
	lowered := strings.ToLower(summary)
	switch {
	case strings.Contains(lowered, "[pending]"):
		return StatusPending, true
	case strings.Contains(lowered, "[declined]"):
		return StatusDeclined, true
	case strings.Contains(lowered, "[confirmed]"):
		return StatusConfirmed, true
	}
	return "", false
}
