// internal/domain/schedule/tags.go
package schedule

import "time"

// Tag is a machine-checkable annotation on a candidate date. Tags are
// independent booleans (a date can carry several) and are emitted in the
// order declared below. The presentation layer maps them to localized
// labels/glyphs; nothing here is display text.
type Tag string

const (
	// TagFullAttendance: every registered member is available.
	TagFullAttendance Tag = "full_attendance"
	// TagHighTurnout: available count is at least twice the minimum.
	TagHighTurnout Tag = "high_turnout"
	// TagRequiredPresent: required members were requested and all are
	// available. Redundant with the required-member filter, but surfaced so
	// the caller can render it without re-deriving.
	TagRequiredPresent Tag = "required_present"
	// TagWeekday / TagWeekend: exactly one of the two is always present.
	TagWeekday Tag = "weekday"
	TagWeekend Tag = "weekend"
)

// tagsFor computes the tag set for a candidate date.
func tagsFor(wd time.Weekday, count, registered, minParticipants int, hasRequired bool) []Tag {
	var tags []Tag
	if registered > 0 && count >= registered {
		tags = append(tags, TagFullAttendance)
	}
	if count >= 2*minParticipants {
		tags = append(tags, TagHighTurnout)
	}
	if hasRequired {
		// Filtering already guaranteed presence for surviving dates.
		tags = append(tags, TagRequiredPresent)
	}
	if wd == time.Saturday || wd == time.Sunday {
		tags = append(tags, TagWeekend)
	} else {
		tags = append(tags, TagWeekday)
	}
	return tags
}
