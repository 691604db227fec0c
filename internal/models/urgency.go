package models

import "time"

// TimeOption is the urgency bucket picked when a need is posted
type TimeOption string

const (
	TimeOptionEmergency    TimeOption = "emergency"
	TimeOptionWithin1Hour  TimeOption = "within_1_hour"
	TimeOptionWithin5Hours TimeOption = "within_5_hours"
	TimeOptionToday        TimeOption = "today"
)

var timeOptionLabels = map[TimeOption]string{
	TimeOptionEmergency:    "Emergency",
	TimeOptionWithin1Hour:  "Within 1 hour",
	TimeOptionWithin5Hours: "Within 5 hours",
	TimeOptionToday:        "Today",
}

// ParseNeededAt parses a need deadline
func ParseNeededAt(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// UrgencyTag derives the feed label for a need at the given instant.
// Unparseable deadlines yield an empty tag.
func UrgencyTag(need *BloodNeedRequest, now time.Time) string {
	if label, ok := timeOptionLabels[need.TimeOption]; ok {
		return label
	}

	neededAt, err := ParseNeededAt(need.NeededAtISO)
	if err != nil {
		return ""
	}

	until := neededAt.Sub(now)
	switch {
	case until <= time.Hour:
		return "Within 1 hour"
	case until <= 2*time.Hour:
		return "Urgent"
	}

	local := neededAt.In(now.Location())
	if y, m, d := local.Date(); y == now.Year() && m == now.Month() && d == now.Day() {
		return "Today"
	}
	return local.Format(time.RFC3339)
}
