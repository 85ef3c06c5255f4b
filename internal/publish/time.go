package publish

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/postpilot/postpilot/pkg/models"
)

// Layouts accepted for schedule times, as produced by datetime-local inputs.
// A space is tolerated in place of the 'T'.
var scheduleLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseScheduleTime normalizes a raw JSON schedule_time value — either an
// ISO-like string or a numeric epoch-millisecond value — into a time.Time.
// Anything that fails to parse is a ValidationError, never a silent default.
func ParseScheduleTime(raw json.RawMessage) (time.Time, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return time.Time{}, models.NewValidationError("scheduleTime", "required")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseScheduleString(s)
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return time.UnixMilli(millis), nil
	}

	return time.Time{}, models.NewValidationError("scheduleTime", "must be a date-time string or epoch milliseconds")
}

func parseScheduleString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, models.NewValidationError("scheduleTime", "required")
	}

	// A purely numeric string is treated as epoch milliseconds too.
	if millis, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(millis), nil
	}

	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, models.NewValidationError("scheduleTime", "unrecognized date-time format "+strconv.Quote(s))
}
