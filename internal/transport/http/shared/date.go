package shared

import "time"

// ParseDate reads a calendar day. YYYY-MM-DD is preferred; RFC3339 timestamps are
// reduced to their date in the given offset. The result is midnight UTC.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, value)
		if tsErr != nil {
			return time.Time{}, err
		}
		parsed = ts
	}
	y, m, d := parsed.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
