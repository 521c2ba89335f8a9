package sqlite

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timeLayout is fixed-width so TEXT ordering matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseRFC3339 parses the timestamp strings stored in SQLite.
// SQLite has no native datetime type; we store RFC3339 TEXT.
func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// timestamp scans and writes the TEXT timestamp columns.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case string:
		parsed, err := parseRFC3339(v)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		t.Time = v.UTC()
		return nil
	default:
		return fmt.Errorf("sqlite: cannot scan %T into timestamp", src)
	}
}

func (t timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return formatTime(t.Time), nil
}

// ptr returns nil for the zero time.
func (t timestamp) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	tt := t.Time
	return &tt
}
