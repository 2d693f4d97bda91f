package storage

import (
	"fmt"
	"time"
)

// SQLite hands back RETURNING columns without their declared type, so
// timestamps may arrive as text.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

type timestamp time.Time

func (t *timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = timestamp(time.Time{})
		return nil
	case time.Time:
		*t = timestamp(v)
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *timestamp) parse(raw string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", raw)
}
