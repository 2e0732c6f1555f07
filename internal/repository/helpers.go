package repository

import (
	"database/sql"
	"time"
)

// storedTimeLayout is fixed-width so created_at sorts lexically.
const storedTimeLayout = "2006-01-02T15:04:05.000000Z"

func formatStored(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseStored(s string) time.Time {
	t, err := time.Parse(storedTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseNullableTime parses an RFC3339 column. NULL, empty or malformed
// values become nil.
func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTime keeps the caller's offset so events read back in the zone
// they were planned in.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// clock is swapped in tests that need deterministic created_at values.
var clock = func() time.Time { return time.Now() }
