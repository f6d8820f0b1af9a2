package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thrasher-corp/forecaster/database"
)

// SQLiteTimeFormat is a fixed width UTC layout so stored timestamps sort
// lexically in time order
const SQLiteTimeFormat = "2006-01-02T15:04:05.000000000Z"

var errUnsupportedTimeType = errors.New("unsupported timestamp type")

// Rebind rewrites ? placeholders to the positional form of dialect
func Rebind(dialect, query string) string {
	if dialect != database.DBPostgreSQL {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r != '?' {
			sb.WriteRune(r)
			continue
		}
		n++
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}

// TimeValue returns t in the form stored by dialect
func TimeValue(dialect string, t time.Time) any {
	if dialect == database.DBSQLite3 {
		return t.UTC().Format(SQLiteTimeFormat)
	}
	return t.UTC()
}

// Time scans a timestamp stored either natively or as text
type Time struct {
	time.Time
}

// Scan implements sql.Scanner
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("%w: %T", errUnsupportedTimeType, src)
}

func (t *Time) parse(s string) error {
	parsed, err := time.Parse(SQLiteTimeFormat, s)
	if err != nil {
		if parsed, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return err
		}
	}
	t.Time = parsed
	return nil
}
