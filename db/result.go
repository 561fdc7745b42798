package db

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QueryResult holds the output of an arbitrary SQL statement.
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	RowCount int
	Status   string // e.g. "SELECT 5", "INSERT 0 1", "(3 rows)"
}

// Text renders the result the way it is handed to the model: a header
// line of column names, then one line per row, values joined by " | ".
// A result without rows renders as "".
func (r *QueryResult) Text() string {
	if r == nil || len(r.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(r.Columns, " | "))
	for _, row := range r.Rows {
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(row, " | "))
	}
	return sb.String()
}

// FormatValue renders a driver value. Byte slices (MySQL returns most
// columns this way) become strings, NULL becomes "NULL" and floats are
// written without an exponent.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	case driver.Valuer:
		dv, err := t.Value()
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return FormatValue(dv)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func rowStatus(n int) string {
	return fmt.Sprintf("(%d row%s)", n, plural(n))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
