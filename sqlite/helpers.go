package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// scanTime decodes a timestamp column. Timestamps are stored as RFC3339
// TEXT so rows stay readable in the sqlite3 shell.
func scanTime(column, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s timestamp %q: %w", column, value, err)
	}
	return t, nil
}

// paginate appends LIMIT and OFFSET clauses for the positive filter values
// and returns the extended argument list.
func paginate(query *strings.Builder, args []any, limit, offset int) []any {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, offset)
	}
	return args
}
