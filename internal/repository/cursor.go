package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Compound cursor "id:unixmicros" carries both ordering keys so pages stay
// deterministic across posts that share a creation timestamp. Microsecond
// precision matches the timestamp columns, so the (created_at, id)
// comparison never skips rows inside a boundary second.

func parseCursor(cursor string) (time.Time, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format, expected id:timestamp")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid id in cursor: %w", err)
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid timestamp in cursor: %w", err)
	}

	return time.UnixMicro(ts).UTC(), id, nil
}

func formatCursor(t time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", id, t.UnixMicro())
}
