package calendar

import (
	"fmt"
	"strings"
	"time"
)

// ParseWeekday accepts an English weekday name (or its first three letters) or 0-6.
func ParseWeekday(value string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if len(v) == 1 && v[0] >= '0' && v[0] <= '6' {
		return time.Weekday(v[0] - '0'), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || (len(v) == 3 && strings.HasPrefix(name, v)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", value)
}
