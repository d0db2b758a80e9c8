package models

import (
	"fmt"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,

	// Portuguese names as they appear in the source calendars.
	"domingo": time.Sunday,
	"segunda": time.Monday,
	"terca":   time.Tuesday,
	"terça":   time.Tuesday,
	"quarta":  time.Wednesday,
	"quinta":  time.Thursday,
	"sexta":   time.Friday,
	"sabado":  time.Saturday,
	"sábado":  time.Saturday,
}

// ParseWeekday resolves an English or Portuguese weekday name.
func ParseWeekday(raw string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimSuffix(key, "-feira")
	if wd, ok := weekdayNames[key]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

// ParseWeekdaySet resolves a list of weekday names rejecting duplicates.
func ParseWeekdaySet(raw []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool, len(raw))
	out := make([]time.Weekday, 0, len(raw))
	for _, name := range raw {
		wd, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		if seen[wd] {
			continue
		}
		seen[wd] = true
		out = append(out, wd)
	}
	return out, nil
}
