// Package calendar holds the pure slot arithmetic of the scheduling core:
// working-hours windows, slot enumeration and containment checks. Nothing
// here touches the store; concurrent callers may see the same slot as
// free, which the booking transaction resolves.
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrBadClock = errors.New("clock value must be HH:MM")

// DayHours is one opening window, e.g. {"start":"08:00","end":"17:30"}.
type DayHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkingHours describes a court's (or judge's) opening windows by day
// type. Sunday is implicitly closed; a nil Saturday means closed too.
type WorkingHours struct {
	Weekday  *DayHours `json:"weekday"`
	Saturday *DayHours `json:"saturday"`
}

// ParseWorkingHours decodes the JSON column of a court or judge row.
// Empty input means no configured hours (always closed).
func ParseWorkingHours(raw []byte) (WorkingHours, error) {
	var wh WorkingHours
	if len(raw) == 0 {
		return wh, nil
	}
	if err := json.Unmarshal(raw, &wh); err != nil {
		return WorkingHours{}, fmt.Errorf("parse working hours: %w", err)
	}
	return wh, nil
}

// Window is a bookable span of one calendar day, in minutes from
// midnight. End is exclusive for slot starts: a slot fits only if its
// end does not pass End.
type Window struct {
	StartMin int
	EndMin   int
}

// DayWindow resolves the opening window for a concrete date.
// Sunday is always closed; Saturday uses the Saturday hours when
// configured; any other day uses the weekday hours when configured.
func DayWindow(wh WorkingHours, date time.Time) (Window, bool) {
	var dh *DayHours
	switch date.Weekday() {
	case time.Sunday:
		return Window{}, false
	case time.Saturday:
		dh = wh.Saturday
	default:
		dh = wh.Weekday
	}
	if dh == nil {
		return Window{}, false
	}

	start, err := ClockToMinutes(dh.Start)
	if err != nil {
		return Window{}, false
	}
	end, err := ClockToMinutes(dh.End)
	if err != nil || end <= start {
		return Window{}, false
	}
	return Window{StartMin: start, EndMin: end}, true
}

// Slots enumerates the offerable slot starts of the window at the given
// step, as "HH:MM" strings. A tail shorter than one step is dropped.
func (w Window) Slots(stepMinutes int) []string {
	if stepMinutes <= 0 || w.EndMin <= w.StartMin {
		return nil
	}
	var out []string
	for cur := w.StartMin; cur+stepMinutes <= w.EndMin; cur += stepMinutes {
		out = append(out, MinutesToClock(cur))
	}
	return out
}

// Contains reports whether hhmm is a valid slot start inside the
// window: aligned to the step grid counted from the window start, and
// ending no later than the window end.
func (w Window) Contains(hhmm string, stepMinutes int) bool {
	t, err := ClockToMinutes(hhmm)
	if err != nil {
		return false
	}
	if t < w.StartMin || t+stepMinutes > w.EndMin {
		return false
	}
	return (t-w.StartMin)%stepMinutes == 0
}

// ClockToMinutes parses "HH:MM" into minutes from midnight.
func ClockToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, ErrBadClock
	}
	h, err := strconv.Atoi(hhmm[:2])
	if err != nil {
		return 0, ErrBadClock
	}
	m, err := strconv.Atoi(hhmm[3:])
	if err != nil {
		return 0, ErrBadClock
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrBadClock
	}
	return h*60 + m, nil
}

// MinutesToClock renders minutes from midnight as "HH:MM".
func MinutesToClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Subtract removes taken slot starts from offered, preserving order.
func Subtract(offered, taken []string) []string {
	if len(taken) == 0 {
		return offered
	}
	busy := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		busy[t] = struct{}{}
	}
	out := make([]string, 0, len(offered))
	for _, s := range offered {
		if _, ok := busy[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
