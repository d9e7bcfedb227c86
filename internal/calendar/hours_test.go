package calendar

import (
	"reflect"
	"testing"
	"time"
)

func mustDate(t *testing.T, year int, month time.Month, day int) time.Time {
	t.Helper()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func standardHours() WorkingHours {
	return WorkingHours{
		Weekday:  &DayHours{Start: "08:00", End: "17:30"},
		Saturday: &DayHours{Start: "09:00", End: "13:00"},
	}
}

func TestDayWindow_WeekdayUsesWeekdayHours(t *testing.T) {
	// 2026-09-02 is a Wednesday.
	win, open := DayWindow(standardHours(), mustDate(t, 2026, 9, 2))
	if !open {
		t.Fatalf("expected weekday to be open")
	}
	if win.StartMin != 8*60 || win.EndMin != 17*60+30 {
		t.Fatalf("window = %+v, want 480..1050", win)
	}
}

func TestDayWindow_SaturdayUsesSaturdayHours(t *testing.T) {
	// 2026-09-05 is a Saturday.
	win, open := DayWindow(standardHours(), mustDate(t, 2026, 9, 5))
	if !open {
		t.Fatalf("expected saturday to be open")
	}
	if win.StartMin != 9*60 || win.EndMin != 13*60 {
		t.Fatalf("window = %+v, want 540..780", win)
	}
}

func TestDayWindow_SundayAlwaysClosed(t *testing.T) {
	// 2026-09-06 is a Sunday.
	if _, open := DayWindow(standardHours(), mustDate(t, 2026, 9, 6)); open {
		t.Fatalf("expected sunday to be closed")
	}
}

func TestDayWindow_MissingSaturdayMeansClosed(t *testing.T) {
	wh := WorkingHours{Weekday: &DayHours{Start: "08:00", End: "17:30"}}
	if _, open := DayWindow(wh, mustDate(t, 2026, 9, 5)); open {
		t.Fatalf("expected saturday without hours to be closed")
	}
}

func TestDayWindow_InvertedHoursMeansClosed(t *testing.T) {
	wh := WorkingHours{Weekday: &DayHours{Start: "17:00", End: "08:00"}}
	if _, open := DayWindow(wh, mustDate(t, 2026, 9, 2)); open {
		t.Fatalf("expected inverted hours to be treated as closed")
	}
}

func TestSlots_StandardDayYields19Slots(t *testing.T) {
	win := Window{StartMin: 8 * 60, EndMin: 17*60 + 30}
	slots := win.Slots(30)
	if len(slots) != 19 {
		t.Fatalf("len(slots) = %d, want 19", len(slots))
	}
	if slots[0] != "08:00" {
		t.Fatalf("first slot = %s, want 08:00", slots[0])
	}
	if slots[len(slots)-1] != "17:00" {
		t.Fatalf("last slot = %s, want 17:00", slots[len(slots)-1])
	}
}

func TestSlots_TailShorterThanStepDropped(t *testing.T) {
	// 09:00..10:15 fits 09:00 and 09:30; 10:00 would end at 10:30.
	win := Window{StartMin: 9 * 60, EndMin: 10*60 + 15}
	got := win.Slots(30)
	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
}

func TestContains_GridAlignment(t *testing.T) {
	win := Window{StartMin: 8 * 60, EndMin: 17*60 + 30}

	cases := []struct {
		hhmm string
		want bool
	}{
		{"08:00", true},
		{"17:00", true},  // ends exactly at 17:30
		{"17:30", false}, // would end past the window
		{"08:15", false}, // off the 30-minute grid
		{"07:30", false}, // before opening
		{"8:00", false},  // malformed
		{"25:00", false},
	}
	for _, c := range cases {
		if got := win.Contains(c.hhmm, 30); got != c.want {
			t.Fatalf("Contains(%q) = %v, want %v", c.hhmm, got, c.want)
		}
	}
}

func TestClockToMinutes(t *testing.T) {
	if got, err := ClockToMinutes("17:30"); err != nil || got != 17*60+30 {
		t.Fatalf("ClockToMinutes(17:30) = %d, %v", got, err)
	}
	for _, bad := range []string{"", "9:00", "0900", "24:00", "12:60", "ab:cd"} {
		if _, err := ClockToMinutes(bad); err == nil {
			t.Fatalf("ClockToMinutes(%q): expected error", bad)
		}
	}
}

func TestMinutesToClock_RoundTrip(t *testing.T) {
	for _, min := range []int{0, 8 * 60, 17*60 + 30, 23*60 + 59} {
		back, err := ClockToMinutes(MinutesToClock(min))
		if err != nil || back != min {
			t.Fatalf("round trip %d -> %s -> %d, %v", min, MinutesToClock(min), back, err)
		}
	}
}

func TestParseWorkingHours_EmptyIsClosedEverywhere(t *testing.T) {
	wh, err := ParseWorkingHours(nil)
	if err != nil {
		t.Fatalf("ParseWorkingHours(nil): %v", err)
	}
	if _, open := DayWindow(wh, mustDate(t, 2026, 9, 2)); open {
		t.Fatalf("expected unconfigured hours to mean closed")
	}
}

func TestSubtract_PreservesOrder(t *testing.T) {
	offered := []string{"09:00", "09:30", "10:00", "10:30"}
	got := Subtract(offered, []string{"09:30", "10:30"})
	want := []string{"09:00", "10:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Subtract = %v, want %v", got, want)
	}
}
