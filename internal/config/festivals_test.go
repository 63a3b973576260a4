package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCalendar(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "festivals.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFestivalCalendar(t *testing.T) {
	loc := time.UTC
	path := writeCalendar(t, `
festivals:
  - name: День города
    from: 2026-09-05
    to: 2026-09-06
  - name: Субботник
    from: 2026-04-25
`)

	cal, err := LoadFestivalCalendar(path, loc)
	if err != nil {
		t.Fatalf("LoadFestivalCalendar: %v", err)
	}

	tests := []struct {
		day  time.Time
		want bool
	}{
		{time.Date(2026, 9, 5, 10, 0, 0, 0, loc), true},
		{time.Date(2026, 9, 6, 23, 59, 0, 0, loc), true},
		{time.Date(2026, 9, 7, 0, 0, 0, 0, loc), false},
		{time.Date(2026, 4, 25, 12, 0, 0, 0, loc), true},
		{time.Date(2026, 4, 26, 12, 0, 0, 0, loc), false},
	}
	for _, tt := range tests {
		if got := cal.IsFestival(tt.day); got != tt.want {
			t.Errorf("IsFestival(%s) = %v, ожидалось %v", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}

	if name, ok := cal.FestivalName(time.Date(2026, 9, 5, 0, 0, 0, 0, loc)); !ok || name != "День города" {
		t.Errorf("FestivalName = %q, %v", name, ok)
	}
}

func TestLoadFestivalCalendar_EmptyPath(t *testing.T) {
	cal, err := LoadFestivalCalendar("", time.UTC)
	if err != nil {
		t.Fatalf("пустой путь должен давать пустой календарь: %v", err)
	}
	if cal.IsFestival(time.Now()) {
		t.Error("пустой календарь нашёл праздник")
	}
}

func TestLoadFestivalCalendar_BadRange(t *testing.T) {
	path := writeCalendar(t, `
festivals:
  - name: Наоборот
    from: 2026-09-06
    to: 2026-09-05
`)
	if _, err := LoadFestivalCalendar(path, time.UTC); err == nil {
		t.Error("календарь с to раньше from принят")
	}
}
