package leaderboard

import (
	"testing"

	"gorodok.ru/karma-bot/internal/engine"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		arg    string
		window engine.Window
		ok     bool
	}{
		{"", engine.WindowWeek, true},
		{"неделя", engine.WindowWeek, true},
		{"месяц", engine.WindowMonth, true},
		{"год", engine.WindowYear, true},
		{"все", engine.WindowAll, true},
		{"всё", engine.WindowAll, true},
		{"МЕСЯЦ", engine.WindowMonth, true},
		{"  год  ", engine.WindowYear, true},
		{"вчера", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseWindow(tt.arg)
		if ok != tt.ok || got != tt.window {
			t.Errorf("ParseWindow(%q) = (%q, %v), ожидалось (%q, %v)", tt.arg, got, ok, tt.window, tt.ok)
		}
	}
}

func TestRankLabel(t *testing.T) {
	if rankLabel(1) != "🥇" || rankLabel(2) != "🥈" || rankLabel(3) != "🥉" {
		t.Error("первые три места должны получать медали")
	}
	if rankLabel(4) != "4." {
		t.Errorf("rankLabel(4) = %q, ожидалось %q", rankLabel(4), "4.")
	}
}
