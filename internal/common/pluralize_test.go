package common

import "testing"

func TestPluralizePoints(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "баллов"},
		{1, "балл"},
		{2, "балла"},
		{5, "баллов"},
		{11, "баллов"},
		{14, "баллов"},
		{21, "балл"},
		{23, "балла"},
		{100, "баллов"},
		{-3, "балла"},
	}
	for _, tt := range tests {
		if got := PluralizePoints(tt.n); got != tt.want {
			t.Errorf("PluralizePoints(%d) = %q, ожидалось %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatPointsAmount(t *testing.T) {
	if got := FormatPointsAmount(100); got != "+100 баллов" {
		t.Errorf("FormatPointsAmount(100) = %q", got)
	}
	if got := FormatPointsAmount(-50); got != "-50 баллов" {
		t.Errorf("FormatPointsAmount(-50) = %q", got)
	}
	if got := FormatPointsAmount(1); got != "+1 балл" {
		t.Errorf("FormatPointsAmount(1) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{2350, "2 350"},
		{1000000, "1 000 000"},
		{-4200, "-4 200"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, ожидалось %q", tt.n, got, tt.want)
		}
	}
}
