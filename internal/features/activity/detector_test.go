package activity

import "testing"

func TestIsThankYou(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"спасибо", true},
		{"Спасибо!", true},
		{"  СПАСИБО!!! ", true},
		{"благодарю", true},
		{"спасибо большое", false},
		{"не за что", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsThankYou(tt.text); got != tt.want {
			t.Errorf("IsThankYou(%q) = %v, ожидалось %v", tt.text, got, tt.want)
		}
	}
}

func TestIsValidForumMessage(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"во дворе сломали лавочку", true},
		{"ок", false},
		{"да нет", false},
		{"!отчёт яма на дороге", false},
		{"/start", false},
		{"  лишние   пробелы   считаются  ", true},
	}
	for _, tt := range tests {
		if got := IsValidForumMessage(tt.text); got != tt.want {
			t.Errorf("IsValidForumMessage(%q) = %v, ожидалось %v", tt.text, got, tt.want)
		}
	}
}
