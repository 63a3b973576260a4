package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		CommunityChatID:         -1001234567890,
		BotMaxInflight:          64,
		BotUpdateTimeoutSeconds: 60,
		DBMaxConns:              25,
		DBMinConns:              5,
		MultiplierWeekend:       1.5,
		MultiplierFestival:      2.0,
		MultiplierEmergency:     2.0,
		MultiplierEarlyBird:     1.25,
		MultiplierNightOwl:      1.25,
		EarlyBirdStartHour:      5,
		EarlyBirdEndHour:        8,
		NightOwlStartHour:       22,
		NightOwlEndHour:         24,
		LeaderboardSize:         10,
		LeaderboardPostCron:     "0 12 * * 1",
		AppTimezone:             "Europe/Moscow",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("корректная конфигурация не должна отклоняться: %v", err)
	}
}

func TestValidate_LeaderboardPostCron(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"дефолтное расписание", "0 12 * * 1", false},
		{"каждый час", "0 * * * *", false},
		{"опечатка в выражении", "0 12 * *", true},
		{"мусор вместо cron", "по понедельникам", true},
		{"пустое выражение", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LeaderboardPostCron = tt.expr

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ожидалась ошибка для выражения %q", tt.expr)
				}
				if !strings.Contains(err.Error(), "LEADERBOARD_POST_CRON") {
					t.Errorf("ошибка должна указывать на LEADERBOARD_POST_CRON, получено: %v", err)
				}
			} else if err != nil {
				t.Fatalf("выражение %q должно приниматься: %v", tt.expr, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"нулевой чат", func(c *Config) { c.CommunityChatID = 0 }},
		{"нулевой inflight", func(c *Config) { c.BotMaxInflight = 0 }},
		{"min conns больше max", func(c *Config) { c.DBMinConns = 100 }},
		{"нулевой множитель", func(c *Config) { c.MultiplierFestival = 0 }},
		{"перевёрнутое окно", func(c *Config) { c.EarlyBirdStartHour = 9 }},
		{"нулевой размер топа", func(c *Config) { c.LeaderboardSize = 0 }},
		{"неизвестный пояс", func(c *Config) { c.AppTimezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("ожидалась ошибка валидации")
			}
		})
	}
}
