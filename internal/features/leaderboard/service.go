// Package leaderboard — service.go строит и форматирует рейтинги.
// Окна считаются календарно в часовом поясе сообщества: неделя — с
// понедельника, месяц — с первого числа, год — с 1 января.
package leaderboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorodok.ru/karma-bot/internal/common"
	"gorodok.ru/karma-bot/internal/config"
	"gorodok.ru/karma-bot/internal/engine"
)

// Service строит рейтинги сообщества.
type Service struct {
	repo *Repository
	cfg  *config.Config
	loc  *time.Location
}

// NewService создаёт сервис рейтинга.
func NewService(repo *Repository, cfg *config.Config, loc *time.Location) *Service {
	return &Service{repo: repo, cfg: cfg, loc: loc}
}

// windowTitles — заголовки рейтингов по окнам.
var windowTitles = map[engine.Window]string{
	engine.WindowWeek:  "за неделю",
	engine.WindowMonth: "за месяц",
	engine.WindowYear:  "за год",
	engine.WindowAll:   "за всё время",
}

// ParseWindow переводит аргумент команды в окно рейтинга.
// Пустой аргумент — неделя.
func ParseWindow(arg string) (engine.Window, bool) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "неделя":
		return engine.WindowWeek, true
	case "месяц":
		return engine.WindowMonth, true
	case "год":
		return engine.WindowYear, true
	case "все", "всё":
		return engine.WindowAll, true
	default:
		return "", false
	}
}

// Top возвращает форматированный топ участников за окно.
func (s *Service) Top(ctx context.Context, window engine.Window) (string, error) {
	since := s.windowStart(window)

	scores, err := s.repo.Scores(ctx, since)
	if err != nil {
		return "", err
	}
	if len(scores) == 0 {
		return fmt.Sprintf("🏆 Рейтинг %s пока пуст", windowTitles[window]), nil
	}

	entries := engine.Rank(scores)
	if len(entries) > s.cfg.LeaderboardSize {
		entries = entries[:s.cfg.LeaderboardSize]
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	names, err := s.repo.DisplayNames(ctx, ids)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 Топ %s:\n\n", windowTitles[window]))
	for _, e := range entries {
		name, ok := names[e.UserID]
		if !ok {
			name = fmt.Sprintf("id%d", e.UserID)
		}
		sb.WriteString(fmt.Sprintf("%s %s — %s\n", rankLabel(e.Rank), name, common.FormatBalance(e.Points)))
	}
	return sb.String(), nil
}

// windowStart возвращает начало окна в поясе сообщества.
// Нулевое время — окно «за всё время».
func (s *Service) windowStart(window engine.Window) time.Time {
	now := common.LocalTime(s.loc)
	today := common.Midnight(now)

	switch window {
	case engine.WindowWeek:
		// Понедельник текущей недели
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset)
	case engine.WindowMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	case engine.WindowYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, s.loc)
	default:
		return time.Time{}
	}
}

// rankLabel — медали для первых трёх мест, номера для остальных.
func rankLabel(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}
