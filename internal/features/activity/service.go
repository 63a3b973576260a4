// Package activity — service.go содержит бизнес-логику начислений.
// Сервис определяет обстоятельства события (выходной, праздник, ЧС, время
// суток), прогоняет его через движок и решает, что показать пользователю.
package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"gorodok.ru/karma-bot/internal/common"
	"gorodok.ru/karma-bot/internal/config"
	"gorodok.ru/karma-bot/internal/engine"
)

// Service управляет начислением баллов.
type Service struct {
	repo     *Repository
	eng      *engine.Engine
	badges   *engine.BadgeSet
	calendar *config.FestivalCalendar
	cfg      *config.Config
	loc      *time.Location
}

// NewService создаёт сервис активностей.
// Движок собирается один раз из каталога и множителей конфигурации.
func NewService(repo *Repository, cfg *config.Config, calendar *config.FestivalCalendar, loc *time.Location) *Service {
	eng := engine.New(
		engine.DefaultCatalogue(),
		engine.Multipliers{
			Weekend:   cfg.MultiplierWeekend,
			Festival:  cfg.MultiplierFestival,
			Emergency: cfg.MultiplierEmergency,
			EarlyBird: cfg.MultiplierEarlyBird,
			NightOwl:  cfg.MultiplierNightOwl,
		},
		engine.DefaultStreakTiers(),
	)

	var badges *engine.BadgeSet
	if cfg.FeatureBadgesEnabled {
		badges = engine.NewBadgeSet()
	}

	return &Service{
		repo:     repo,
		eng:      eng,
		badges:   badges,
		calendar: calendar,
		cfg:      cfg,
		loc:      loc,
	}
}

// Engine возвращает движок кармы (каталог нужен обработчикам).
func (s *Service) Engine() *engine.Engine {
	return s.eng
}

// BadgeSet возвращает реестр значков (nil, если значки отключены).
func (s *Service) BadgeSet() *engine.BadgeSet {
	return s.badges
}

// Track начисляет баллы за активность, совершённую прямо сейчас.
func (s *Service) Track(ctx context.Context, userID int64, kind engine.ActivityKind) (*Result, error) {
	now := common.LocalTime(s.loc)
	ev := engine.ActivityEvent{
		UserID:     userID,
		Kind:       kind,
		OccurredAt: now,
		Day:        common.Midnight(now),
		Context:    s.resolveContext(ctx, now),
	}

	result, err := s.repo.RecordActivity(ctx, ev, s.eng, s.badges)
	if err != nil {
		if errors.Is(err, engine.ErrCapExceeded) {
			return nil, common.ErrDailyLimitReached
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"kind":    kind,
		"points":  result.Transactions[0].FinalPoints,
		"streak":  result.Streak,
	}).Info("Активность засчитана")

	return result, nil
}

// ThankYou начисляет баллы получателю «спасибо».
func (s *Service) ThankYou(ctx context.Context, fromUserID, toUserID int64) (*Result, error) {
	if fromUserID == toUserID {
		return nil, common.ErrSelfThank
	}
	return s.Track(ctx, toUserID, engine.KindThankReceived)
}

// TrackMessage обрабатывает обычное сообщение в чате как форумную активность.
// Вызывается для КАЖДОГО сообщения в COMMUNITY_CHAT_ID.
// Начисление молчаливое: пользователь не получает уведомление,
// исчерпанный дневной лимит — не ошибка.
func (s *Service) TrackMessage(ctx context.Context, userID int64, text string, isReply bool) error {
	if !IsValidForumMessage(text) {
		return nil
	}

	kind := engine.KindForumPost
	if isReply {
		kind = engine.KindForumReply
	}

	_, err := s.Track(ctx, userID, kind)
	if errors.Is(err, common.ErrDailyLimitReached) {
		return nil
	}
	return err
}

// Penalty применяет штраф к пользователю. Только для администраторов,
// проверка прав — на стороне вызывающего кода.
func (s *Service) Penalty(ctx context.Context, userID int64, kind engine.ActivityKind) (*Result, error) {
	entry, err := s.eng.Catalogue().Lookup(kind)
	if err != nil {
		return nil, err
	}
	if !entry.IsPenalty() {
		return nil, fmt.Errorf("%q не является штрафом", kind)
	}
	return s.Track(ctx, userID, kind)
}

// resolveContext определяет обстоятельства события по локальному времени.
func (s *Service) resolveContext(ctx context.Context, now time.Time) engine.Context {
	day := common.Midnight(now)

	emergency, err := s.repo.IsEmergencyDay(ctx, day)
	if err != nil {
		log.WithError(err).Warn("Не удалось проверить режим ЧС, считаем обычным днём")
	}

	hour := now.Hour()
	return engine.Context{
		Weekend:   now.Weekday() == time.Saturday || now.Weekday() == time.Sunday,
		Festival:  s.calendar.IsFestival(now),
		Emergency: emergency,
		EarlyBird: hour >= s.cfg.EarlyBirdStartHour && hour < s.cfg.EarlyBirdEndHour,
		NightOwl:  hour >= s.cfg.NightOwlStartHour && hour < s.cfg.NightOwlEndHour,
	}
}

// GetState возвращает состояние кармы пользователя.
func (s *Service) GetState(ctx context.Context, userID int64) (*KarmaState, error) {
	return s.repo.GetState(ctx, userID)
}

// GetBadges возвращает значки пользователя.
func (s *Service) GetBadges(ctx context.Context, userID int64) ([]*EarnedBadge, error) {
	return s.repo.GetBadges(ctx, userID)
}

// EnsureState создаёт запись кармы для нового участника.
func (s *Service) EnsureState(ctx context.Context, userID int64) error {
	return s.repo.EnsureState(ctx, userID)
}

// SetEmergencyDay объявляет ЧС на сегодня.
func (s *Service) SetEmergencyDay(ctx context.Context, declaredBy int64) error {
	return s.repo.SetEmergencyDay(ctx, common.LocalDate(s.loc), declaredBy)
}

// ClearEmergencyDay снимает ЧС с сегодняшнего дня.
func (s *Service) ClearEmergencyDay(ctx context.Context) error {
	return s.repo.ClearEmergencyDay(ctx, common.LocalDate(s.loc))
}

// GetHistory возвращает форматированную историю начислений.
// Последние 10 записей. Если больше 5 — оборачивает хвост в спойлер.
func (s *Service) GetHistory(ctx context.Context, userID int64) (string, error) {
	txs, err := s.repo.GetTransactions(ctx, userID, 10)
	if err != nil {
		return "", err
	}

	if len(txs) == 0 {
		return "📋 У вас пока нет начислений", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d начислений:\n\n", len(txs)))

	var lines []string
	for i, tx := range txs {
		line := fmt.Sprintf("%d. %s | %s | %s",
			i+1,
			common.FormatDateTime(tx.AppliedAt, s.loc),
			common.FormatPointsAmount(tx.FinalPoints),
			tx.Reason,
		)
		lines = append(lines, line)
	}

	if len(lines) > 5 {
		for _, line := range lines[:5] {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n||")
		for _, line := range lines[5:] {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("||")
	} else {
		for _, line := range lines {
			sb.WriteString(line + "\n")
		}
	}

	return sb.String(), nil
}

// SendStreakReminders отправляет напоминания тем, чья серия под угрозой:
// вчера активность была, сегодня ещё нет. Запускается кроном вечером.
func (s *Service) SendStreakReminders(ctx context.Context, sendFunc func(userID int64, text string)) error {
	today := common.LocalDate(s.loc)

	atRisk, err := s.repo.GetStatesAtRisk(ctx, today, s.cfg.StreakReminderMinDays)
	if err != nil {
		return err
	}

	for _, state := range atRisk {
		msg := fmt.Sprintf("⚠️ Твоя серия — %d %s подряд! Сделай доброе дело сегодня, чтобы не потерять прогресс",
			state.CurrentStreak, common.PluralizeDays(state.CurrentStreak))
		sendFunc(state.UserID, msg)

		if err := s.repo.MarkReminderSent(ctx, state.UserID); err != nil {
			log.WithError(err).WithField("user_id", state.UserID).Error("Ошибка пометки напоминания")
		}
	}

	if len(atRisk) > 0 {
		log.WithField("count", len(atRisk)).Info("Напоминания о сериях отправлены")
	}
	return nil
}

// ResetReminderFlags сбрасывает дневные флаги напоминаний. Крон в полночь.
func (s *Service) ResetReminderFlags(ctx context.Context) error {
	return s.repo.ResetReminderFlags(ctx)
}
