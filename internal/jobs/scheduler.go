// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: полуночный сброс флагов напоминаний,
// вечерние напоминания о стрике и еженедельная публикация рейтинга.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"gorodok.ru/karma-bot/internal/config"
	"gorodok.ru/karma-bot/internal/engine"
	"gorodok.ru/karma-bot/internal/features/activity"
	"gorodok.ru/karma-bot/internal/features/leaderboard"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron               *cron.Cron
	cfg                *config.Config
	activityService    *activity.Service
	leaderboardService *leaderboard.Service
	sendToUser         func(userID int64, text string)
	sendToChat         func(chatID int64, text string)
}

// NewScheduler создаёт планировщик задач в часовом поясе сообщества.
func NewScheduler(
	cfg *config.Config,
	loc *time.Location,
	activityService *activity.Service,
	leaderboardService *leaderboard.Service,
	sendToUser func(userID int64, text string),
	sendToChat func(chatID int64, text string),
) *Scheduler {
	return &Scheduler{
		cron:               cron.New(cron.WithLocation(loc)),
		cfg:                cfg,
		activityService:    activityService,
		leaderboardService: leaderboardService,
		sendToUser:         sendToUser,
		sendToChat:         sendToChat,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Полночь: сброс флагов «напоминание уже отправлено»
	s.cron.AddFunc("0 0 * * *", func() {
		log.Info("[CRON] Сброс флагов напоминаний")
		if err := s.activityService.ResetReminderFlags(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка сброса флагов")
		}
	})

	// Вечер: напоминания тем, кто сегодня ещё не был активен и рискует стриком
	if s.cfg.FeatureStreaksEnabled {
		spec := fmt.Sprintf("0 %d * * *", s.cfg.StreakReminderHour)
		s.cron.AddFunc(spec, func() {
			log.Info("[CRON] Рассылка напоминаний о стрике")
			if err := s.activityService.SendStreakReminders(ctx, s.sendToUser); err != nil {
				log.WithError(err).Error("[CRON] Ошибка рассылки напоминаний")
			}
		})
	}

	// Еженедельная публикация рейтинга в основной чат.
	// Выражение задаётся через LEADERBOARD_POST_CRON.
	if _, err := s.cron.AddFunc(s.cfg.LeaderboardPostCron, func() {
		log.Info("[CRON] Публикация недельного рейтинга")
		text, err := s.leaderboardService.Top(ctx, engine.WindowWeek)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка построения рейтинга")
			return
		}
		s.sendToChat(s.cfg.CommunityChatID, text)
	}); err != nil {
		log.WithError(err).WithField("cron", s.cfg.LeaderboardPostCron).
			Error("Некорректное расписание публикации рейтинга, задача не запланирована")
	}

	s.cron.Start()
	log.WithField("timezone", s.cfg.AppTimezone).Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
