// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go создаёт все сервисы, подключает обработчики и запускает polling.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gorodok.ru/karma-bot/internal/bot/filters"
	"gorodok.ru/karma-bot/internal/bot/middleware"
	"gorodok.ru/karma-bot/internal/config"
	"gorodok.ru/karma-bot/internal/engine"
	"gorodok.ru/karma-bot/internal/features/activity"
	"gorodok.ru/karma-bot/internal/features/admin"
	"gorodok.ru/karma-bot/internal/features/leaderboard"
	"gorodok.ru/karma-bot/internal/features/members"
	"gorodok.ru/karma-bot/internal/features/rewards"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberHandler      *members.Handler
	activityHandler    *activity.Handler
	leaderboardHandler *leaderboard.Handler
	rewardsHandler     *rewards.Handler
	adminHandler       *admin.Handler

	memberService   *members.Service
	activityService *activity.Service
	rewardsService  *rewards.Service

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	memberHandler *members.Handler,
	activityService *activity.Service,
	activityHandler *activity.Handler,
	leaderboardHandler *leaderboard.Handler,
	rewardsService *rewards.Service,
	rewardsHandler *rewards.Handler,
	adminHandler *admin.Handler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:                api,
		cfg:                cfg,
		chatFilter:         chatFilter,
		rateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberHandler:      memberHandler,
		activityHandler:    activityHandler,
		leaderboardHandler: leaderboardHandler,
		rewardsHandler:     rewardsHandler,
		adminHandler:       adminHandler,
		memberService:      memberService,
		activityService:    activityService,
		rewardsService:     rewardsService,
		parser:             NewCommandParser(),
		inflight:           make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	// Обрабатываем новых участников (событие вступления)
	if update.Message != nil && update.Message.NewChatMembers != nil {
		if update.Message.Chat != nil && update.Message.Chat.ID == b.cfg.CommunityChatID {
			b.handleNewMembers(ctx, update.Message.NewChatMembers)
		}
		return
	}

	// Обрабатываем обычные сообщения.
	// Команда может прийти подписью к фото (чек для !обменять).
	if update.Message == nil {
		return
	}
	message := update.Message
	text := message.Text
	if text == "" {
		text = message.Caption
	}
	if text == "" {
		return
	}

	// Логируем входящее
	middleware.LogMessage(message)

	// Проверяем доступ (COMMUNITY_CHAT_ID или DM участника)
	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	// Rate limiting
	if message.From != nil && !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// EnsureMember — ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	// В DM проверяем админ-панель
	if message.Chat.IsPrivate() {
		handled := b.adminHandler.HandleAdminMessage(ctx, chatID, userID, text)
		if handled {
			return
		}
	}

	// «Спасибо» в ответ на чужое сообщение приносит автору баллы
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		if activity.IsThankYou(text) {
			b.activityHandler.HandleThankYou(ctx, chatID, userID, message.ReplyToMessage.From.ID)
			return
		}
	}

	// Парсим команду
	cmd, args, isCommand := b.parser.ParseCommand(text)

	if isCommand {
		b.routeCommand(ctx, message, cmd, args)
		return
	} else if chatID == b.cfg.CommunityChatID {
		// Не команда в основном чате — пассивный учёт сообщений форума
		b.activityHandler.HandleChatMessage(ctx, userID, text, message.ReplyToMessage != nil)
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID

	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help", "помощь":
		b.sendMessage(chatID, helpText)

	case "login":
		if chatID == userID {
			b.adminHandler.HandleAdminMessage(ctx, chatID, userID, strings.Join(args, " "))
		}

	case "отчет", "отчёт":
		b.activityHandler.HandleActivity(ctx, chatID, userID, engine.KindReportIssue)

	case "переработка":
		b.activityHandler.HandleActivity(ctx, chatID, userID, engine.KindRecycleLog)

	case "добро":
		b.activityHandler.HandleActivity(ctx, chatID, userID, engine.KindMicroAction)

	case "мероприятие":
		b.activityHandler.HandleActivity(ctx, chatID, userID, engine.KindEventCheckin)

	case "гуманитарка":
		b.activityHandler.HandleActivity(ctx, chatID, userID, engine.KindSupplyPickup)

	case "карма", "баллы":
		b.activityHandler.HandleKarma(ctx, chatID, userID)

	case "значки":
		if b.cfg.FeatureBadgesEnabled {
			b.activityHandler.HandleBadges(ctx, chatID, userID)
		}

	case "история":
		b.activityHandler.HandleHistory(ctx, chatID, userID)

	case "топ":
		b.leaderboardHandler.HandleTop(ctx, chatID, args)

	case "награды":
		if b.cfg.FeatureRewardsEnabled {
			b.rewardsHandler.HandleList(ctx, chatID)
		} else {
			b.sendMessage(chatID, "🎁 Обмен баллов временно отключён")
		}

	case "обменять":
		if b.cfg.FeatureRewardsEnabled {
			b.rewardsHandler.HandleRedeem(ctx, message, args)
		} else {
			b.sendMessage(chatID, "🎁 Обмен баллов временно отключён")
		}

	case "заявки":
		b.rewardsHandler.HandleMyRedemptions(ctx, chatID, userID)

	case "одобрить":
		b.adminHandler.HandleApprove(ctx, chatID, userID, args)

	case "отклонить":
		b.adminHandler.HandleReject(ctx, chatID, userID, args)

	case "штраф":
		if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
			b.adminHandler.HandlePenalty(ctx, chatID, userID, message.ReplyToMessage.From.ID, args)
		}
	}
}

const helpText = `Привет! Я бот «Городка» — начисляю баллы за полезные дела.

Активности:
!отчёт — сообщить о городской проблеме
!переработка — сдать вторсырьё
!добро — сделать доброе дело
!мероприятие — отметиться на мероприятии
!гуманитарка — забрать гуманитарную помощь

Баллы:
!карма — баланс и стрик
!значки — заработанные значки
!история — последние начисления
!топ [неделя|месяц|год|все] — рейтинг

Награды:
!награды — каталог наград
!обменять <id> — обменять баллы
!заявки — мои заявки

Ещё «спасибо» в ответ на сообщение дарит автору баллы 💚`

// handleNewMembers обрабатывает вступление новых участников.
func (b *Bot) handleNewMembers(ctx context.Context, newMembers []tgbotapi.User) {
	for _, user := range newMembers {
		if err := b.memberService.HandleNewMember(ctx, user.ID, user.UserName, user.FirstName, user.LastName); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("HandleNewMember failed")
		}
		if err := b.activityService.EnsureState(ctx, user.ID); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("EnsureState failed")
		}

		log.WithField("user", user.UserName).Info("Новый участник обработан")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	} else {
		log.WithField("user_id", userID).Debug("message sent")
	}
}

// SendMessageToChat отправляет сообщение в чат (для плановых публикаций).
func (b *Bot) SendMessageToChat(chatID int64, text string) {
	b.sendMessage(chatID, text)
}

// CommandParser парсит русские команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
