// Package activity — handlers.go обрабатывает команды начислений и «спасибо».
package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gorodok.ru/karma-bot/internal/common"
	"gorodok.ru/karma-bot/internal/engine"
)

// Handler обрабатывает события активностей.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик активностей.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// Человекочитаемые названия активностей для ответов бота.
var kindTitles = map[engine.ActivityKind]string{
	engine.KindReportIssue:  "сигнал о проблеме",
	engine.KindRecycleLog:   "сдачу вторсырья",
	engine.KindMicroAction:  "доброе дело",
	engine.KindEventCheckin: "участие в мероприятии",
	engine.KindSupplyPickup: "помощь с гуманитаркой",
}

// HandleActivity — общий обработчик командных активностей
// (!отчёт, !переработка, !добро, !мероприятие, !гуманитарка).
func (h *Handler) HandleActivity(ctx context.Context, chatID, userID int64, kind engine.ActivityKind) {
	result, err := h.service.Track(ctx, userID, kind)
	if err != nil {
		if errors.Is(err, common.ErrDailyLimitReached) {
			h.sendMessage(chatID, "⏳ "+common.ErrDailyLimitReached.Error())
			return
		}
		log.WithError(err).WithField("kind", kind).Error("Ошибка начисления")
		h.sendMessage(chatID, "❌ Не удалось засчитать активность, попробуйте позже")
		return
	}

	h.sendMessage(chatID, formatAwardMessage(result, kind))
}

// HandleThankYou обрабатывает «спасибо» в ответе на сообщение.
// Баллы получает автор сообщения, на которое ответили.
func (h *Handler) HandleThankYou(ctx context.Context, chatID, fromUserID, toUserID int64) {
	result, err := h.service.ThankYou(ctx, fromUserID, toUserID)
	if err != nil {
		// Лимит или само-спасибо: молча, чтобы не засорять чат
		log.WithError(err).Debug("Спасибо не засчитано")
		return
	}

	msg := fmt.Sprintf("💚 %s за «спасибо»!", common.FormatPointsAmount(result.Transactions[0].FinalPoints))
	if len(result.NewBadges) > 0 {
		msg += "\n" + formatNewBadges(result.NewBadges)
	}
	h.sendMessage(chatID, msg)
}

// HandleChatMessage считает обычное сообщение как форумную активность. Молча.
func (h *Handler) HandleChatMessage(ctx context.Context, userID int64, text string, isReply bool) {
	if err := h.service.TrackMessage(ctx, userID, text, isReply); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Форумная активность не засчитана")
	}
}

// HandleKarma — команда !карма. Показывает свой баланс, серию и значки.
func (h *Handler) HandleKarma(ctx context.Context, chatID, userID int64) {
	state, err := h.service.GetState(ctx, userID)
	if err != nil {
		h.sendMessage(chatID, "⭐ Карма пока пуста — сделай первое доброе дело!")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⭐ Карма: %s\n", common.FormatBalance(state.TotalPoints)))
	if state.CurrentStreak > 0 {
		sb.WriteString(fmt.Sprintf("🔥 Серия: %d %s подряд (рекорд — %d)\n",
			state.CurrentStreak, common.PluralizeDays(state.CurrentStreak), state.LongestStreak))
	}
	sb.WriteString(fmt.Sprintf("📈 Всего заработано: %s", common.FormatNumber(state.TotalEarned)))

	h.sendMessage(chatID, sb.String())
}

// HandleBadges — команда !значки. Список полученных значков.
func (h *Handler) HandleBadges(ctx context.Context, chatID, userID int64) {
	set := h.service.BadgeSet()
	if set == nil {
		h.sendMessage(chatID, "🏅 Значки временно отключены")
		return
	}

	earned, err := h.service.GetBadges(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения значков")
		h.sendMessage(chatID, "❌ Не удалось получить значки")
		return
	}
	if len(earned) == 0 {
		h.sendMessage(chatID, "🏅 Значков пока нет. Всё впереди!")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏅 Твои значки (%d из %d):\n\n", len(earned), len(set.Registry())))
	for _, e := range earned {
		if b, ok := set.ByID(e.BadgeID); ok {
			sb.WriteString(fmt.Sprintf("%s «%s» — %s\n", tierEmoji(b.Tier), b.Name, b.Description))
		}
	}
	h.sendMessage(chatID, sb.String())
}

// HandleHistory — команда !история. Последние начисления.
func (h *Handler) HandleHistory(ctx context.Context, chatID, userID int64) {
	history, err := h.service.GetHistory(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения истории")
		h.sendMessage(chatID, "❌ Не удалось получить историю")
		return
	}
	h.sendMessage(chatID, history)
}

// formatAwardMessage собирает ответ на успешное начисление:
// баллы, множитель, бонус серии и новые значки.
func formatAwardMessage(result *Result, kind engine.ActivityKind) string {
	main := result.Transactions[0]

	title, ok := kindTitles[kind]
	if !ok {
		title = string(kind)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ %s за %s!", common.FormatPointsAmount(main.FinalPoints), title))
	if main.Multiplier != 1.0 {
		sb.WriteString(fmt.Sprintf(" (множитель ×%.2f)", main.Multiplier))
	}

	// Вторая транзакция — бонус за серию
	for _, tx := range result.Transactions[1:] {
		if tx.Kind == engine.KindStreakBonus {
			sb.WriteString(fmt.Sprintf("\n🔥 %d %s подряд — бонус %s!",
				result.Streak, common.PluralizeDays(result.Streak), common.FormatPointsAmount(tx.FinalPoints)))
		}
	}

	if len(result.NewBadges) > 0 {
		sb.WriteString("\n" + formatNewBadges(result.NewBadges))
	}

	sb.WriteString(fmt.Sprintf("\nБаланс: %s", common.FormatBalance(result.TotalPoints)))
	return sb.String()
}

func formatNewBadges(badges []engine.Badge) string {
	var sb strings.Builder
	for i, b := range badges {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("🏅 Новый значок: %s «%s»", tierEmoji(b.Tier), b.Name))
	}
	return sb.String()
}

func tierEmoji(tier engine.BadgeTier) string {
	switch tier {
	case engine.TierBronze:
		return "🥉"
	case engine.TierSilver:
		return "🥈"
	case engine.TierGold:
		return "🥇"
	case engine.TierPlatinum:
		return "💎"
	default:
		return "🏅"
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
