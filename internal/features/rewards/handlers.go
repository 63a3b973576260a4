// Package rewards — handlers.go обрабатывает команды !награды и !обменять.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gorodok.ru/karma-bot/internal/common"
	"gorodok.ru/karma-bot/internal/engine"
)

// Handler обрабатывает команды обмена.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик наград.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleList — команда !награды.
func (h *Handler) HandleList(ctx context.Context, chatID int64) {
	text, err := h.service.ListRewards(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения каталога наград")
		h.sendMessage(chatID, "❌ Не удалось получить каталог наград")
		return
	}
	h.sendMessage(chatID, text)
}

// HandleRedeem — команда !обменять <номер>.
// Для наград по чеку команду нужно отправить подписью к фото чека.
func (h *Handler) HandleRedeem(ctx context.Context, message *tgbotapi.Message, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID

	if len(args) == 0 {
		h.sendMessage(chatID, "🎁 Использование: !обменять <номер награды>")
		return
	}

	rewardID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "🎁 Номер награды должен быть числом, см. !награды")
		return
	}

	receiptFileID := extractReceiptFileID(message)

	red, reward, err := h.service.Redeem(ctx, userID, rewardID, receiptFileID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRewardNotFound):
			h.sendMessage(chatID, "❌ Награда с таким номером не найдена")
		case errors.Is(err, common.ErrRewardUnavailable):
			h.sendMessage(chatID, "❌ Награда закончилась или снята с обмена")
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(chatID, fmt.Sprintf("❌ Не хватает баллов: «%s» стоит %s",
				reward.Title, common.FormatBalance(reward.Cost)))
		default:
			log.WithError(err).Error("Ошибка обмена")
			h.sendMessage(chatID, "❌ Не удалось выполнить обмен, попробуйте позже")
		}
		return
	}

	switch red.Status {
	case engine.StatusApproved:
		h.sendMessage(chatID, fmt.Sprintf("🎉 Обмен выполнен! «%s» за %s",
			reward.Title, common.FormatBalance(reward.Cost)))
	case engine.StatusPending:
		h.sendMessage(chatID, fmt.Sprintf("📨 Заявка на «%s» отправлена на проверку. Баллы спишутся после одобрения",
			reward.Title))
	}
}

// HandleMyRedemptions — команда !заявки для обычного участника:
// статусы его последних обменов.
func (h *Handler) HandleMyRedemptions(ctx context.Context, chatID, userID int64) {
	reds, err := h.service.GetUserRedemptions(ctx, userID, 5)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения заявок")
		h.sendMessage(chatID, "❌ Не удалось получить заявки")
		return
	}
	if len(reds) == 0 {
		h.sendMessage(chatID, "📭 У вас пока нет обменов")
		return
	}

	text := "📋 Ваши обмены:\n\n"
	for _, red := range reds {
		text += fmt.Sprintf("• %s — %s, %s\n",
			statusLabel(red.Status), common.FormatBalance(red.PointsCost), red.CreatedAt.Format("02.01.2006"))
	}
	h.sendMessage(chatID, text)
}

func statusLabel(status string) string {
	switch engine.RedemptionStatus(status) {
	case engine.StatusApproved:
		return "✅ одобрено"
	case engine.StatusRejected:
		return "🚫 отклонено"
	default:
		return "⏳ на проверке"
	}
}

// extractReceiptFileID возвращает file_id самого крупного фото в сообщении.
func extractReceiptFileID(message *tgbotapi.Message) string {
	if len(message.Photo) == 0 {
		return ""
	}
	return message.Photo[len(message.Photo)-1].FileID
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
