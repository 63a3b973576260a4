// Package leaderboard — handlers.go обрабатывает команду !топ.
package leaderboard

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает команды рейтинга.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик рейтинга.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleTop — команда !топ [неделя|месяц|год|все].
func (h *Handler) HandleTop(ctx context.Context, chatID int64, args []string) {
	window, ok := ParseWindow(strings.Join(args, " "))
	if !ok {
		h.sendMessage(chatID, "🏆 Использование: !топ [неделя|месяц|год|все]")
		return
	}

	text, err := h.service.Top(ctx, window)
	if err != nil {
		log.WithError(err).Error("Ошибка построения рейтинга")
		h.sendMessage(chatID, "❌ Не удалось построить рейтинг")
		return
	}
	h.sendMessage(chatID, text)
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
