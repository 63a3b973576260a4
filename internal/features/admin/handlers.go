// Package admin — handlers.go обрабатывает взаимодействие с админ-панелью.
// Панель работает через Reply Keyboard в личных сообщениях.
// Поток: аутентификация → клавиатура → выбор действия → пошаговый диалог.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gorodok.ru/karma-bot/internal/common"
	"gorodok.ru/karma-bot/internal/engine"
	"gorodok.ru/karma-bot/internal/features/activity"
	"gorodok.ru/karma-bot/internal/features/members"
	"gorodok.ru/karma-bot/internal/features/rewards"
)

// memberDirectory — доступ к реестру участников. Реализуется members.Service.
type memberDirectory interface {
	GetByUserID(ctx context.Context, userID int64) (*members.Member, error)
}

// Handler обрабатывает админ-команды.
type Handler struct {
	service         *Service
	memberService   memberDirectory
	activityService *activity.Service
	rewardsService  *rewards.Service
	bot             *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(service *Service, memberService memberDirectory, activityService *activity.Service, rewardsService *rewards.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service:         service,
		memberService:   memberService,
		activityService: activityService,
		rewardsService:  rewardsService,
		bot:             bot,
	}
}

// HandleAdminMessage обрабатывает любое сообщение от администратора в DM.
// Определяет текущее состояние диалога и маршрутизирует сообщение.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID int64, userID int64, text string) bool {
	if !h.isAdmin(ctx, userID) {
		return false // Не админ
	}

	state := h.service.GetState(userID)

	if state != nil && state.State == StateAwaitingPassword {
		h.handlePasswordInput(ctx, chatID, userID, text)
		return true
	}

	if !h.service.HasActiveSession(ctx, userID) {
		h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-панели:")
		h.service.SetState(userID, StateAwaitingPassword, nil)
		return true
	}

	h.service.repo.UpdateActivity(ctx, userID)

	if state != nil {
		switch state.State {
		case StateAssignRoleSelect:
			h.handleAssignRoleSelect(ctx, chatID, userID, text)
			return true
		case StateAssignRoleText:
			h.handleAssignRoleText(ctx, chatID, userID, text)
			return true
		}
	}

	// Кнопки клавиатуры
	switch text {
	case "Назначить роль":
		h.startAssignRole(ctx, chatID, userID)
		return true
	case "Заявки на обмен":
		h.showPendingRedemptions(ctx, chatID)
		return true
	case "Объявить ЧС":
		h.handleEmergency(ctx, chatID, userID, []string{"вкл"})
		return true
	case "Снять ЧС":
		h.handleEmergency(ctx, chatID, userID, []string{"выкл"})
		return true
	case "Админ", "Панель", "админ", "панель":
		h.showKeyboard(chatID)
		return true
	}

	// Текстовые админ-команды в DM
	cmd := strings.Fields(text)
	if len(cmd) > 0 {
		switch strings.ToLower(strings.TrimLeft(cmd[0], "!./")) {
		case "заявки":
			h.showPendingRedemptions(ctx, chatID)
			return true
		case "одобрить":
			h.HandleApprove(ctx, chatID, userID, cmd[1:])
			return true
		case "отклонить":
			h.HandleReject(ctx, chatID, userID, cmd[1:])
			return true
		case "чс":
			h.handleEmergency(ctx, chatID, userID, cmd[1:])
			return true
		}
	}

	return false
}

// handlePasswordInput обрабатывает ввод пароля.
func (h *Handler) handlePasswordInput(ctx context.Context, chatID int64, userID int64, password string) {
	err := h.service.VerifyPassword(ctx, userID, password)
	if err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ %s", err.Error()))
		h.service.ClearState(userID)
		return
	}

	h.service.ClearState(userID)
	h.sendMessage(chatID, "✅ Аутентификация успешна!")
	h.showKeyboard(chatID)
}

// showKeyboard отображает клавиатуру админ-панели.
func (h *Handler) showKeyboard(chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Заявки на обмен"),
			tgbotapi.NewKeyboardButton("Назначить роль"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Объявить ЧС"),
			tgbotapi.NewKeyboardButton("Снять ЧС"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, "✅ Админ-панель открыта")
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки клавиатуры")
	}
}

// --- Заявки на обмен ---

// showPendingRedemptions показывает заявки, ожидающие решения.
func (h *Handler) showPendingRedemptions(ctx context.Context, chatID int64) {
	text, err := h.rewardsService.PendingList(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения заявок")
		h.sendMessage(chatID, "❌ Не удалось получить заявки")
		return
	}
	h.sendMessage(chatID, text)
}

// HandleApprove — !одобрить <id заявки>.
// Решение по заявке принимает только администратор; команда от обычного
// участника молча игнорируется. Баланс пользователя проверяется повторно
// на момент одобрения.
func (h *Handler) HandleApprove(ctx context.Context, chatID, adminID int64, args []string) {
	if !h.isAdmin(ctx, adminID) {
		return
	}
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: !одобрить <id заявки>")
		return
	}

	red, err := h.rewardsService.Approve(ctx, args[0], adminID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRedemptionNotFound):
			h.sendMessage(chatID, "❌ Заявка не найдена")
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(chatID, "⚠️ У пользователя уже не хватает баллов, заявка осталась на проверке")
		case errors.Is(err, engine.ErrInvalidTransition):
			h.sendMessage(chatID, "⚠️ По заявке уже принято решение")
		default:
			log.WithError(err).Error("Ошибка одобрения заявки")
			h.sendMessage(chatID, "❌ Не удалось одобрить заявку")
		}
		return
	}

	h.sendMessage(chatID, "✅ Заявка одобрена, баллы списаны")
	h.notifyUser(red.UserID, "🎉 Ваша заявка на обмен одобрена!")
}

// HandleReject — !отклонить <id заявки>. Только для администраторов.
func (h *Handler) HandleReject(ctx context.Context, chatID, adminID int64, args []string) {
	if !h.isAdmin(ctx, adminID) {
		return
	}
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: !отклонить <id заявки>")
		return
	}

	red, err := h.rewardsService.Reject(ctx, args[0], adminID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRedemptionNotFound):
			h.sendMessage(chatID, "❌ Заявка не найдена")
		case errors.Is(err, engine.ErrInvalidTransition):
			h.sendMessage(chatID, "⚠️ По заявке уже принято решение")
		default:
			log.WithError(err).Error("Ошибка отклонения заявки")
			h.sendMessage(chatID, "❌ Не удалось отклонить заявку")
		}
		return
	}

	h.sendMessage(chatID, "🚫 Заявка отклонена")
	h.notifyUser(red.UserID, "🚫 Ваша заявка на обмен отклонена. Баллы не списаны")
}

// --- Режим ЧС ---

// handleEmergency — !чс вкл|выкл. Объявляет или снимает режим ЧС на сегодня.
func (h *Handler) handleEmergency(ctx context.Context, chatID, adminID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: !чс вкл|выкл")
		return
	}

	switch strings.ToLower(args[0]) {
	case "вкл":
		if err := h.activityService.SetEmergencyDay(ctx, adminID); err != nil {
			log.WithError(err).Error("Ошибка объявления ЧС")
			h.sendMessage(chatID, "❌ Не удалось объявить ЧС")
			return
		}
		h.sendMessage(chatID, "🚨 Режим ЧС объявлен на сегодня: баллы за помощь удвоены")
	case "выкл":
		if err := h.activityService.ClearEmergencyDay(ctx); err != nil {
			log.WithError(err).Error("Ошибка снятия ЧС")
			h.sendMessage(chatID, "❌ Не удалось снять ЧС")
			return
		}
		h.sendMessage(chatID, "✅ Режим ЧС на сегодня снят")
	default:
		h.sendMessage(chatID, "Использование: !чс вкл|выкл")
	}
}

// --- Штрафы ---

// HandlePenalty применяет штраф к пользователю.
// Вызывается из группового чата: админ отвечает на сообщение нарушителя
// командой !штраф ложный или !штраф спам.
func (h *Handler) HandlePenalty(ctx context.Context, chatID, adminID, targetID int64, args []string) {
	if !h.isAdmin(ctx, adminID) {
		return
	}
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: ответьте на сообщение нарушителя командой !штраф ложный|спам")
		return
	}

	var kind engine.ActivityKind
	switch strings.ToLower(args[0]) {
	case "ложный":
		kind = engine.KindFalseReport
	case "спам":
		kind = engine.KindSpamFlag
	default:
		h.sendMessage(chatID, "Вид штрафа: ложный или спам")
		return
	}

	result, err := h.activityService.Penalty(ctx, targetID, kind)
	if err != nil {
		log.WithError(err).Error("Ошибка применения штрафа")
		h.sendMessage(chatID, "❌ Не удалось применить штраф")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("⚖️ Штраф применён: %s",
		common.FormatPointsAmount(result.Transactions[0].FinalPoints)))
}

// --- Назначение роли (2 шага) ---

// startAssignRole — шаг 1: показать участников без роли.
func (h *Handler) startAssignRole(ctx context.Context, chatID int64, userID int64) {
	users, err := h.service.GetUsersWithoutRole(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения участников")
		h.sendMessage(chatID, "❌ Не удалось получить список участников")
		return
	}
	if len(users) == 0 {
		h.sendMessage(chatID, "Все участники уже с ролями")
		return
	}

	var sb strings.Builder
	sb.WriteString("Выберите участника (номер):\n\n")
	for i, u := range users {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, u.DisplayName()))
	}

	h.service.SetState(userID, StateAssignRoleSelect, users)
	h.sendMessage(chatID, sb.String())
}

// handleAssignRoleSelect — шаг 2: выбор участника по номеру.
func (h *Handler) handleAssignRoleSelect(ctx context.Context, chatID int64, userID int64, text string) {
	state := h.service.GetState(userID)
	users, ok := state.Data.([]*members.Member)
	if !ok {
		h.service.ClearState(userID)
		h.sendMessage(chatID, "❌ Состояние диалога потеряно, начните заново")
		return
	}

	idx, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || idx < 1 || idx > len(users) {
		h.sendMessage(chatID, "Введите номер из списка")
		return
	}

	selected := users[idx-1]
	h.service.SetState(userID, StateAssignRoleText, selected)
	h.sendMessage(chatID, fmt.Sprintf("Введите роль для %s:", selected.DisplayName()))
}

// handleAssignRoleText — шаг 3: ввод текста роли.
func (h *Handler) handleAssignRoleText(ctx context.Context, chatID int64, userID int64, text string) {
	state := h.service.GetState(userID)
	selected, ok := state.Data.(*members.Member)
	if !ok {
		h.service.ClearState(userID)
		h.sendMessage(chatID, "❌ Состояние диалога потеряно, начните заново")
		return
	}

	if err := h.service.AssignRole(ctx, selected.UserID, strings.TrimSpace(text)); err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	h.service.ClearState(userID)
	h.sendMessage(chatID, fmt.Sprintf("✅ Роль назначена: %s — %s", selected.DisplayName(), strings.TrimSpace(text)))
}

// isAdmin проверяет флаг администратора по реестру участников.
func (h *Handler) isAdmin(ctx context.Context, userID int64) bool {
	member, err := h.memberService.GetByUserID(ctx, userID)
	return err == nil && member.IsAdmin
}

func (h *Handler) notifyUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось уведомить пользователя")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
