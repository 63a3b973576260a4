// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки наград (обмен баллов)
var (
	// ErrInsufficientBalance — недостаточно баллов на счёте
	ErrInsufficientBalance = errors.New("недостаточно баллов на счёте")
	// ErrRewardNotFound — награда не найдена в каталоге
	ErrRewardNotFound = errors.New("награда не найдена")
	// ErrRewardUnavailable — награда закончилась или снята с обмена
	ErrRewardUnavailable = errors.New("награда сейчас недоступна")
	// ErrRedemptionNotFound — заявка на обмен не найдена
	ErrRedemptionNotFound = errors.New("заявка на обмен не найдена")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки начислений
var (
	// ErrSelfThank — попытка поблагодарить самого себя
	ErrSelfThank = errors.New("нельзя благодарить самого себя")
	// ErrDailyLimitReached — дневной лимит этой активности исчерпан
	ErrDailyLimitReached = errors.New("лимит на сегодня исчерпан, продолжайте завтра")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)
