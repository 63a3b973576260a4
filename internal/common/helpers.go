// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с временем.
package common

import (
	"fmt"
	"math"
	"time"
)

// PluralizePoints возвращает правильную форму слова «балл» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "балл" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "балла" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "баллов" (0, 5-20, 25-30, 100, ...)
//
// Примеры:
//
//	PluralizePoints(1)  → "балл"
//	PluralizePoints(3)  → "балла"
//	PluralizePoints(5)  → "баллов"
//	PluralizePoints(11) → "баллов"
//	PluralizePoints(21) → "балл"
func PluralizePoints(n int64) string {
	// Берём абсолютное значение для отрицательных чисел
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return "балл"
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "балла"
	}

	// Большое множественное: 0, 5-20, 25-30, 100, ...
	return "баллов"
}

// FormatBalance форматирует баланс в читабельную строку.
// Пример: FormatBalance(150) → "150 баллов"
func FormatBalance(balance int64) string {
	return fmt.Sprintf("%d %s", balance, PluralizePoints(balance))
}

// PluralizeDays возвращает правильную форму слова «день» для числа n.
//
// Правила:
//   - 1, 21, 31 → "день"
//   - 2-4, 22-24 → "дня"
//   - 5-20, 25-30 → "дней"
func PluralizeDays(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "день"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "дня"
	}
	return "дней"
}

// LocalTime возвращает текущее время в часовом поясе сообщества.
// Пояс задаётся через APP_TIMEZONE и передаётся сюда один раз при старте.
func LocalTime(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// LocalDate возвращает только дату (без времени) в часовом поясе сообщества.
// Именно эта дата определяет дневные лимиты и серии.
func LocalDate(loc *time.Location) time.Time {
	return Midnight(LocalTime(loc))
}

// Midnight нормализует время к началу календарного дня в его поясе.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты).
// Используется для отображения дат транзакций.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006 15:04")
}
