// Package engine — errors.go определяет типизированные исходы движка.
// Все отказы возвращаются значениями ошибок, которые вызывающий код
// проверяет через errors.Is — движок никогда не паникует.
package engine

import "errors"

var (
	// ErrUnknownActivityKind — вид активности не зарегистрирован в каталоге.
	// Это ошибка программиста, а не штатная ситуация.
	ErrUnknownActivityKind = errors.New("неизвестный вид активности")
	// ErrCapExceeded — дневной лимит активности исчерпан, баллы не начисляются.
	// Штатный и частый исход, для UI это не ошибка.
	ErrCapExceeded = errors.New("дневной лимит активности исчерпан")
	// ErrNonMonotonicEvent — дата события раньше последней учтённой активности.
	ErrNonMonotonicEvent = errors.New("дата события раньше последней активности")
	// ErrInsufficientPoints — недостаточно баллов кармы для обмена.
	ErrInsufficientPoints = errors.New("недостаточно баллов кармы")
	// ErrInvalidTransition — попытка повторно рассмотреть решённую заявку.
	// Сигнал о гонке или баге вызывающего кода, глотать её нельзя.
	ErrInvalidTransition = errors.New("заявка уже рассмотрена")
)
