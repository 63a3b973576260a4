// Package engine — award.go содержит калькулятор начислений: единственную
// точку, где событие активности превращается в транзакции баллов.
// Движок чистый: он получает состояние пользователя от вызывающего кода,
// возвращает транзакции и не хранит ничего между вызовами. Применение
// итоговых баллов к балансу и сохранение состояния — забота вызывающего.
package engine

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ActivityEvent — одно совершённое действие пользователя.
// Day — локальная календарная дата события, уже определённая вызывающим
// кодом в часовом поясе сообщества: движок сам часовые пояса не трактует.
type ActivityEvent struct {
	UserID     int64
	Kind       ActivityKind
	OccurredAt time.Time
	Day        time.Time
	Context    Context
}

// PointTransaction — неизменяемая запись о начислении или штрафе.
// Добавляется вызывающим кодом в журнал пользователя.
type PointTransaction struct {
	UserID      int64
	Kind        ActivityKind
	RawPoints   int64
	Multiplier  float64
	FinalPoints int64
	AppliedAt   time.Time
	Reason      string
}

// Stats — накопительные счётчики пользователя, по которым считаются значки.
type Stats struct {
	ReportsMade      int
	RecyclesLogged   int
	ForumPosts       int
	ForumReplies     int
	EventsAttended   int
	MicroActions     int
	SuppliesPickedUp int
	ThanksReceived   int
	Penalties        int
	TotalEarned      int64 // Всего заработано баллов (списания не учитываются)
	BestStreak       int
}

// UserKarmaState — состояние кармы одного пользователя.
// Движок мутирует дневные счётчики, серию и статистику; итоговые баллы
// транзакций к TotalPoints применяет вызывающий код.
type UserKarmaState struct {
	UserID          int64
	TotalPoints     int64
	DailyCounters   map[ActivityKind]int
	CounterDay      time.Time // Дата, к которой относятся дневные счётчики
	LastActivityDay time.Time // Последняя дата, учтённая в серии (нулевая — активности не было)
	CurrentStreak   int
	LongestStreak   int
	Stats           Stats
}

// Engine — калькулятор кармы. Собирается один раз при старте из каталога,
// множителей и порогов серий; после этого только читает свою конфигурацию.
type Engine struct {
	catalogue *Catalogue
	factors   Multipliers
	tiers     []StreakTier
}

// New создаёт движок с заданной конфигурацией.
func New(catalogue *Catalogue, factors Multipliers, tiers []StreakTier) *Engine {
	return &Engine{catalogue: catalogue, factors: factors, tiers: tiers}
}

// NewDefault создаёт движок со штатным каталогом и коэффициентами.
func NewDefault() *Engine {
	return New(DefaultCatalogue(), DefaultMultipliers(), DefaultStreakTiers())
}

// Catalogue возвращает каталог активностей движка.
func (e *Engine) Catalogue() *Catalogue {
	return e.catalogue
}

// Award обрабатывает одно событие активности.
//
// Алгоритм:
//  1. Ищем запись каталога; штрафы идут мимо лимитов.
//  2. Отклоняем событие, датированное раньше последней активности.
//  3. При смене локального дня дневные счётчики начинаются заново.
//  4. Проверяем дневной лимит; при превышении — ErrCapExceeded без
//     каких-либо изменений состояния.
//  5. Считаем итог: базовые баллы × произведение множителей, округление
//     половины от нуля.
//  6. Двигаем серию; при взятии порога добавляется вторая, бонусная
//     транзакция.
//
// Любой отказ оставляет состояние ровно таким, каким оно пришло.
func (e *Engine) Award(state *UserKarmaState, ev ActivityEvent) ([]PointTransaction, error) {
	entry, err := e.catalogue.Lookup(ev.Kind)
	if err != nil {
		return nil, err
	}

	day := midnight(ev.Day)

	// Бэкдейт отклоняем до любых мутаций: сдвинуть серию назад нельзя.
	if entry.Streakable && !state.LastActivityDay.IsZero() && day.Before(state.LastActivityDay) {
		return nil, fmt.Errorf("%s раньше %s: %w",
			day.Format("2006-01-02"), state.LastActivityDay.Format("2006-01-02"), ErrNonMonotonicEvent)
	}

	// Новый локальный день — счётчики с нуля. Назад счётчики не откатываем:
	// событие со старой датой считается против текущего дня.
	if state.DailyCounters == nil {
		state.DailyCounters = make(map[ActivityKind]int)
	}
	if day.After(state.CounterDay) {
		state.DailyCounters = make(map[ActivityKind]int)
		state.CounterDay = day
	}

	if !entry.IsPenalty() && entry.DailyCap > 0 && state.DailyCounters[ev.Kind] >= entry.DailyCap {
		return nil, fmt.Errorf("%q: %d из %d за день: %w",
			ev.Kind, state.DailyCounters[ev.Kind], entry.DailyCap, ErrCapExceeded)
	}

	factors := e.factors.Resolve(ev.Context)
	mult := 1.0
	for _, f := range factors {
		mult *= f.Value
	}
	final := roundHalfAwayFromZero(float64(entry.BasePoints) * mult)

	// Все проверки пройдены — дальше только мутации.
	if !entry.IsPenalty() {
		state.DailyCounters[ev.Kind]++
	}

	txs := []PointTransaction{{
		UserID:      ev.UserID,
		Kind:        ev.Kind,
		RawPoints:   entry.BasePoints,
		Multiplier:  mult,
		FinalPoints: final,
		AppliedAt:   ev.OccurredAt,
		Reason:      buildReason(ev.Kind, factors),
	}}

	if entry.Streakable {
		if bonus := e.advanceStreak(state, day, ev); bonus != nil {
			txs = append(txs, *bonus)
		}
	}

	applyStats(&state.Stats, ev.Kind, entry, txs)
	state.Stats.BestStreak = state.LongestStreak

	return txs, nil
}

// applyStats обновляет накопительные счётчики после успешного начисления.
func applyStats(stats *Stats, kind ActivityKind, entry CatalogueEntry, txs []PointTransaction) {
	switch kind {
	case KindReportIssue:
		stats.ReportsMade++
	case KindRecycleLog:
		stats.RecyclesLogged++
	case KindForumPost:
		stats.ForumPosts++
	case KindForumReply:
		stats.ForumReplies++
	case KindEventCheckin:
		stats.EventsAttended++
	case KindMicroAction:
		stats.MicroActions++
	case KindSupplyPickup:
		stats.SuppliesPickedUp++
	case KindThankReceived:
		stats.ThanksReceived++
	}
	if entry.IsPenalty() {
		stats.Penalties++
	}
	for _, tx := range txs {
		if tx.FinalPoints > 0 {
			stats.TotalEarned += tx.FinalPoints
		}
	}
}

// buildReason собирает человекочитаемую причину для журнала:
// "report_issue" или "report_issue ×3.00 (weekend, festival)".
func buildReason(kind ActivityKind, factors []Factor) string {
	if len(factors) == 0 {
		return string(kind)
	}
	mult := 1.0
	names := make([]string, 0, len(factors))
	for _, f := range factors {
		mult *= f.Value
		names = append(names, f.Name)
	}
	return fmt.Sprintf("%s ×%.2f (%s)", kind, mult, strings.Join(names, ", "))
}

// roundHalfAwayFromZero округляет половину от нуля: 1.5 → 2, -1.5 → -2.
// Так начисления детерминированы и для бонусов, и для штрафов.
func roundHalfAwayFromZero(v float64) int64 {
	return int64(math.Round(v))
}

// midnight нормализует время к началу календарного дня.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDay сравнивает календарные даты без учёта времени.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
