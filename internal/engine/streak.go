// Package engine — streak.go ведёт серии дней подряд с активностью.
// Серия растёт только если дата события ровно на день позже последней
// учтённой; разрыв в два дня и больше сбрасывает серию до единицы.
package engine

import (
	"fmt"
	"time"
)

// StreakTier — порог серии и бонус за его взятие.
type StreakTier struct {
	Days  int
	Bonus int64
}

// DefaultStreakTiers возвращает штатные пороги серий.
func DefaultStreakTiers() []StreakTier {
	return []StreakTier{
		{Days: 3, Bonus: 15},
		{Days: 7, Bonus: 50},
		{Days: 30, Bonus: 200},
	}
}

// advanceStreak двигает серию по дате события и возвращает бонусную
// транзакцию, если взят новый порог. Повтор в тот же день серию не меняет.
// Премируется только старший из новопройденных порогов — даже если серия
// каким-то образом перепрыгнула несколько сразу, двойного счёта нет.
func (e *Engine) advanceStreak(state *UserKarmaState, day time.Time, ev ActivityEvent) *PointTransaction {
	prev := 0
	switch {
	case state.LastActivityDay.IsZero():
		state.CurrentStreak = 1
	case sameDay(day, state.LastActivityDay):
		return nil
	case sameDay(day, state.LastActivityDay.AddDate(0, 0, 1)):
		prev = state.CurrentStreak
		state.CurrentStreak++
	default:
		state.CurrentStreak = 1
	}
	state.LastActivityDay = day
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}

	var crossed *StreakTier
	for i := range e.tiers {
		t := e.tiers[i]
		if t.Days > prev && t.Days <= state.CurrentStreak {
			if crossed == nil || t.Days > crossed.Days {
				crossed = &e.tiers[i]
			}
		}
	}
	if crossed == nil {
		return nil
	}

	return &PointTransaction{
		UserID:      ev.UserID,
		Kind:        KindStreakBonus,
		RawPoints:   crossed.Bonus,
		Multiplier:  1.0,
		FinalPoints: crossed.Bonus,
		AppliedAt:   ev.OccurredAt,
		Reason:      fmt.Sprintf("серия %d дней подряд", state.CurrentStreak),
	}
}
