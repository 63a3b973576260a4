// Package activity начисляет баллы за гражданские активности.
// models.go описывает структуры для таблиц karma_states, point_transactions
// и badges_earned, а также преобразование строк БД в состояние движка.
package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"gorodok.ru/karma-bot/internal/engine"
)

// KarmaState — строка таблицы karma_states: баланс, дневные счётчики,
// серия и накопительная статистика одного участника.
type KarmaState struct {
	UserID            int64      `db:"user_id"`
	TotalPoints       int64      `db:"total_points"`
	CounterDay        *time.Time `db:"counter_day"`
	DailyCountersJSON []byte     `db:"daily_counters"`
	LastActivityDay   *time.Time `db:"last_activity_day"`
	CurrentStreak     int        `db:"current_streak"`
	LongestStreak     int        `db:"longest_streak"`
	ReportsMade       int        `db:"reports_made"`
	RecyclesLogged    int        `db:"recycles_logged"`
	ForumPosts        int        `db:"forum_posts"`
	ForumReplies      int        `db:"forum_replies"`
	EventsAttended    int        `db:"events_attended"`
	MicroActions      int        `db:"micro_actions"`
	SuppliesPickedUp  int        `db:"supplies_picked_up"`
	ThanksReceived    int        `db:"thanks_received"`
	Penalties         int        `db:"penalties"`
	TotalEarned       int64      `db:"total_earned"`
	ReminderSentToday bool       `db:"reminder_sent_today"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// Transaction — строка журнала начислений point_transactions.
type Transaction struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Kind        string    `db:"kind"`
	RawPoints   int64     `db:"raw_points"`
	Multiplier  float64   `db:"multiplier"`
	FinalPoints int64     `db:"final_points"`
	Reason      string    `db:"reason"`
	AppliedAt   time.Time `db:"applied_at"`
}

// EarnedBadge — строка таблицы badges_earned.
type EarnedBadge struct {
	ID       int64     `db:"id"`
	UserID   int64     `db:"user_id"`
	BadgeID  string    `db:"badge_id"`
	EarnedAt time.Time `db:"earned_at"`
}

// Result — итог обработки одного события: записанные транзакции,
// новые значки и состояние кармы после применения.
type Result struct {
	Transactions []engine.PointTransaction
	NewBadges    []engine.Badge
	TotalPoints  int64
	Streak       int
}

// toEngineState переводит строку БД в состояние движка.
func (s *KarmaState) toEngineState() (*engine.UserKarmaState, error) {
	counters := make(map[engine.ActivityKind]int)
	if len(s.DailyCountersJSON) > 0 {
		raw := make(map[string]int)
		if err := json.Unmarshal(s.DailyCountersJSON, &raw); err != nil {
			return nil, fmt.Errorf("не удалось разобрать дневные счётчики: %w", err)
		}
		for k, v := range raw {
			counters[engine.ActivityKind(k)] = v
		}
	}

	st := &engine.UserKarmaState{
		UserID:        s.UserID,
		TotalPoints:   s.TotalPoints,
		DailyCounters: counters,
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		Stats: engine.Stats{
			ReportsMade:      s.ReportsMade,
			RecyclesLogged:   s.RecyclesLogged,
			ForumPosts:       s.ForumPosts,
			ForumReplies:     s.ForumReplies,
			EventsAttended:   s.EventsAttended,
			MicroActions:     s.MicroActions,
			SuppliesPickedUp: s.SuppliesPickedUp,
			ThanksReceived:   s.ThanksReceived,
			Penalties:        s.Penalties,
			TotalEarned:      s.TotalEarned,
			BestStreak:       s.LongestStreak,
		},
	}
	if s.CounterDay != nil {
		st.CounterDay = *s.CounterDay
	}
	if s.LastActivityDay != nil {
		st.LastActivityDay = *s.LastActivityDay
	}
	return st, nil
}

// fromEngineState переносит состояние движка обратно в строку БД.
func (s *KarmaState) fromEngineState(st *engine.UserKarmaState) error {
	raw := make(map[string]int, len(st.DailyCounters))
	for k, v := range st.DailyCounters {
		raw[string(k)] = v
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать дневные счётчики: %w", err)
	}

	s.TotalPoints = st.TotalPoints
	s.DailyCountersJSON = data
	if !st.CounterDay.IsZero() {
		d := st.CounterDay
		s.CounterDay = &d
	}
	if !st.LastActivityDay.IsZero() {
		d := st.LastActivityDay
		s.LastActivityDay = &d
	}
	s.CurrentStreak = st.CurrentStreak
	s.LongestStreak = st.LongestStreak
	s.ReportsMade = st.Stats.ReportsMade
	s.RecyclesLogged = st.Stats.RecyclesLogged
	s.ForumPosts = st.Stats.ForumPosts
	s.ForumReplies = st.Stats.ForumReplies
	s.EventsAttended = st.Stats.EventsAttended
	s.MicroActions = st.Stats.MicroActions
	s.SuppliesPickedUp = st.Stats.SuppliesPickedUp
	s.ThanksReceived = st.Stats.ThanksReceived
	s.Penalties = st.Stats.Penalties
	s.TotalEarned = st.Stats.TotalEarned
	return nil
}
