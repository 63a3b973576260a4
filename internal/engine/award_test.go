package engine

import (
	"errors"
	"testing"
	"time"
)

// localDay возвращает локальную полночь n-го марта 2026.
func localDay(n int) time.Time {
	return time.Date(2026, time.March, n, 0, 0, 0, 0, time.UTC)
}

func mkEvent(kind ActivityKind, day int, ctx Context) ActivityEvent {
	return ActivityEvent{
		UserID:     42,
		Kind:       kind,
		OccurredAt: localDay(day).Add(12 * time.Hour),
		Day:        localDay(day),
		Context:    ctx,
	}
}

func newTestState() *UserKarmaState {
	return &UserKarmaState{UserID: 42}
}

func TestAward_BasePoints(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	txs, err := e.Award(st, mkEvent(KindReportIssue, 2, Context{}))
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("транзакций %d, ожидалась 1", len(txs))
	}
	if txs[0].FinalPoints != 10 {
		t.Errorf("FinalPoints = %d, ожидалось 10", txs[0].FinalPoints)
	}
	if txs[0].Multiplier != 1.0 {
		t.Errorf("Multiplier = %v, ожидалось 1.0", txs[0].Multiplier)
	}
}

func TestAward_WeekendMultiplier(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	txs, err := e.Award(st, mkEvent(KindReportIssue, 7, Context{Weekend: true}))
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if txs[0].FinalPoints != 15 {
		t.Errorf("FinalPoints = %d, ожидалось 15 (10 × 1.5)", txs[0].FinalPoints)
	}
}

func TestAward_WeekendFestivalCompose(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	// Множители перемножаются: 10 × 1.5 × 2.0 = 30.
	txs, err := e.Award(st, mkEvent(KindReportIssue, 7, Context{Weekend: true, Festival: true}))
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if txs[0].FinalPoints != 30 {
		t.Errorf("FinalPoints = %d, ожидалось 30", txs[0].FinalPoints)
	}
}

func TestAward_RoundingHalfAwayFromZero(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	// recycle_log: 5 × 1.5 = 7.5 → 8.
	txs, err := e.Award(st, mkEvent(KindRecycleLog, 7, Context{Weekend: true}))
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if txs[0].FinalPoints != 8 {
		t.Errorf("FinalPoints = %d, ожидалось 8 (7.5 округляется от нуля)", txs[0].FinalPoints)
	}
}

func TestAward_DailyCap(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	entry, _ := e.Catalogue().Lookup(KindReportIssue)
	for i := 0; i < entry.DailyCap; i++ {
		if _, err := e.Award(st, mkEvent(KindReportIssue, 2, Context{})); err != nil {
			t.Fatalf("начисление %d: %v", i+1, err)
		}
	}

	// Лимит исчерпан: n+1-е событие отклоняется, счётчик остаётся равным n.
	_, err := e.Award(st, mkEvent(KindReportIssue, 2, Context{}))
	if !errors.Is(err, ErrCapExceeded) {
		t.Fatalf("ожидался ErrCapExceeded, получено %v", err)
	}
	if got := st.DailyCounters[KindReportIssue]; got != entry.DailyCap {
		t.Errorf("счётчик = %d, ожидалось %d", got, entry.DailyCap)
	}
}

func TestAward_CapResetsNextDay(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	entry, _ := e.Catalogue().Lookup(KindEventCheckin)
	for i := 0; i < entry.DailyCap; i++ {
		if _, err := e.Award(st, mkEvent(KindEventCheckin, 2, Context{})); err != nil {
			t.Fatalf("день 2, начисление %d: %v", i+1, err)
		}
	}
	if _, err := e.Award(st, mkEvent(KindEventCheckin, 2, Context{})); !errors.Is(err, ErrCapExceeded) {
		t.Fatalf("ожидался ErrCapExceeded, получено %v", err)
	}

	// На следующий локальный день счётчики начинаются заново.
	if _, err := e.Award(st, mkEvent(KindEventCheckin, 3, Context{})); err != nil {
		t.Fatalf("день 3: %v", err)
	}
	if got := st.DailyCounters[KindEventCheckin]; got != 1 {
		t.Errorf("счётчик после смены дня = %d, ожидалось 1", got)
	}
}

func TestAward_PenaltyBypassesCap(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	// Штраф применяется всегда и целиком, сколько бы раз ни повторялся.
	for i := 0; i < 20; i++ {
		txs, err := e.Award(st, mkEvent(KindFalseReport, 2, Context{}))
		if err != nil {
			t.Fatalf("штраф %d: %v", i+1, err)
		}
		if txs[0].FinalPoints != -15 {
			t.Fatalf("FinalPoints = %d, ожидалось -15", txs[0].FinalPoints)
		}
	}
	if st.Stats.Penalties != 20 {
		t.Errorf("Penalties = %d, ожидалось 20", st.Stats.Penalties)
	}
}

func TestAward_PenaltyWithMultiplier(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	// -5 × 1.5 = -7.5 → -8: половина округляется от нуля и у штрафов.
	txs, err := e.Award(st, mkEvent(KindSpamFlag, 7, Context{Weekend: true}))
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if txs[0].FinalPoints != -8 {
		t.Errorf("FinalPoints = %d, ожидалось -8", txs[0].FinalPoints)
	}
}

func TestAward_UnknownKind(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	_, err := e.Award(st, mkEvent("teleportation", 2, Context{}))
	if !errors.Is(err, ErrUnknownActivityKind) {
		t.Fatalf("ожидался ErrUnknownActivityKind, получено %v", err)
	}
}

func TestAward_RejectionLeavesStateUntouched(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	if _, err := e.Award(st, mkEvent(KindReportIssue, 5, Context{})); err != nil {
		t.Fatalf("Award: %v", err)
	}
	counters := st.DailyCounters[KindReportIssue]
	streak := st.CurrentStreak
	stats := st.Stats

	// Бэкдейт-событие отклоняется без каких-либо изменений состояния.
	_, err := e.Award(st, mkEvent(KindReportIssue, 4, Context{}))
	if !errors.Is(err, ErrNonMonotonicEvent) {
		t.Fatalf("ожидался ErrNonMonotonicEvent, получено %v", err)
	}
	if st.DailyCounters[KindReportIssue] != counters || st.CurrentStreak != streak || st.Stats != stats {
		t.Error("состояние изменилось после отклонённого события")
	}
}

func TestAward_StatsAccumulate(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	e.Award(st, mkEvent(KindReportIssue, 2, Context{}))
	e.Award(st, mkEvent(KindRecycleLog, 2, Context{}))
	e.Award(st, mkEvent(KindThankReceived, 2, Context{}))

	if st.Stats.ReportsMade != 1 || st.Stats.RecyclesLogged != 1 || st.Stats.ThanksReceived != 1 {
		t.Errorf("счётчики статистики: %+v", st.Stats)
	}
	if st.Stats.TotalEarned != 17 {
		t.Errorf("TotalEarned = %d, ожидалось 17", st.Stats.TotalEarned)
	}
}
