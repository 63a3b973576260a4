package engine

import (
	"testing"
)

func TestStreak_ThreeConsecutiveDays(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	for day := 1; day <= 2; day++ {
		txs, err := e.Award(st, mkEvent(KindReportIssue, day, Context{}))
		if err != nil {
			t.Fatalf("день %d: %v", day, err)
		}
		if len(txs) != 1 {
			t.Fatalf("день %d: транзакций %d, ожидалась 1", day, len(txs))
		}
	}

	// На третий подряд день активности выдаётся бонус серии: +15.
	txs, err := e.Award(st, mkEvent(KindReportIssue, 3, Context{}))
	if err != nil {
		t.Fatalf("день 3: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("день 3: транзакций %d, ожидались 2", len(txs))
	}
	if txs[1].Kind != KindStreakBonus || txs[1].FinalPoints != 15 {
		t.Errorf("бонус = %+v, ожидался streak_bonus на 15", txs[1])
	}
	if st.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, ожидалось 3", st.CurrentStreak)
	}
}

func TestStreak_BonusFiresOncePerTier(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	bonuses := 0
	for day := 1; day <= 6; day++ {
		txs, err := e.Award(st, mkEvent(KindRecycleLog, day, Context{}))
		if err != nil {
			t.Fatalf("день %d: %v", day, err)
		}
		for _, tx := range txs {
			if tx.Kind == KindStreakBonus {
				bonuses++
			}
		}
	}
	// Порог в 3 дня пересекается один раз, следующий — только на 7-й день.
	if bonuses != 1 {
		t.Errorf("бонусов %d, ожидался 1", bonuses)
	}
}

func TestStreak_SevenDayTier(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	var last []PointTransaction
	for day := 1; day <= 7; day++ {
		txs, err := e.Award(st, mkEvent(KindRecycleLog, day, Context{}))
		if err != nil {
			t.Fatalf("день %d: %v", day, err)
		}
		last = txs
	}
	if len(last) != 2 || last[1].FinalPoints != 50 {
		t.Fatalf("день 7: ожидался бонус 50, получено %+v", last)
	}
}

func TestStreak_SameDayDoesNotAdvance(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	e.Award(st, mkEvent(KindReportIssue, 1, Context{}))
	e.Award(st, mkEvent(KindReportIssue, 1, Context{}))
	if st.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, ожидалось 1", st.CurrentStreak)
	}
}

func TestStreak_GapResets(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	e.Award(st, mkEvent(KindReportIssue, 1, Context{}))
	e.Award(st, mkEvent(KindReportIssue, 2, Context{}))
	// День 3 пропущен: серия начинается заново.
	e.Award(st, mkEvent(KindReportIssue, 4, Context{}))

	if st.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, ожидалось 1", st.CurrentStreak)
	}
	if st.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, ожидалось 2", st.LongestStreak)
	}
}

func TestStreak_NonStreakableKindIgnored(t *testing.T) {
	e := NewDefault()
	st := newTestState()

	// Штрафы и «спасибо» серию не двигают и не сбрасывают.
	e.Award(st, mkEvent(KindReportIssue, 1, Context{}))
	e.Award(st, mkEvent(KindThankReceived, 2, Context{}))
	e.Award(st, mkEvent(KindReportIssue, 2, Context{}))

	if st.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, ожидалось 2", st.CurrentStreak)
	}
}
