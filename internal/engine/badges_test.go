package engine

import "testing"

func TestBadges_UniqueIDs(t *testing.T) {
	set := NewBadgeSet()
	seen := map[string]bool{}
	for _, b := range set.Registry() {
		if seen[b.ID] {
			t.Errorf("дубликат идентификатора %q", b.ID)
		}
		seen[b.ID] = true
		if b.Predicate == nil {
			t.Errorf("значок %q без условия", b.ID)
		}
	}
}

func TestBadges_NewlyEarnedDelta(t *testing.T) {
	set := NewBadgeSet()

	// Выдаются только значки, условие которых стало истинным на этом шаге.
	ids := set.NewlyEarned(Stats{}, Stats{ReportsMade: 1})
	if len(ids) != 1 || ids[0] != "first_report" {
		t.Errorf("NewlyEarned = %v, ожидался [first_report]", ids)
	}
}

func TestBadges_NoChangeNoBadges(t *testing.T) {
	set := NewBadgeSet()
	st := Stats{ReportsMade: 3, TotalEarned: 100}

	if ids := set.NewlyEarned(st, st); len(ids) != 0 {
		t.Errorf("NewlyEarned = %v, ожидался пустой список", ids)
	}
}

func TestBadges_AlreadyEarnedNotRepeated(t *testing.T) {
	set := NewBadgeSet()

	// first_report уже выдан: второй сигнал значков не приносит.
	ids := set.NewlyEarned(Stats{ReportsMade: 1}, Stats{ReportsMade: 2})
	if len(ids) != 0 {
		t.Errorf("NewlyEarned = %v, ожидался пустой список", ids)
	}
}

func TestBadges_Thresholds(t *testing.T) {
	set := NewBadgeSet()

	tests := []struct {
		name   string
		before Stats
		after  Stats
		want   string
	}{
		{"reporter_10", Stats{ReportsMade: 9}, Stats{ReportsMade: 10}, "reporter_10"},
		{"streak_7", Stats{BestStreak: 6}, Stats{BestStreak: 7}, "streak_7"},
		{"karma_500", Stats{TotalEarned: 499}, Stats{TotalEarned: 500}, "karma_500"},
		{"forum_voice_100", Stats{ForumPosts: 60, ForumReplies: 39}, Stats{ForumPosts: 60, ForumReplies: 40}, "forum_voice_100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := set.NewlyEarned(tt.before, tt.after)
			if len(ids) != 1 || ids[0] != tt.want {
				t.Errorf("NewlyEarned = %v, ожидался [%s]", ids, tt.want)
			}
		})
	}
}

func TestBadges_ByID(t *testing.T) {
	set := NewBadgeSet()
	b, ok := set.ByID("first_report")
	if !ok || b.Name == "" {
		t.Fatalf("ByID(first_report): ok=%v, %+v", ok, b)
	}
	if _, ok := set.ByID("nonexistent"); ok {
		t.Error("ByID(nonexistent) вернул значок")
	}
}
