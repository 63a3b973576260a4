package engine

import "testing"

func TestRank_OrderAndTies(t *testing.T) {
	scores := []Score{
		{UserID: 1, Points: 100},
		{UserID: 2, Points: 150},
		{UserID: 3, Points: 150},
	}

	got := Rank(scores)
	want := []LeaderboardEntry{
		{UserID: 2, Points: 150, Rank: 1},
		{UserID: 3, Points: 150, Rank: 2},
		{UserID: 1, Points: 100, Rank: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("записей %d, ожидалось %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("запись %d = %+v, ожидалась %+v", i, got[i], want[i])
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	scores := []Score{
		{UserID: 1, Points: 10},
		{UserID: 2, Points: 20},
	}
	Rank(scores)
	if scores[0].UserID != 1 {
		t.Error("входной срез переупорядочен")
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil); len(got) != 0 {
		t.Errorf("Rank(nil) = %v, ожидался пустой результат", got)
	}
}
