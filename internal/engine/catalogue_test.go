package engine

import (
	"errors"
	"testing"
)

func TestCatalogue_Lookup(t *testing.T) {
	c := DefaultCatalogue()

	e, err := c.Lookup(KindReportIssue)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if e.BasePoints != 10 || e.DailyCap != 5 {
		t.Errorf("report_issue = %+v", e)
	}

	if _, err := c.Lookup("unknown"); !errors.Is(err, ErrUnknownActivityKind) {
		t.Errorf("ожидался ErrUnknownActivityKind, получено %v", err)
	}
}

func TestCatalogue_PenaltiesUncapped(t *testing.T) {
	c := DefaultCatalogue()
	for _, kind := range []ActivityKind{KindFalseReport, KindSpamFlag} {
		e, err := c.Lookup(kind)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", kind, err)
		}
		if !e.IsPenalty() {
			t.Errorf("%s не распознан как штраф", kind)
		}
		if e.DailyCap != 0 {
			t.Errorf("%s: у штрафа есть дневной лимит %d", kind, e.DailyCap)
		}
		if e.Streakable {
			t.Errorf("%s: штраф участвует в серии", kind)
		}
	}
}

func TestCatalogue_KindsSorted(t *testing.T) {
	kinds := DefaultCatalogue().Kinds()
	if len(kinds) != 10 {
		t.Fatalf("видов %d, ожидалось 10", len(kinds))
	}
	for i := 1; i < len(kinds); i++ {
		if kinds[i-1] >= kinds[i] {
			t.Errorf("виды не отсортированы: %s перед %s", kinds[i-1], kinds[i])
		}
	}
}

func TestMultipliers_ResolveOrder(t *testing.T) {
	m := DefaultMultipliers()

	factors := m.Resolve(Context{Weekend: true, Festival: true, NightOwl: true})
	want := []Factor{
		{Name: "weekend", Value: 1.5},
		{Name: "festival", Value: 2.0},
		{Name: "night_owl", Value: 1.25},
	}
	if len(factors) != len(want) {
		t.Fatalf("множителей %d, ожидалось %d", len(factors), len(want))
	}
	for i := range want {
		if factors[i] != want[i] {
			t.Errorf("множитель %d = %+v, ожидался %+v", i, factors[i], want[i])
		}
	}
}

func TestMultipliers_EmptyContext(t *testing.T) {
	if factors := DefaultMultipliers().Resolve(Context{}); len(factors) != 0 {
		t.Errorf("Resolve(Context{}) = %v, ожидался пустой список", factors)
	}
}
