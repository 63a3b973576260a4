// Package engine — leaderboard.go упорядочивает пользователей по баллам.
// Ранжировщик только сортирует уже агрегированные суммы: выборка баллов
// за окно (неделя, месяц, год, всё время) — забота вызывающего кода.
package engine

import "sort"

// Window — окно агрегации для рейтинга.
type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
	WindowAll   Window = "all"
)

// Score — агрегированные баллы одного пользователя.
type Score struct {
	UserID int64
	Points int64
}

// LeaderboardEntry — строка рейтинга.
type LeaderboardEntry struct {
	UserID int64
	Points int64
	Rank   int
}

// Rank упорядочивает баллы: по убыванию очков, при равенстве — по
// возрастанию UserID. Порядок входа значения не имеет, результат
// детерминирован. Вход не мутируется.
func Rank(scores []Score) []LeaderboardEntry {
	sorted := make([]Score, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	entries := make([]LeaderboardEntry, len(sorted))
	for i, s := range sorted {
		entries[i] = LeaderboardEntry{UserID: s.UserID, Points: s.Points, Rank: i + 1}
	}
	return entries
}
