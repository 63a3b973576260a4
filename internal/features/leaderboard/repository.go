// Package leaderboard строит рейтинги сообщества по журналу начислений.
// repository.go агрегирует point_transactions за окно времени.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gorodok.ru/karma-bot/internal/engine"
)

// Repository читает агрегаты из журнала начислений.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий рейтинга.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Scores возвращает суммы баллов по пользователям начиная с момента since.
// Нулевое since — за всё время. Штрафы уменьшают сумму: рейтинг считается
// по итоговым баллам журнала, а не по числу действий.
func (r *Repository) Scores(ctx context.Context, since time.Time) ([]engine.Score, error) {
	query := `
		SELECT pt.user_id, COALESCE(SUM(pt.final_points), 0) AS points
		FROM point_transactions pt
		JOIN members m ON m.user_id = pt.user_id AND m.is_banned = FALSE
		WHERE ($1::timestamp IS NULL OR pt.applied_at >= $1)
		GROUP BY pt.user_id
		HAVING SUM(pt.final_points) <> 0
	`
	var sinceArg interface{}
	if !since.IsZero() {
		sinceArg = since
	}

	rows, err := r.db.Query(ctx, query, sinceArg)
	if err != nil {
		return nil, fmt.Errorf("ошибка агрегации рейтинга: %w", err)
	}
	defer rows.Close()

	var scores []engine.Score
	for rows.Next() {
		var s engine.Score
		if err := rows.Scan(&s.UserID, &s.Points); err != nil {
			return nil, fmt.Errorf("ошибка сканирования рейтинга: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// DisplayNames возвращает отображаемые имена для списка пользователей.
func (r *Repository) DisplayNames(ctx context.Context, userIDs []int64) (map[int64]string, error) {
	query := `
		SELECT user_id, COALESCE(username, ''), first_name, COALESCE(last_name, '')
		FROM members
		WHERE user_id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения имён: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string, len(userIDs))
	for rows.Next() {
		var userID int64
		var username, firstName, lastName string
		if err := rows.Scan(&userID, &username, &firstName, &lastName); err != nil {
			return nil, fmt.Errorf("ошибка сканирования имени: %w", err)
		}
		switch {
		case username != "":
			names[userID] = "@" + username
		case lastName != "":
			names[userID] = firstName + " " + lastName
		default:
			names[userID] = firstName
		}
	}
	return names, rows.Err()
}
