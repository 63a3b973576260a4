// Package activity — repository.go выполняет операции с таблицами karma_states,
// point_transactions, badges_earned и emergency_days.
// Начисление выполняется в одной транзакции БД с блокировкой строки состояния:
// либо записывается всё (состояние, журнал, значки), либо ничего.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gorodok.ru/karma-bot/internal/engine"
)

const stateColumns = `
	user_id, total_points, counter_day, daily_counters, last_activity_day,
	current_streak, longest_streak,
	reports_made, recycles_logged, forum_posts, forum_replies, events_attended,
	micro_actions, supplies_picked_up, thanks_received, penalties, total_earned,
	reminder_sent_today, created_at, updated_at`

// Repository работает с таблицами кармы.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий активностей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureState создаёт запись кармы для нового участника.
func (r *Repository) EnsureState(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO karma_states (user_id, daily_counters)
		VALUES ($1, '{}')
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("ошибка создания состояния кармы: %w", err)
	}
	return nil
}

// GetState возвращает состояние кармы пользователя.
func (r *Repository) GetState(ctx context.Context, userID int64) (*KarmaState, error) {
	query := `SELECT ` + stateColumns + ` FROM karma_states WHERE user_id = $1`
	var s KarmaState
	err := r.db.QueryRow(ctx, query, userID).Scan(stateScanTargets(&s)...)
	if err != nil {
		return nil, fmt.Errorf("состояние кармы не найдено (user_id=%d): %w", userID, err)
	}
	return &s, nil
}

// RecordActivity обрабатывает событие активности атомарно:
// блокирует строку состояния, прогоняет событие через движок, записывает
// транзакции в журнал и выдаёт новые значки. Ошибка движка (лимит, бэкдейт,
// неизвестный вид) откатывает транзакцию целиком.
//
// badges может быть nil — тогда значки не проверяются.
func (r *Repository) RecordActivity(ctx context.Context, ev engine.ActivityEvent, eng *engine.Engine, badges *engine.BadgeSet) (*Result, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	row, err := lockState(ctx, tx, ev.UserID)
	if err != nil {
		return nil, err
	}

	state, err := row.toEngineState()
	if err != nil {
		return nil, err
	}
	statsBefore := state.Stats

	txs, err := eng.Award(state, ev)
	if err != nil {
		return nil, err
	}

	// Применяем итоговые баллы всех транзакций к балансу
	for _, t := range txs {
		state.TotalPoints += t.FinalPoints
	}

	if err := row.fromEngineState(state); err != nil {
		return nil, err
	}
	if err := saveState(ctx, tx, row); err != nil {
		return nil, err
	}
	if err := insertTransactions(ctx, tx, txs); err != nil {
		return nil, err
	}

	result := &Result{
		Transactions: txs,
		TotalPoints:  state.TotalPoints,
		Streak:       state.CurrentStreak,
	}

	if badges != nil {
		for _, id := range badges.NewlyEarned(statsBefore, state.Stats) {
			inserted, err := insertBadge(ctx, tx, ev.UserID, id)
			if err != nil {
				return nil, err
			}
			if inserted {
				if b, ok := badges.ByID(id); ok {
					result.NewBadges = append(result.NewBadges, b)
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return result, nil
}

// lockState читает строку состояния с блокировкой FOR UPDATE.
// Если строки нет — создаёт пустую (первая активность пользователя).
func lockState(ctx context.Context, tx pgx.Tx, userID int64) (*KarmaState, error) {
	query := `SELECT ` + stateColumns + ` FROM karma_states WHERE user_id = $1 FOR UPDATE`

	var s KarmaState
	err := tx.QueryRow(ctx, query, userID).Scan(stateScanTargets(&s)...)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := tx.Exec(ctx,
			`INSERT INTO karma_states (user_id, daily_counters) VALUES ($1, '{}')`, userID,
		); err != nil {
			return nil, fmt.Errorf("ошибка создания состояния кармы: %w", err)
		}
		err = tx.QueryRow(ctx, query, userID).Scan(stateScanTargets(&s)...)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения состояния кармы: %w", err)
	}
	return &s, nil
}

// saveState записывает изменённое состояние обратно.
func saveState(ctx context.Context, tx pgx.Tx, s *KarmaState) error {
	query := `
		UPDATE karma_states
		SET total_points = $2, counter_day = $3, daily_counters = $4,
		    last_activity_day = $5, current_streak = $6, longest_streak = $7,
		    reports_made = $8, recycles_logged = $9, forum_posts = $10,
		    forum_replies = $11, events_attended = $12, micro_actions = $13,
		    supplies_picked_up = $14, thanks_received = $15, penalties = $16,
		    total_earned = $17, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := tx.Exec(ctx, query,
		s.UserID, s.TotalPoints, s.CounterDay, s.DailyCountersJSON,
		s.LastActivityDay, s.CurrentStreak, s.LongestStreak,
		s.ReportsMade, s.RecyclesLogged, s.ForumPosts,
		s.ForumReplies, s.EventsAttended, s.MicroActions,
		s.SuppliesPickedUp, s.ThanksReceived, s.Penalties,
		s.TotalEarned,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения состояния кармы: %w", err)
	}
	return nil
}

// insertTransactions записывает начисления в журнал.
func insertTransactions(ctx context.Context, tx pgx.Tx, txs []engine.PointTransaction) error {
	query := `
		INSERT INTO point_transactions (user_id, kind, raw_points, multiplier, final_points, reason, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, t := range txs {
		if _, err := tx.Exec(ctx, query,
			t.UserID, string(t.Kind), t.RawPoints, t.Multiplier, t.FinalPoints, t.Reason, t.AppliedAt,
		); err != nil {
			return fmt.Errorf("ошибка записи транзакции в журнал: %w", err)
		}
	}
	return nil
}

// insertBadge выдаёт значок, если он ещё не выдан.
func insertBadge(ctx context.Context, tx pgx.Tx, userID int64, badgeID string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO badges_earned (user_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`, userID, badgeID)
	if err != nil {
		return false, fmt.Errorf("ошибка выдачи значка: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetTransactions возвращает последние N записей журнала пользователя.
func (r *Repository) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, user_id, kind, raw_points, multiplier, final_points, reason, applied_at
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY applied_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.RawPoints, &t.Multiplier, &t.FinalPoints, &t.Reason, &t.AppliedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// GetBadges возвращает выданные пользователю значки.
func (r *Repository) GetBadges(ctx context.Context, userID int64) ([]*EarnedBadge, error) {
	query := `
		SELECT id, user_id, badge_id, earned_at
		FROM badges_earned
		WHERE user_id = $1
		ORDER BY earned_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения значков: %w", err)
	}
	defer rows.Close()

	var out []*EarnedBadge
	for rows.Next() {
		var b EarnedBadge
		if err := rows.Scan(&b.ID, &b.UserID, &b.BadgeID, &b.EarnedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования значка: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// --- Режим ЧС ---

// SetEmergencyDay объявляет режим ЧС на локальный день.
func (r *Repository) SetEmergencyDay(ctx context.Context, day time.Time, declaredBy int64) error {
	query := `
		INSERT INTO emergency_days (day, declared_by)
		VALUES ($1, $2)
		ON CONFLICT (day) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, day, declaredBy)
	if err != nil {
		return fmt.Errorf("ошибка объявления ЧС: %w", err)
	}
	return nil
}

// ClearEmergencyDay снимает режим ЧС с локального дня.
func (r *Repository) ClearEmergencyDay(ctx context.Context, day time.Time) error {
	_, err := r.db.Exec(ctx, `DELETE FROM emergency_days WHERE day = $1`, day)
	if err != nil {
		return fmt.Errorf("ошибка снятия ЧС: %w", err)
	}
	return nil
}

// IsEmergencyDay сообщает, объявлен ли ЧС на локальный день.
func (r *Repository) IsEmergencyDay(ctx context.Context, day time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM emergency_days WHERE day = $1)`, day,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки ЧС: %w", err)
	}
	return exists, nil
}

// --- Напоминания о сериях ---

// GetStatesAtRisk возвращает состояния, у которых серия под угрозой:
// активность была вчера, сегодня её ещё не было, напоминание не отправлялось.
func (r *Repository) GetStatesAtRisk(ctx context.Context, today time.Time, minStreak int) ([]*KarmaState, error) {
	query := `SELECT ` + stateColumns + `
		FROM karma_states
		WHERE current_streak >= $1
		  AND last_activity_day = $2::date - 1
		  AND reminder_sent_today = FALSE
	`
	rows, err := r.db.Query(ctx, query, minStreak, today)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска серий под угрозой: %w", err)
	}
	defer rows.Close()

	var out []*KarmaState
	for rows.Next() {
		var s KarmaState
		if err := rows.Scan(stateScanTargets(&s)...); err != nil {
			return nil, fmt.Errorf("ошибка сканирования состояния: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// MarkReminderSent помечает, что напоминание уже отправлено сегодня.
func (r *Repository) MarkReminderSent(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE karma_states SET reminder_sent_today = TRUE WHERE user_id = $1`, userID)
	return err
}

// ResetReminderFlags сбрасывает флаги напоминаний. Вызывается кроном в полночь.
func (r *Repository) ResetReminderFlags(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `UPDATE karma_states SET reminder_sent_today = FALSE`)
	if err != nil {
		return fmt.Errorf("ошибка сброса флагов напоминаний: %w", err)
	}
	return nil
}

// stateScanTargets возвращает указатели на поля в порядке stateColumns.
func stateScanTargets(s *KarmaState) []interface{} {
	return []interface{}{
		&s.UserID, &s.TotalPoints, &s.CounterDay, &s.DailyCountersJSON, &s.LastActivityDay,
		&s.CurrentStreak, &s.LongestStreak,
		&s.ReportsMade, &s.RecyclesLogged, &s.ForumPosts, &s.ForumReplies, &s.EventsAttended,
		&s.MicroActions, &s.SuppliesPickedUp, &s.ThanksReceived, &s.Penalties, &s.TotalEarned,
		&s.ReminderSentToday, &s.CreatedAt, &s.UpdatedAt,
	}
}
