// Package rewards — repository.go выполняет операции с таблицами rewards
// и redemptions. Списание баллов и запись заявки происходят в одной
// транзакции БД с блокировкой строки баланса FOR UPDATE.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gorodok.ru/karma-bot/internal/common"
	"gorodok.ru/karma-bot/internal/engine"
)

const redemptionColumns = `
	id, user_id, reward_id, points_cost, kind, status,
	receipt_file_id, created_at, resolved_at, resolver_id`

// Repository работает с каталогом наград и заявками.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий наград.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListActive возвращает доступные награды по возрастанию цены.
func (r *Repository) ListActive(ctx context.Context) ([]*Reward, error) {
	query := `
		SELECT id, title, description, cost, kind, stock, active, created_at
		FROM rewards
		WHERE active = TRUE AND (stock IS NULL OR stock > 0)
		ORDER BY cost, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога наград: %w", err)
	}
	defer rows.Close()

	var out []*Reward
	for rows.Next() {
		var rw Reward
		if err := rows.Scan(&rw.ID, &rw.Title, &rw.Description, &rw.Cost, &rw.Kind, &rw.Stock, &rw.Active, &rw.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования награды: %w", err)
		}
		out = append(out, &rw)
	}
	return out, rows.Err()
}

// GetReward возвращает награду по номеру.
func (r *Repository) GetReward(ctx context.Context, id int64) (*Reward, error) {
	query := `
		SELECT id, title, description, cost, kind, stock, active, created_at
		FROM rewards
		WHERE id = $1
	`
	var rw Reward
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rw.ID, &rw.Title, &rw.Description, &rw.Cost, &rw.Kind, &rw.Stock, &rw.Active, &rw.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrRewardNotFound
		}
		return nil, fmt.Errorf("ошибка чтения награды: %w", err)
	}
	return &rw, nil
}

// RedeemInstant выполняет мгновенный обмен атомарно: блокирует баланс,
// проверяет достаточность через движок, списывает баллы, уменьшает остаток
// награды и записывает одобренную заявку. При нехватке баллов ничего
// не меняется и не записывается.
func (r *Repository) RedeemInstant(ctx context.Context, userID int64, reward *Reward, now time.Time) (*engine.Redemption, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	balance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	red, err := engine.NewRedemption(userID, reward.ID, reward.Cost, engine.RedemptionInstant, balance, now)
	if err != nil {
		return nil, err
	}

	if err := decrementStock(ctx, tx, reward); err != nil {
		return nil, err
	}
	if err := deductBalance(ctx, tx, userID, reward.Cost); err != nil {
		return nil, err
	}
	if err := insertRedemption(ctx, tx, red, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации обмена: %w", err)
	}
	return red, nil
}

// CreatePending создаёт заявку на обмен по чеку. Баллы не списываются
// до одобрения администратором.
func (r *Repository) CreatePending(ctx context.Context, userID int64, reward *Reward, receiptFileID string, now time.Time) (*engine.Redemption, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		`SELECT total_points FROM karma_states WHERE user_id = $1`, userID,
	).Scan(&balance)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения баланса: %w", err)
	}

	red, err := engine.NewRedemption(userID, reward.ID, reward.Cost, engine.RedemptionReceiptReview, balance, now)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var receipt *string
	if receiptFileID != "" {
		receipt = &receiptFileID
	}
	if err := insertRedemption(ctx, tx, red, receipt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации заявки: %w", err)
	}
	return red, nil
}

// Approve одобряет заявку по чеку: повторно проверяет баланс на момент
// одобрения, списывает баллы и уменьшает остаток. Если баллов уже не
// хватает — заявка остаётся в pending.
func (r *Repository) Approve(ctx context.Context, redemptionID string, resolverID int64, now time.Time) (*engine.Redemption, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	row, err := lockRedemption(ctx, tx, redemptionID)
	if err != nil {
		return nil, err
	}
	red := row.toEngine()

	balance, err := lockBalance(ctx, tx, red.UserID)
	if err != nil {
		return nil, err
	}

	if err := red.Approve(balance, resolverID, now); err != nil {
		return nil, err
	}

	reward, err := r.GetReward(ctx, red.RewardID)
	if err != nil {
		return nil, err
	}
	if err := decrementStock(ctx, tx, reward); err != nil {
		return nil, err
	}
	if err := deductBalance(ctx, tx, red.UserID, red.PointsCost); err != nil {
		return nil, err
	}

	row.fromEngine(red)
	if err := updateRedemption(ctx, tx, row); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации одобрения: %w", err)
	}
	return red, nil
}

// Reject отклоняет заявку по чеку. Баланс не меняется.
func (r *Repository) Reject(ctx context.Context, redemptionID string, resolverID int64, now time.Time) (*engine.Redemption, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	row, err := lockRedemption(ctx, tx, redemptionID)
	if err != nil {
		return nil, err
	}
	red := row.toEngine()

	if err := red.Reject(resolverID, now); err != nil {
		return nil, err
	}

	row.fromEngine(red)
	if err := updateRedemption(ctx, tx, row); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации отклонения: %w", err)
	}
	return red, nil
}

// ListPending возвращает ожидающие решения заявки, старые первыми.
func (r *Repository) ListPending(ctx context.Context) ([]*Redemption, error) {
	query := `SELECT ` + redemptionColumns + `
		FROM redemptions
		WHERE status = 'pending'
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заявок: %w", err)
	}
	defer rows.Close()

	var out []*Redemption
	for rows.Next() {
		var red Redemption
		if err := rows.Scan(
			&red.ID, &red.UserID, &red.RewardID, &red.PointsCost, &red.Kind, &red.Status,
			&red.ReceiptFileID, &red.CreatedAt, &red.ResolvedAt, &red.ResolverID,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		out = append(out, &red)
	}
	return out, rows.Err()
}

// GetUserRedemptions возвращает заявки пользователя, новые первыми.
func (r *Repository) GetUserRedemptions(ctx context.Context, userID int64, limit int) ([]*Redemption, error) {
	query := `SELECT ` + redemptionColumns + `
		FROM redemptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заявок пользователя: %w", err)
	}
	defer rows.Close()

	var out []*Redemption
	for rows.Next() {
		var red Redemption
		if err := rows.Scan(
			&red.ID, &red.UserID, &red.RewardID, &red.PointsCost, &red.Kind, &red.Status,
			&red.ReceiptFileID, &red.CreatedAt, &red.ResolvedAt, &red.ResolverID,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		out = append(out, &red)
	}
	return out, rows.Err()
}

// --- Внутренние шаги транзакций ---

func lockBalance(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx,
		`SELECT total_points FROM karma_states WHERE user_id = $1 FOR UPDATE`, userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.ErrUserNotFound
		}
		return 0, fmt.Errorf("ошибка чтения баланса: %w", err)
	}
	return balance, nil
}

func deductBalance(ctx context.Context, tx pgx.Tx, userID, amount int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE karma_states
		SET total_points = total_points - $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка списания баллов: %w", err)
	}
	return nil
}

// decrementStock уменьшает остаток награды с конечным запасом.
func decrementStock(ctx context.Context, tx pgx.Tx, reward *Reward) error {
	if reward.Stock == nil {
		return nil
	}
	tag, err := tx.Exec(ctx, `
		UPDATE rewards SET stock = stock - 1
		WHERE id = $1 AND stock > 0
	`, reward.ID)
	if err != nil {
		return fmt.Errorf("ошибка уменьшения остатка: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrRewardUnavailable
	}
	return nil
}

func insertRedemption(ctx context.Context, tx pgx.Tx, red *engine.Redemption, receiptFileID *string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO redemptions (id, user_id, reward_id, points_cost, kind, status, receipt_file_id, created_at, resolved_at, resolver_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, red.ID, red.UserID, red.RewardID, red.PointsCost, string(red.Kind), string(red.Status),
		receiptFileID, red.CreatedAt, red.ResolvedAt, red.ResolverID)
	if err != nil {
		return fmt.Errorf("ошибка записи заявки: %w", err)
	}
	return nil
}

func lockRedemption(ctx context.Context, tx pgx.Tx, id string) (*Redemption, error) {
	query := `SELECT ` + redemptionColumns + ` FROM redemptions WHERE id = $1 FOR UPDATE`
	var red Redemption
	err := tx.QueryRow(ctx, query, id).Scan(
		&red.ID, &red.UserID, &red.RewardID, &red.PointsCost, &red.Kind, &red.Status,
		&red.ReceiptFileID, &red.CreatedAt, &red.ResolvedAt, &red.ResolverID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrRedemptionNotFound
		}
		return nil, fmt.Errorf("ошибка чтения заявки: %w", err)
	}
	return &red, nil
}

func updateRedemption(ctx context.Context, tx pgx.Tx, red *Redemption) error {
	_, err := tx.Exec(ctx, `
		UPDATE redemptions
		SET status = $2, resolved_at = $3, resolver_id = $4
		WHERE id = $1
	`, red.ID, red.Status, red.ResolvedAt, red.ResolverID)
	if err != nil {
		return fmt.Errorf("ошибка обновления заявки: %w", err)
	}
	return nil
}
