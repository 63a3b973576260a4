// Package rewards реализует обмен баллов на награды.
// models.go описывает структуры для таблиц rewards и redemptions.
package rewards

import (
	"time"

	"gorodok.ru/karma-bot/internal/engine"
)

// Reward — позиция каталога наград.
type Reward struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Cost        int64     `db:"cost"`
	Kind        string    `db:"kind"`  // instant | receipt_review
	Stock       *int      `db:"stock"` // nil — без ограничения
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
}

// Redemption — строка таблицы redemptions.
// Статусная логика живёт в движке, здесь только хранение.
type Redemption struct {
	ID            string     `db:"id"`
	UserID        int64      `db:"user_id"`
	RewardID      int64      `db:"reward_id"`
	PointsCost    int64      `db:"points_cost"`
	Kind          string     `db:"kind"`
	Status        string     `db:"status"`
	ReceiptFileID *string    `db:"receipt_file_id"`
	CreatedAt     time.Time  `db:"created_at"`
	ResolvedAt    *time.Time `db:"resolved_at"`
	ResolverID    *int64     `db:"resolver_id"`
}

// toEngine переводит строку БД в доменную заявку движка.
func (r *Redemption) toEngine() *engine.Redemption {
	return &engine.Redemption{
		ID:         r.ID,
		UserID:     r.UserID,
		RewardID:   r.RewardID,
		PointsCost: r.PointsCost,
		Kind:       engine.RedemptionKind(r.Kind),
		Status:     engine.RedemptionStatus(r.Status),
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
		ResolverID: r.ResolverID,
	}
}

// fromEngine переносит доменную заявку обратно в строку БД.
func (r *Redemption) fromEngine(e *engine.Redemption) {
	r.Status = string(e.Status)
	r.ResolvedAt = e.ResolvedAt
	r.ResolverID = e.ResolverID
}
