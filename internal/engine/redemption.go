// Package engine — redemption.go содержит конечный автомат обмена баллов
// на награды. Два пути: мгновенный обмен (списание при создании заявки)
// и обмен по чеку (списание только после одобрения администратором).
// Решение по заявке окончательно — переоткрытий не бывает.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RedemptionKind — способ обмена.
type RedemptionKind string

const (
	// RedemptionInstant — баллы списываются сразу при создании заявки.
	RedemptionInstant RedemptionKind = "instant"
	// RedemptionReceiptReview — заявка ждёт проверки чека администратором,
	// списание происходит только при одобрении.
	RedemptionReceiptReview RedemptionKind = "receipt_review"
)

// RedemptionStatus — состояние заявки.
type RedemptionStatus string

const (
	StatusPending  RedemptionStatus = "pending"
	StatusApproved RedemptionStatus = "approved"
	StatusRejected RedemptionStatus = "rejected"
)

// Redemption — заявка на обмен баллов.
type Redemption struct {
	ID         string
	UserID     int64
	RewardID   int64
	PointsCost int64
	Kind       RedemptionKind
	Status     RedemptionStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
	ResolverID *int64
}

// NewRedemption создаёт заявку на обмен.
//
// Для мгновенного обмена баланс проверяется здесь же: при нехватке баллов
// возвращается ErrInsufficientPoints и заявка не создаётся вовсе —
// списание и создание либо происходят вместе, либо не происходят.
// Обмен по чеку создаётся в pending без каких-либо списаний.
func NewRedemption(userID, rewardID, cost int64, kind RedemptionKind, balance int64, now time.Time) (*Redemption, error) {
	if cost <= 0 {
		return nil, fmt.Errorf("стоимость награды должна быть положительной, получено %d", cost)
	}

	r := &Redemption{
		ID:         uuid.NewString(),
		UserID:     userID,
		RewardID:   rewardID,
		PointsCost: cost,
		Kind:       kind,
		CreatedAt:  now,
	}

	switch kind {
	case RedemptionInstant:
		if balance < cost {
			return nil, fmt.Errorf("нужно %d, на счету %d: %w", cost, balance, ErrInsufficientPoints)
		}
		r.Status = StatusApproved
		r.ResolvedAt = &now
	case RedemptionReceiptReview:
		r.Status = StatusPending
	default:
		return nil, fmt.Errorf("неизвестный способ обмена %q", kind)
	}

	return r, nil
}

// Approve одобряет заявку по чеку. Баланс проверяется повторно на момент
// одобрения: если пользователь успел потратить баллы, возвращается
// ErrInsufficientPoints, заявка остаётся в pending, а отказ показывается
// проверяющему. Повторное решение по заявке — ErrInvalidTransition.
func (r *Redemption) Approve(balance int64, resolverID int64, now time.Time) error {
	if r.Status != StatusPending {
		return fmt.Errorf("заявка %s в статусе %q: %w", r.ID, r.Status, ErrInvalidTransition)
	}
	if balance < r.PointsCost {
		return fmt.Errorf("нужно %d, на счету %d: %w", r.PointsCost, balance, ErrInsufficientPoints)
	}
	r.Status = StatusApproved
	r.ResolvedAt = &now
	r.ResolverID = &resolverID
	return nil
}

// Reject отклоняет заявку по чеку. Баланс не меняется.
func (r *Redemption) Reject(resolverID int64, now time.Time) error {
	if r.Status != StatusPending {
		return fmt.Errorf("заявка %s в статусе %q: %w", r.ID, r.Status, ErrInvalidTransition)
	}
	r.Status = StatusRejected
	r.ResolvedAt = &now
	r.ResolverID = &resolverID
	return nil
}

// Resolved сообщает, принято ли по заявке окончательное решение.
func (r *Redemption) Resolved() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}
