package engine

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)

func TestRedemption_InstantApproved(t *testing.T) {
	r, err := NewRedemption(42, 7, 300, RedemptionInstant, 500, now)
	if err != nil {
		t.Fatalf("NewRedemption: %v", err)
	}
	if r.Status != StatusApproved {
		t.Errorf("Status = %q, ожидался approved", r.Status)
	}
	if r.ResolvedAt == nil {
		t.Error("ResolvedAt пуст у мгновенного обмена")
	}
	if r.ID == "" {
		t.Error("пустой идентификатор заявки")
	}
}

func TestRedemption_InstantInsufficient(t *testing.T) {
	// Баллов не хватает: заявка не создаётся, баланс остаётся прежним.
	r, err := NewRedemption(42, 7, 500, RedemptionInstant, 300, now)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("ожидался ErrInsufficientPoints, получено %v", err)
	}
	if r != nil {
		t.Errorf("заявка создана несмотря на отказ: %+v", r)
	}
}

func TestRedemption_ReceiptReviewFlow(t *testing.T) {
	r, err := NewRedemption(42, 7, 200, RedemptionReceiptReview, 1000, now)
	if err != nil {
		t.Fatalf("NewRedemption: %v", err)
	}
	if r.Status != StatusPending || r.Resolved() {
		t.Fatalf("Status = %q, ожидался pending", r.Status)
	}

	later := now.Add(time.Hour)
	if err := r.Approve(1000, 99, later); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if r.Status != StatusApproved || r.ResolverID == nil || *r.ResolverID != 99 {
		t.Errorf("после одобрения: %+v", r)
	}
}

func TestRedemption_ApproveInsufficientStaysPending(t *testing.T) {
	r, _ := NewRedemption(42, 7, 200, RedemptionReceiptReview, 1000, now)

	// К моменту проверки баллы уже потрачены: заявка остаётся в pending.
	err := r.Approve(150, 99, now.Add(time.Hour))
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("ожидался ErrInsufficientPoints, получено %v", err)
	}
	if r.Status != StatusPending {
		t.Errorf("Status = %q, ожидался pending", r.Status)
	}
}

func TestRedemption_DoubleResolution(t *testing.T) {
	r, _ := NewRedemption(42, 7, 200, RedemptionReceiptReview, 1000, now)
	if err := r.Approve(1000, 99, now); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// Решение по заявке окончательное.
	if err := r.Approve(1000, 99, now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("повторное одобрение: ожидался ErrInvalidTransition, получено %v", err)
	}
	if err := r.Reject(99, now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("отклонение после одобрения: ожидался ErrInvalidTransition, получено %v", err)
	}
}

func TestRedemption_Reject(t *testing.T) {
	r, _ := NewRedemption(42, 7, 200, RedemptionReceiptReview, 1000, now)
	if err := r.Reject(99, now); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if r.Status != StatusRejected || !r.Resolved() {
		t.Errorf("после отклонения: %+v", r)
	}
}

func TestRedemption_InvalidInput(t *testing.T) {
	if _, err := NewRedemption(42, 7, 0, RedemptionInstant, 100, now); err == nil {
		t.Error("нулевая стоимость принята")
	}
	if _, err := NewRedemption(42, 7, 100, "barter", 100, now); err == nil {
		t.Error("неизвестный способ обмена принят")
	}
}
