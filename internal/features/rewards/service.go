// Package rewards — service.go содержит бизнес-логику обмена баллов.
// Мгновенные награды выдаются сразу, награды по чеку уходят на проверку
// администратору.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"gorodok.ru/karma-bot/internal/common"
	"gorodok.ru/karma-bot/internal/engine"
)

// Service управляет обменом баллов на награды.
type Service struct {
	repo *Repository
	loc  *time.Location
}

// NewService создаёт сервис наград.
func NewService(repo *Repository, loc *time.Location) *Service {
	return &Service{repo: repo, loc: loc}
}

// ListRewards возвращает форматированный каталог наград.
func (s *Service) ListRewards(ctx context.Context) (string, error) {
	rewards, err := s.repo.ListActive(ctx)
	if err != nil {
		return "", err
	}
	if len(rewards) == 0 {
		return "🎁 Каталог наград пока пуст", nil
	}

	var sb strings.Builder
	sb.WriteString("🎁 Каталог наград:\n\n")
	for _, rw := range rewards {
		sb.WriteString(fmt.Sprintf("%d. %s — %s", rw.ID, rw.Title, common.FormatBalance(rw.Cost)))
		if rw.Kind == string(engine.RedemptionReceiptReview) {
			sb.WriteString(" (по чеку)")
		}
		if rw.Stock != nil {
			sb.WriteString(fmt.Sprintf(", осталось %d", *rw.Stock))
		}
		sb.WriteString("\n")
		if rw.Description != "" {
			sb.WriteString("   " + rw.Description + "\n")
		}
	}
	sb.WriteString("\nОбмен: !обменять <номер>")
	return sb.String(), nil
}

// Redeem обменивает баллы на награду.
// Мгновенная награда списывается сразу; награда по чеку требует фото чека
// и создаёт заявку на проверку.
func (s *Service) Redeem(ctx context.Context, userID, rewardID int64, receiptFileID string) (*engine.Redemption, *Reward, error) {
	reward, err := s.repo.GetReward(ctx, rewardID)
	if err != nil {
		return nil, nil, err
	}
	if !reward.Active {
		return nil, nil, common.ErrRewardUnavailable
	}

	now := common.LocalTime(s.loc)

	switch engine.RedemptionKind(reward.Kind) {
	case engine.RedemptionInstant:
		red, err := s.repo.RedeemInstant(ctx, userID, reward, now)
		if err != nil {
			return nil, reward, mapRedeemError(err)
		}
		log.WithFields(log.Fields{
			"user_id": userID,
			"reward":  reward.Title,
			"cost":    reward.Cost,
		}).Info("Мгновенный обмен выполнен")
		return red, reward, nil

	case engine.RedemptionReceiptReview:
		red, err := s.repo.CreatePending(ctx, userID, reward, receiptFileID, now)
		if err != nil {
			return nil, reward, mapRedeemError(err)
		}
		log.WithFields(log.Fields{
			"user_id":       userID,
			"reward":        reward.Title,
			"redemption_id": red.ID,
		}).Info("Заявка на обмен создана")
		return red, reward, nil

	default:
		return nil, reward, fmt.Errorf("неизвестный способ обмена %q", reward.Kind)
	}
}

// Approve одобряет заявку по чеку от имени администратора.
func (s *Service) Approve(ctx context.Context, redemptionID string, resolverID int64) (*engine.Redemption, error) {
	red, err := s.repo.Approve(ctx, redemptionID, resolverID, common.LocalTime(s.loc))
	if err != nil {
		return nil, mapRedeemError(err)
	}
	log.WithFields(log.Fields{
		"redemption_id": redemptionID,
		"resolver_id":   resolverID,
	}).Info("Заявка одобрена")
	return red, nil
}

// Reject отклоняет заявку по чеку.
func (s *Service) Reject(ctx context.Context, redemptionID string, resolverID int64) (*engine.Redemption, error) {
	red, err := s.repo.Reject(ctx, redemptionID, resolverID, common.LocalTime(s.loc))
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"redemption_id": redemptionID,
		"resolver_id":   resolverID,
	}).Info("Заявка отклонена")
	return red, nil
}

// PendingList возвращает форматированный список заявок на проверку.
func (s *Service) PendingList(ctx context.Context) (string, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return "", err
	}
	if len(pending) == 0 {
		return "📭 Заявок на проверку нет", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📬 Заявки на проверку (%d):\n\n", len(pending)))
	for _, red := range pending {
		reward, err := s.repo.GetReward(ctx, red.RewardID)
		title := "?"
		if err == nil {
			title = reward.Title
		}
		sb.WriteString(fmt.Sprintf("• %s\n  от id%d, «%s», %s, %s\n",
			red.ID, red.UserID, title,
			common.FormatBalance(red.PointsCost),
			common.FormatDateTime(red.CreatedAt, s.loc)))
	}
	sb.WriteString("\nРешение: !одобрить <id> или !отклонить <id>")
	return sb.String(), nil
}

// GetUserRedemptions возвращает последние заявки пользователя.
func (s *Service) GetUserRedemptions(ctx context.Context, userID int64, limit int) ([]*Redemption, error) {
	return s.repo.GetUserRedemptions(ctx, userID, limit)
}

// mapRedeemError переводит ошибки движка в пользовательские.
func mapRedeemError(err error) error {
	if errors.Is(err, engine.ErrInsufficientPoints) {
		return common.ErrInsufficientBalance
	}
	return err
}
