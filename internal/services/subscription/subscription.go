// Package subscription управляет подписками пользователей на тарифные планы.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

var (
	// ErrInvalidDates дата окончания раньше даты начала.
	ErrInvalidDates = errors.New("end date is before start date")
	// ErrInvalidStatus неизвестный фильтр статуса.
	ErrInvalidStatus = errors.New("status must be active or expired")
)

// Repository определяет методы хранилища для работы с подписками.
type Repository interface {
	// GetSubscription возвращает подписку пользователя или storage.ErrNotFound.
	GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	// UpsertSubscription создаёт или перезаписывает подписку пользователя.
	UpsertSubscription(ctx context.Context, userUID string, planID int64, start, end time.Time) (int64, error)
	// ListSubscriptions возвращает подписки по фильтру.
	ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) ([]models.SubscriptionStatus, error)
	// GetPlan возвращает план по имени.
	GetPlan(ctx context.Context, name string) (*models.Plan, error)
	// GetUserByUID возвращает пользователя.
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	// CountDownloads возвращает число скачиваний пользователя за день.
	CountDownloads(ctx context.Context, userUID string, day time.Time) (int, error)
	// SetSubscriptionBillingReference сохраняет идентификатор подписки у платёжного провайдера.
	SetSubscriptionBillingReference(ctx context.Context, userUID string, ref *string) error
	// ListDownloads возвращает журнал скачиваний по фильтру.
	ListDownloads(ctx context.Context, filter models.DownloadFilter) ([]models.DownloadLogEntry, error)
}

// Service реализует операции над подписками.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт сервис подписок.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetForUser возвращает подписку пользователя или nil, если её нет.
func (s *Service) GetForUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "subscription.GetForUser"

	sub, err := s.repo.GetSubscription(ctx, userUID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// Assign назначает пользователю план на период [start, end].
// Существующая подписка перезаписывается, а не дублируется.
func (s *Service) Assign(ctx context.Context, userUID, planName string, start, end time.Time) (*models.Subscription, error) {
	const op = "subscription.Assign"

	start, end = calendar.Date(start, nil), calendar.Date(end, nil)
	if end.Before(start) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidDates)
	}

	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: user: %w", op, err)
	}
	plan, err := s.repo.GetPlan(ctx, planName)
	if err != nil {
		return nil, fmt.Errorf("%s: plan: %w", op, err)
	}

	id, err := s.repo.UpsertSubscription(ctx, user.UUID, plan.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription assigned",
		slog.String("user_uid", user.UUID),
		slog.String("plan", plan.Name),
		slog.String("start_date", calendar.Format(start)),
		slog.String("end_date", calendar.Format(end)),
	)

	return &models.Subscription{
		ID:        id,
		UserUID:   user.UUID,
		Username:  user.Username,
		Plan:      plan,
		StartDate: start,
		EndDate:   end,
	}, nil
}

// Status возвращает подписку пользователя с использованием квоты за today.
// Для пользователя без подписки Subscription равен nil.
func (s *Service) Status(ctx context.Context, userUID string, today time.Time) (*models.SubscriptionStatus, error) {
	const op = "subscription.Status"

	sub, err := s.GetForUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	used, err := s.repo.CountDownloads(ctx, userUID, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := &models.SubscriptionStatus{Subscription: sub, DownloadsToday: used}
	if sub != nil {
		status.Active = sub.IsActive(today)
		status.StartedThisMonth = sub.StartedThisMonth(today)
		if sub.Plan != nil {
			status.DailyLimit = sub.Plan.DailyLimit
		}
	}
	return status, nil
}

// List возвращает подписки для администратора.
func (s *Service) List(ctx context.Context, filter models.SubscriptionFilter) ([]models.SubscriptionStatus, error) {
	const op = "subscription.List"

	switch filter.Status {
	case "", "active", "expired":
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidStatus, filter.Status)
	}

	list, err := s.repo.ListSubscriptions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// SetBillingReference сохраняет непрозрачный идентификатор подписки платёжной системы.
// Содержимое ref не интерпретируется.
func (s *Service) SetBillingReference(ctx context.Context, userUID string, ref *string) error {
	const op = "subscription.SetBillingReference"
	if err := s.repo.SetSubscriptionBillingReference(ctx, userUID, ref); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Downloads возвращает журнал скачиваний для администратора.
func (s *Service) Downloads(ctx context.Context, filter models.DownloadFilter) ([]models.DownloadLogEntry, error) {
	const op = "subscription.Downloads"

	if filter.Date != nil {
		d := calendar.Date(*filter.Date, nil)
		filter.Date = &d
	}
	entries, err := s.repo.ListDownloads(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}
