package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/gifshop/internal/models"
)

const subscriptionColumns = `s.id, s.user_uid, u.username, s.start_date, s.end_date, s.billing_reference,
			p.id, p.name, p.price, p.daily_limit, p.billing_reference`

const subscriptionFrom = `FROM subscriptions s
		  JOIN users u ON u.uid = s.user_uid
		  LEFT JOIN plans p ON p.id = s.plan_id`

// scanSubscription читает подписку; extra дописываются в конец списка колонок.
func scanSubscription(row rowScanner, extra ...any) (*models.Subscription, error) {
	var (
		sub       models.Subscription
		subRef    sql.NullString
		planID    sql.NullInt64
		planName  sql.NullString
		planPrice decimal.NullDecimal
		planLimit sql.NullInt64
		planRef   sql.NullString
	)
	dest := []any{&sub.ID, &sub.UserUID, &sub.Username, &sub.StartDate, &sub.EndDate, &subRef,
		&planID, &planName, &planPrice, &planLimit, &planRef}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	sub.BillingReference = stringPtr(subRef)
	if planID.Valid {
		sub.Plan = &models.Plan{
			ID:               planID.Int64,
			Name:             planName.String,
			Price:            planPrice.Decimal,
			DailyLimit:       int(planLimit.Int64),
			BillingReference: stringPtr(planRef),
		}
	}
	return &sub, nil
}

// GetSubscription возвращает подписку пользователя или ErrNotFound.
func (s *Storage) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"

	query := `SELECT ` + subscriptionColumns + ` ` + subscriptionFrom + ` WHERE s.user_uid = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return sub, nil
}

// UpsertSubscription создаёт подписку пользователя или перезаписывает план и даты существующей.
func (s *Storage) UpsertSubscription(ctx context.Context, userUID string, planID int64, start, end time.Time) (int64, error) {
	const op = "storage.UpsertSubscription"

	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO subscriptions (user_uid, plan_id, start_date, end_date)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_uid) DO UPDATE
		 SET plan_id = EXCLUDED.plan_id, start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date
		 RETURNING id`,
		userUID, planID, start, end).Scan(&id)
	if err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// SetSubscriptionBillingReference сохраняет идентификатор подписки у платёжного провайдера.
func (s *Storage) SetSubscriptionBillingReference(ctx context.Context, userUID string, ref *string) error {
	const op = "storage.SetSubscriptionBillingReference"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET billing_reference = $1 WHERE user_uid = $2`, nullString(ref), userUID)
	if err != nil {
		return wrap(op, err)
	}
	return requireAffected(op, res)
}

// ListSubscriptions возвращает подписки с числом скачиваний за filter.Today.
// Status "active" оставляет подписки, активные на эту дату, "expired" оставляет остальные.
func (s *Storage) ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) ([]models.SubscriptionStatus, error) {
	const op = "storage.ListSubscriptions"

	query := `SELECT ` + subscriptionColumns + `,
			(SELECT COUNT(*) FROM download_logs d
			  WHERE d.user_uid = s.user_uid AND d.download_date = $1) AS downloads_today
		  ` + subscriptionFrom + `
		  WHERE $2 = ''
		     OR ($2 = 'active' AND s.start_date <= $1 AND s.end_date >= $1)
		     OR ($2 = 'expired' AND NOT (s.start_date <= $1 AND s.end_date >= $1))
		  ORDER BY s.id
		  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, filter.Today, filter.Status, pageLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var result []models.SubscriptionStatus
	for rows.Next() {
		var downloads int
		sub, err := scanSubscription(rows, &downloads)
		if err != nil {
			return nil, wrap(op, err)
		}
		status := models.SubscriptionStatus{
			Subscription:     sub,
			Active:           sub.IsActive(filter.Today),
			StartedThisMonth: sub.StartedThisMonth(filter.Today),
			DownloadsToday:   downloads,
		}
		if sub.Plan != nil {
			status.DailyLimit = sub.Plan.DailyLimit
		}
		result = append(result, status)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}
