package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/gifshop/internal/models"
)

const planColumns = `id, name, price, daily_limit, billing_reference`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*models.Plan, error) {
	var (
		p   models.Plan
		ref sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.DailyLimit, &ref); err != nil {
		return nil, err
	}
	p.BillingReference = stringPtr(ref)
	return &p, nil
}

// GetPlan возвращает план по имени.
func (s *Storage) GetPlan(ctx context.Context, name string) (*models.Plan, error) {
	const op = "storage.GetPlan"

	query := `SELECT ` + planColumns + ` FROM plans WHERE name = $1`
	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, wrap(op, err)
	}
	return plan, nil
}

// ListPlans возвращает все планы по возрастанию цены.
func (s *Storage) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListPlans"

	query := `SELECT ` + planColumns + ` FROM plans ORDER BY price, id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	result := make([]models.Plan, 0, 4)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// UpsertPlan создаёт план или обновляет лимит и цену существующего с тем же именем.
func (s *Storage) UpsertPlan(ctx context.Context, name string, dailyLimit int, price decimal.Decimal) (*models.Plan, error) {
	const op = "storage.UpsertPlan"

	query := `INSERT INTO plans (name, daily_limit, price)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (name) DO UPDATE
			  SET daily_limit = EXCLUDED.daily_limit, price = EXCLUDED.price
			  RETURNING ` + planColumns
	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, name, dailyLimit, price))
	if err != nil {
		return nil, wrap(op, err)
	}
	return plan, nil
}

// SetPlanBillingReference сохраняет идентификатор цены платёжного провайдера.
func (s *Storage) SetPlanBillingReference(ctx context.Context, name string, ref *string) error {
	const op = "storage.SetPlanBillingReference"

	res, err := s.DB.ExecContext(ctx, `UPDATE plans SET billing_reference = $1 WHERE name = $2`, nullString(ref), name)
	if err != nil {
		return wrap(op, err)
	}
	return requireAffected(op, res)
}

// DeletePlan удаляет план. Товары плана удаляются каскадно,
// у подписок на него план обнуляется.
func (s *Storage) DeletePlan(ctx context.Context, name string) error {
	const op = "storage.DeletePlan"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM plans WHERE name = $1`, name)
	if err != nil {
		return wrap(op, err)
	}
	return requireAffected(op, res)
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return wrap(op, sql.ErrNoRows)
	}
	return nil
}
