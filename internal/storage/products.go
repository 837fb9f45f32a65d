package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/gifshop/internal/models"
)

const productSelect = `SELECT pr.id, pr.name, pr.image, pr.file,
			p.id, p.name, p.price, p.daily_limit, p.billing_reference
		  FROM products pr
		  JOIN plans p ON p.id = pr.plan_id`

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		pr          models.Product
		image, file sql.NullString
		planRef     sql.NullString
	)
	if err := row.Scan(&pr.ID, &pr.Name, &image, &file,
		&pr.Plan.ID, &pr.Plan.Name, &pr.Plan.Price, &pr.Plan.DailyLimit, &planRef); err != nil {
		return nil, err
	}
	pr.Image = stringPtr(image)
	pr.File = stringPtr(file)
	pr.Plan.BillingReference = stringPtr(planRef)
	return &pr, nil
}

// GetProduct возвращает товар вместе с его планом.
func (s *Storage) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "storage.GetProduct"

	product, err := scanProduct(s.DB.QueryRowContext(ctx, productSelect+` WHERE pr.id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return product, nil
}

// ListProducts возвращает все товары.
func (s *Storage) ListProducts(ctx context.Context) ([]models.Product, error) {
	const op = "storage.ListProducts"

	rows, err := s.DB.QueryContext(ctx, productSelect+` ORDER BY pr.id`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var result []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// CreateProduct добавляет товар. Повтор пары (имя, план) даёт ErrAlreadyExists.
func (s *Storage) CreateProduct(ctx context.Context, name string, planID int64, image *string) (int64, error) {
	const op = "storage.CreateProduct"

	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO products (name, plan_id, image) VALUES ($1, $2, $3) RETURNING id`,
		name, planID, nullString(image)).Scan(&id)
	if err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// EnsureProduct возвращает ID товара с указанными именем и планом, создавая его при отсутствии.
func (s *Storage) EnsureProduct(ctx context.Context, name string, planID int64, image *string) (int64, bool, error) {
	const op = "storage.EnsureProduct"

	var (
		id       int64
		inserted bool
	)
	// xmax = 0 только у строки, вставленной этим запросом.
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO products (name, plan_id, image) VALUES ($1, $2, $3)
		 ON CONFLICT (name, plan_id) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, (xmax = 0)`,
		name, planID, nullString(image)).Scan(&id, &inserted)
	if err != nil {
		return 0, false, wrap(op, err)
	}
	return id, inserted, nil
}

// DeleteProduct удаляет товар; записи журнала удаляются каскадно.
func (s *Storage) DeleteProduct(ctx context.Context, id int64) error {
	const op = "storage.DeleteProduct"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return requireAffected(op, res)
}

// SetProductObject сохраняет ключ изображения или файла товара.
func (s *Storage) SetProductObject(ctx context.Context, id int64, kind models.FileKind, key string) error {
	const op = "storage.SetProductObject"

	var query string
	switch kind {
	case models.FileKindImage:
		query = `UPDATE products SET image = $1 WHERE id = $2`
	case models.FileKindFile:
		query = `UPDATE products SET file = $1 WHERE id = $2`
	default:
		return fmt.Errorf("%s: unknown file kind %q", op, kind)
	}
	res, err := s.DB.ExecContext(ctx, query, key, id)
	if err != nil {
		return wrap(op, err)
	}
	return requireAffected(op, res)
}
