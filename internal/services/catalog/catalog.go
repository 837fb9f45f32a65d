// Package catalog содержит бизнес-логику каталога тарифных планов и товаров.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/lib/upload"
	"github.com/magabrotheeeer/gifshop/internal/models"
)

const (
	plansCacheKey = "plans:all"
	plansCacheTTL = time.Hour
)

var (
	// ErrInvalidPlan параметры плана не прошли проверку.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrInvalidProduct параметры товара не прошли проверку.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrBlobDisabled хранилище файлов не настроено.
	ErrBlobDisabled = errors.New("blob storage is not configured")
)

// Repository определяет методы хранилища, нужные каталогу.
type Repository interface {
	// GetPlan возвращает план по имени.
	GetPlan(ctx context.Context, name string) (*models.Plan, error)
	// ListPlans возвращает все планы.
	ListPlans(ctx context.Context) ([]models.Plan, error)
	// UpsertPlan создаёт план или обновляет лимит и цену существующего.
	UpsertPlan(ctx context.Context, name string, dailyLimit int, price decimal.Decimal) (*models.Plan, error)
	// SetPlanBillingReference сохраняет идентификатор цены у платёжного провайдера.
	SetPlanBillingReference(ctx context.Context, name string, ref *string) error
	// DeletePlan удаляет план вместе с его товарами.
	DeletePlan(ctx context.Context, name string) error
	// GetProduct возвращает товар по ID.
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	// ListProducts возвращает все товары.
	ListProducts(ctx context.Context) ([]models.Product, error)
	// CreateProduct создаёт товар и возвращает его ID.
	CreateProduct(ctx context.Context, name string, planID int64, image *string) (int64, error)
	// DeleteProduct удаляет товар вместе с его записями в журнале скачиваний.
	DeleteProduct(ctx context.Context, id int64) error
	// SetProductObject сохраняет ключ изображения или файла товара.
	SetProductObject(ctx context.Context, id int64, kind models.FileKind, key string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Blob загружает и удаляет объекты товаров.
type Blob interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Service реализует операции каталога. cache и blob могут быть nil.
type Service struct {
	repo  Repository
	cache Cache
	blob  Blob
	log   *slog.Logger
	now   func() time.Time
}

// New создаёт каталог.
func New(repo Repository, cache Cache, blob Blob, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		blob:  blob,
		log:   log,
		now:   time.Now,
	}
}

// GetPlan возвращает план по имени.
func (s *Service) GetPlan(ctx context.Context, name string) (*models.Plan, error) {
	const op = "catalog.GetPlan"
	plan, err := s.repo.GetPlan(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// ListPlans возвращает все планы, используя кеш.
func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "catalog.ListPlans"

	if s.cache != nil {
		var cached []models.Plan
		found, err := s.cache.Get(ctx, plansCacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read plans from cache", sl.Err(err))
		} else if found {
			return cached, nil
		}
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, plansCacheKey, plans, plansCacheTTL); err != nil {
			s.log.Warn("failed to cache plans", slog.String("key", plansCacheKey), sl.Err(err))
		}
	}
	return plans, nil
}

// UpsertPlan создаёт или обновляет план. Повторный вызов с теми же
// аргументами не меняет состояние.
func (s *Service) UpsertPlan(ctx context.Context, name string, dailyLimit int, price decimal.Decimal) (*models.Plan, error) {
	const op = "catalog.UpsertPlan"

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%s: %w: empty name", op, ErrInvalidPlan)
	case dailyLimit < 0:
		return nil, fmt.Errorf("%s: %w: negative daily limit", op, ErrInvalidPlan)
	case price.IsNegative():
		return nil, fmt.Errorf("%s: %w: negative price", op, ErrInvalidPlan)
	}

	plan, err := s.repo.UpsertPlan(ctx, name, dailyLimit, price.Round(2))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidatePlans(ctx)

	s.log.Info("plan upserted", slog.String("plan", plan.Name), slog.Int("daily_limit", plan.DailyLimit))
	return plan, nil
}

// SetPlanBillingReference сохраняет непрозрачный идентификатор цены плана.
func (s *Service) SetPlanBillingReference(ctx context.Context, name string, ref *string) error {
	const op = "catalog.SetPlanBillingReference"
	if err := s.repo.SetPlanBillingReference(ctx, name, ref); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidatePlans(ctx)
	return nil
}

// DeletePlan удаляет план. Товары плана удаляются вместе с ним,
// подписки на план остаются без плана и перестают давать доступ.
func (s *Service) DeletePlan(ctx context.Context, name string) error {
	const op = "catalog.DeletePlan"

	plan, err := s.repo.GetPlan(ctx, name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeletePlan(ctx, plan.Name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidatePlans(ctx)

	removed := 0
	for _, p := range products {
		if p.Plan.ID == plan.ID {
			s.removeObjects(ctx, p)
			removed++
		}
	}

	s.log.Info("plan deleted", slog.String("plan", plan.Name), slog.Int("products", removed))
	return nil
}

func (s *Service) invalidatePlans(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, plansCacheKey); err != nil {
		s.log.Warn("failed to invalidate plans cache", sl.Err(err))
	}
}

// GetProduct возвращает товар по ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "catalog.GetProduct"
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

// ListProducts возвращает все товары.
func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	const op = "catalog.ListProducts"
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// CreateProduct создаёт товар, доступный подписчикам плана planName.
func (s *Service) CreateProduct(ctx context.Context, name, planName string) (*models.Product, error) {
	const op = "catalog.CreateProduct"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w: empty name", op, ErrInvalidProduct)
	}

	plan, err := s.repo.GetPlan(ctx, planName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	image := models.DefaultImage
	id, err := s.repo.CreateProduct(ctx, name, plan.ID, &image)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("product created", slog.Int64("id", id), slog.String("plan", plan.Name))
	return &models.Product{ID: id, Name: name, Plan: *plan, Image: &image}, nil
}

// DeleteProduct удаляет товар. Записи журнала о нём удаляются каскадом.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	const op = "catalog.DeleteProduct"

	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.removeObjects(ctx, *product)

	s.log.Info("product deleted", slog.Int64("id", id))
	return nil
}

// removeObjects удаляет загруженные файлы товара. Изображение по умолчанию не трогается.
func (s *Service) removeObjects(ctx context.Context, product models.Product) {
	if s.blob == nil {
		return
	}
	for _, key := range []*string{product.Image, product.File} {
		if key == nil || !strings.HasPrefix(*key, upload.Prefix) {
			continue
		}
		if err := s.blob.Delete(ctx, *key); err != nil {
			s.log.Warn("failed to delete product object", slog.String("key", *key), sl.Err(err))
		}
	}
}

// AttachProductFile загружает изображение или файл товара в хранилище
// и возвращает ключ объекта.
func (s *Service) AttachProductFile(ctx context.Context, id int64, kind models.FileKind, filename string, r io.Reader, size int64) (string, error) {
	const op = "catalog.AttachProductFile"

	if s.blob == nil {
		return "", fmt.Errorf("%s: %w", op, ErrBlobDisabled)
	}
	if kind != models.FileKindImage && kind != models.FileKindFile {
		return "", fmt.Errorf("%s: %w: unknown kind %q", op, ErrInvalidProduct, kind)
	}
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("%s: %w: empty filename", op, ErrInvalidProduct)
	}
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := upload.ObjectName(filename, s.now())
	if err := s.blob.Upload(ctx, key, r, size, upload.ContentType(filename)); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetProductObject(ctx, id, kind, key); err != nil {
		if delErr := s.blob.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to remove orphaned object", slog.String("key", key), sl.Err(delErr))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("product object attached", slog.Int64("id", id), slog.String("kind", string(kind)), slog.String("key", key))
	return key, nil
}
