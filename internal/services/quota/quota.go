// Package quota решает, может ли пользователь скачать товар, и учитывает
// скачивания в дневной квоте плана.
//
// Authorize только проверяет право и ничего не меняет. Download выполняет
// проверку и запись в журнал под блокировкой пользователя, поэтому
// параллельные запросы не превышают дневной лимит.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gifshop/internal/lib/sl"
	"github.com/magabrotheeeer/gifshop/internal/lib/upload"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

// ErrNoFile у товара нет загруженного файла.
var ErrNoFile = errors.New("product has no file")

// Repository определяет методы хранилища, нужные для проверки квоты.
type Repository interface {
	GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CountDownloads(ctx context.Context, userUID string, day time.Time) (int, error)
	RecordDownload(ctx context.Context, userUID string, productID int64, day time.Time) (int64, error)
}

// Presigner выдаёт временную ссылку на объект.
type Presigner interface {
	PresignedURL(ctx context.Context, key, downloadName string) (string, error)
}

// Publisher публикует события о скачиваниях.
type Publisher interface {
	PublishDownload(ctx context.Context, event models.DownloadEvent) error
}

// Observer учитывает решения в метриках.
type Observer interface {
	ObserveDecision(allowed bool, reason string)
}

// Result описывает итог скачивания. EntryID и URL заполнены только при разрешении.
type Result struct {
	Decision Decision `json:"decision"`
	EntryID  int64    `json:"entry_id,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Service реализует проверку и учёт квоты.
type Service struct {
	repo      Repository
	locker    Locker
	presigner Presigner
	publisher Publisher
	observer  Observer
	log       *slog.Logger
}

// Option настраивает необязательные зависимости Service.
type Option func(*Service)

// WithPresigner включает выдачу ссылок на файлы.
func WithPresigner(p Presigner) Option {
	return func(s *Service) { s.presigner = p }
}

// WithPublisher включает публикацию событий.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithObserver включает метрики решений.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// New создаёт сервис квот. Если locker равен nil, используется LocalLocker.
func New(repo Repository, locker Locker, log *slog.Logger, opts ...Option) *Service {
	if locker == nil {
		locker = NewLocalLocker()
	}
	s := &Service{repo: repo, locker: locker, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authorize проверяет, может ли пользователь скачать товар сегодня. Ничего не записывает.
// Для несуществующего товара возвращает storage.ErrNotFound.
func (s *Service) Authorize(ctx context.Context, userUID string, productID int64, today time.Time) (Decision, error) {
	const op = "quota.Authorize"

	product, sub, used, err := s.load(ctx, userUID, productID, today)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	d := Evaluate(sub, *product, used, today)
	s.observe(d)
	return d, nil
}

// Download атомарно проверяет право и при разрешении добавляет запись в журнал.
// Отказ возвращается в Result.Decision без ошибки.
func (s *Service) Download(ctx context.Context, userUID string, productID int64, today time.Time) (*Result, error) {
	const op = "quota.Download"

	var (
		res  Result
		plan string
	)
	err := s.locker.WithLock(ctx, userUID, func(ctx context.Context) error {
		product, sub, used, err := s.load(ctx, userUID, productID, today)
		if err != nil {
			return err
		}
		res.Decision = Evaluate(sub, *product, used, today)
		if !res.Decision.Allowed {
			return nil
		}
		if !product.HasFile() {
			return ErrNoFile
		}
		if s.presigner != nil {
			url, err := s.presigner.PresignedURL(ctx, *product.File, downloadName(*product))
			if err != nil {
				return err
			}
			res.URL = url
		}
		res.EntryID, err = s.repo.RecordDownload(ctx, userUID, productID, today)
		if err != nil {
			return err
		}
		plan = product.Plan.Name
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.observe(res.Decision)
	if res.Decision.Allowed {
		s.log.Info("download recorded",
			slog.String("user_uid", userUID),
			slog.Int64("product_id", productID),
			slog.Int("used", res.Decision.Used+1),
			slog.Int("limit", res.Decision.Limit),
		)
		s.publish(ctx, models.DownloadEvent{
			EntryID:   res.EntryID,
			UserUID:   userUID,
			ProductID: productID,
			Plan:      plan,
			Date:      today,
			Used:      res.Decision.Used + 1,
			Limit:     res.Decision.Limit,
		})
	}
	return &res, nil
}

// load читает текущее состояние. Отсутствие подписки не считается ошибкой.
func (s *Service) load(ctx context.Context, userUID string, productID int64, today time.Time) (*models.Product, *models.Subscription, int, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, nil, 0, err
	}
	sub, err := s.repo.GetSubscription(ctx, userUID)
	if errors.Is(err, storage.ErrNotFound) {
		sub, err = nil, nil
	}
	if err != nil {
		return nil, nil, 0, err
	}
	used, err := s.repo.CountDownloads(ctx, userUID, today)
	if err != nil {
		return nil, nil, 0, err
	}
	return product, sub, used, nil
}

func (s *Service) observe(d Decision) {
	if s.observer != nil {
		s.observer.ObserveDecision(d.Allowed, d.Reason)
	}
}

func (s *Service) publish(ctx context.Context, event models.DownloadEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishDownload(context.WithoutCancel(ctx), event); err != nil {
		s.log.Warn("failed to publish download event", slog.Int64("entry_id", event.EntryID), sl.Err(err))
	}
}

func downloadName(p models.Product) string {
	ext := upload.Ext(*p.File)
	if ext == "" {
		return p.Name
	}
	return p.Name + "." + ext
}
