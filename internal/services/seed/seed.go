// Package seed наполняет базу демонстрационными данными: планами, товарами,
// пользователями с подписками и администратором. Повторный запуск не создаёт дублей.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
	"github.com/magabrotheeeer/gifshop/internal/lib/password"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

// SubscriptionDays длина демонстрационной подписки.
const SubscriptionDays = 365

// PlanSeed описывает план.
type PlanSeed struct {
	Name       string
	DailyLimit int
	Price      decimal.Decimal
}

// ProductSeed описывает товар плана.
type ProductSeed struct {
	Name string
	Plan string
}

// UserSeed описывает пользователя и его план. Пустой Plan означает администратора.
type UserSeed struct {
	Username string
	Email    string
	Password string
	Plan     string
}

// Plans тарифные планы магазина.
var Plans = []PlanSeed{
	{Name: "Free", DailyLimit: 3, Price: decimal.Zero},
	{Name: "Basic", DailyLimit: 10, Price: decimal.NewFromInt(10)},
	{Name: "Pro", DailyLimit: 100, Price: decimal.NewFromInt(50)},
	{Name: "Gold", DailyLimit: 500, Price: decimal.NewFromInt(100)},
}

// Products по одному товару на план.
var Products = []ProductSeed{
	{Name: "Free Product 1", Plan: "Free"},
	{Name: "Basic Product 1", Plan: "Basic"},
	{Name: "Pro Product 1", Plan: "Pro"},
	{Name: "Gold Product 1", Plan: "Gold"},
}

// Users демонстрационные пользователи, по одному на план.
var Users = []UserSeed{
	{Username: "freeuser", Email: "free@example.com", Password: "free123", Plan: "Free"},
	{Username: "basicuser", Email: "basic@example.com", Password: "basic123", Plan: "Basic"},
	{Username: "prouser", Email: "pro@example.com", Password: "pro123", Plan: "Pro"},
	{Username: "golduser", Email: "gold@example.com", Password: "gold123", Plan: "Gold"},
}

// Admin учётная запись администратора.
var Admin = UserSeed{Username: "admin", Email: "admin@example.com", Password: "admin123"}

// Repository определяет методы хранилища, нужные для наполнения.
type Repository interface {
	UpsertPlan(ctx context.Context, name string, dailyLimit int, price decimal.Decimal) (*models.Plan, error)
	EnsureProduct(ctx context.Context, name string, planID int64, image *string) (int64, bool, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (string, error)
	UpsertSubscription(ctx context.Context, userUID string, planID int64, start, end time.Time) (int64, error)
}

// Report итог запуска. Plans и Subscriptions считают записи, созданные
// или обновлённые этим запуском; Products и Users только созданные впервые.
type Report struct {
	Plans         int
	Products      int
	Users         int
	Subscriptions int
	AdminCreated  bool
}

// Seeder выполняет наполнение.
type Seeder struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт Seeder.
func New(repo Repository, log *slog.Logger) *Seeder {
	return &Seeder{repo: repo, log: log}
}

// Run создаёт или обновляет демонстрационные данные. Подписки пользователей
// перезаписываются на период [today, today+365 дней].
func (s *Seeder) Run(ctx context.Context, today time.Time) (*Report, error) {
	const op = "seed.Run"

	var report Report
	plans := make(map[string]*models.Plan, len(Plans))
	for _, p := range Plans {
		plan, err := s.repo.UpsertPlan(ctx, p.Name, p.DailyLimit, p.Price)
		if err != nil {
			return nil, fmt.Errorf("%s: plan %s: %w", op, p.Name, err)
		}
		plans[plan.Name] = plan
		report.Plans++
	}

	image := models.DefaultImage
	for _, p := range Products {
		_, created, err := s.repo.EnsureProduct(ctx, p.Name, plans[p.Plan].ID, &image)
		if err != nil {
			return nil, fmt.Errorf("%s: product %s: %w", op, p.Name, err)
		}
		if created {
			report.Products++
		}
	}

	start := calendar.Date(today, nil)
	end := calendar.AddDays(start, SubscriptionDays)
	for _, u := range Users {
		user, created, err := s.ensureUser(ctx, u, models.RoleUser)
		if err != nil {
			return nil, fmt.Errorf("%s: user %s: %w", op, u.Username, err)
		}
		if created {
			report.Users++
		}
		if _, err := s.repo.UpsertSubscription(ctx, user.UUID, plans[u.Plan].ID, start, end); err != nil {
			return nil, fmt.Errorf("%s: subscription %s: %w", op, u.Username, err)
		}
		report.Subscriptions++
	}

	_, created, err := s.ensureUser(ctx, Admin, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: admin: %w", op, err)
	}
	report.AdminCreated = created

	s.log.Info("seed finished",
		slog.Int("plans", report.Plans),
		slog.Int("subscriptions", report.Subscriptions),
		slog.Int("new_products", report.Products),
		slog.Int("new_users", report.Users),
		slog.Bool("admin_created", report.AdminCreated),
	)
	return &report, nil
}

// ensureUser возвращает существующего пользователя или создаёт его.
// Пароль задаётся только при создании.
func (s *Seeder) ensureUser(ctx context.Context, u UserSeed, role string) (*models.User, bool, error) {
	user, err := s.repo.GetUserByUsername(ctx, u.Username)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	hash, err := password.GetHash(u.Password)
	if err != nil {
		return nil, false, err
	}
	user = &models.User{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	user.UUID, err = s.repo.CreateUser(ctx, *user)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
