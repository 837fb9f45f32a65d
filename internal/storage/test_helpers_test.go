package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/gifshop/internal/migrations"
	"github.com/magabrotheeeer/gifshop/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test requires docker")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("gifshop"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(ctx, dsn)
	require.NoError(t, err)

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB, filepath.Join(root, "migrations")))

	return s, func() {
		s.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
}

// TestDataFactory создаёт тестовые данные напрямую через Storage.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создаёт фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

func (f *TestDataFactory) CreateUser(t *testing.T, username string) string {
	t.Helper()
	uid, err := f.storage.CreateUser(context.Background(), models.User{
		UUID:         uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		IsActive:     true,
	})
	require.NoError(t, err)
	return uid
}

func (f *TestDataFactory) CreatePlan(t *testing.T, name string, limit int, price int64) *models.Plan {
	t.Helper()
	plan, err := f.storage.UpsertPlan(context.Background(), name, limit, decimal.NewFromInt(price))
	require.NoError(t, err)
	return plan
}

func (f *TestDataFactory) CreateProduct(t *testing.T, name string, planID int64) int64 {
	t.Helper()
	id, err := f.storage.CreateProduct(context.Background(), name, planID, nil)
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) Subscribe(t *testing.T, userUID string, planID int64, start, end time.Time) {
	t.Helper()
	_, err := f.storage.UpsertSubscription(context.Background(), userUID, planID, start, end)
	require.NoError(t, err)
}

func (f *TestDataFactory) Download(t *testing.T, userUID string, productID int64, day time.Time, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.storage.RecordDownload(context.Background(), userUID, productID, day)
		require.NoError(t, err)
	}
}

func (f *TestDataFactory) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.storage.DB.QueryRow(query, args...).Scan(&n))
	return n
}
