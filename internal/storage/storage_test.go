package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gifshop/internal/models"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewWithDB(db), mock
}

var today = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestStorage_CountDownloads(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM download_logs WHERE user_uid = $1 AND download_date = $2`)).
		WithArgs("uid-1", today).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))

	got, err := s.CountDownloads(context.Background(), "uid-1", today)
	require.NoError(t, err)
	assert.Equal(t, 9, got)
}

func TestStorage_RecordDownload(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO download_logs (user_uid, product_id, download_date)`)).
		WithArgs("uid-1", int64(3), today).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))

	id, err := s.RecordDownload(context.Background(), "uid-1", 3, today)
	require.NoError(t, err)
	assert.Equal(t, int64(41), id)
}

func TestStorage_RecordDownload_Error(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO download_logs`)).
		WillReturnError(errors.New("connection reset"))

	_, err := s.RecordDownload(context.Background(), "uid-1", 3, today)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.RecordDownload")
}

func TestStorage_GetPlan(t *testing.T) {
	s, mock := newMockStorage(t)
	cols := []string{"id", "name", "price", "daily_limit", "billing_reference"}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM plans WHERE name = $1`)).
		WithArgs("Basic").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(2, "Basic", "10.00", 10, nil))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM plans WHERE name = $1`)).
		WithArgs("Platinum").
		WillReturnError(sql.ErrNoRows)

	plan, err := s.GetPlan(context.Background(), "Basic")
	require.NoError(t, err)
	assert.Equal(t, int64(2), plan.ID)
	assert.Equal(t, 10, plan.DailyLimit)
	assert.True(t, decimal.NewFromInt(10).Equal(plan.Price))
	assert.Nil(t, plan.BillingReference)

	_, err = s.GetPlan(context.Background(), "Platinum")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_UpsertPlan(t *testing.T) {
	s, mock := newMockStorage(t)
	cols := []string{"id", "name", "price", "daily_limit", "billing_reference"}
	price := decimal.NewFromInt(50)

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (name) DO UPDATE`)).
		WithArgs("Pro", 100, price).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, "Pro", "50.00", 100, "price_123"))

	plan, err := s.UpsertPlan(context.Background(), "Pro", 100, price)
	require.NoError(t, err)
	assert.Equal(t, "Pro", plan.Name)
	require.NotNil(t, plan.BillingReference)
	assert.Equal(t, "price_123", *plan.BillingReference)
}

func TestStorage_GetSubscription_NilPlan(t *testing.T) {
	s, mock := newMockStorage(t)
	cols := []string{"id", "user_uid", "username", "start_date", "end_date", "billing_reference",
		"p_id", "p_name", "p_price", "p_daily_limit", "p_billing_reference"}
	end := today.AddDate(0, 1, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.user_uid = $1`)).
		WithArgs("uid-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "uid-1", "basicuser", today, end, nil, nil, nil, nil, nil, nil))

	sub, err := s.GetSubscription(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Nil(t, sub.Plan)
	assert.Equal(t, "basicuser", sub.Username)
	assert.True(t, sub.IsActive(today))
}

func TestStorage_GetSubscription_NotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.user_uid = $1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetSubscription(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_CreateUser_Duplicate(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := s.CreateUser(context.Background(), models.User{Username: "admin", Role: models.RoleAdmin})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestStorage_DeleteProduct(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.DeleteProduct(context.Background(), 1))
	assert.ErrorIs(t, s.DeleteProduct(context.Background(), 2), ErrNotFound)
}

func TestStorage_DeletePlan(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM plans WHERE name = $1`)).
		WithArgs("Gold").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM plans WHERE name = $1`)).
		WithArgs("Platinum").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.DeletePlan(context.Background(), "Gold"))
	assert.ErrorIs(t, s.DeletePlan(context.Background(), "Platinum"), ErrNotFound)
}

func TestStorage_SetUserActive(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_active = $1 WHERE uid = $2`)).
		WithArgs(false, "uid-bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_active = $1 WHERE uid = $2`)).
		WithArgs(true, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.SetUserActive(context.Background(), "uid-bob", false))
	assert.ErrorIs(t, s.SetUserActive(context.Background(), "ghost", true), ErrNotFound)
}

func TestStorage_SetProductObject_UnknownKind(t *testing.T) {
	s, _ := newMockStorage(t)
	err := s.SetProductObject(context.Background(), 1, models.FileKind("video"), "key")
	assert.Error(t, err)
}

func TestStorage_ListDownloads_BuildsFilter(t *testing.T) {
	s, mock := newMockStorage(t)
	cols := []string{"id", "user_uid", "username", "product_id", "name", "download_date"}

	mock.ExpectQuery(regexp.QuoteMeta(
		`WHERE d.download_date = $1 AND d.user_uid = $2 AND (u.username ILIKE $3 ESCAPE '\' OR pr.name ILIKE $3 ESCAPE '\') ORDER BY d.download_date DESC, d.id DESC LIMIT $4 OFFSET $5`)).
		WithArgs(today, "uid-1", "%gold%", 100, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(5, "uid-1", "golduser", 4, "Gold Product 1", today).
			AddRow(4, nil, nil, 4, "Gold Product 1", today))

	entries, err := s.ListDownloads(context.Background(), models.DownloadFilter{
		Date:    &today,
		UserUID: "uid-1",
		Search:  "gold",
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "golduser", *entries[0].Username)
	assert.Nil(t, entries[1].UserUID, "deleted user leaves a null reference")
}

func TestStorage_ListDownloads_EscapesSearchWildcards(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`(u.username ILIKE $1 ESCAPE '\' OR pr.name ILIKE $1 ESCAPE '\')`)).
		WithArgs(`%100\%\_off\\%`, 100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_uid", "username", "product_id", "name", "download_date"}))

	entries, err := s.ListDownloads(context.Background(), models.DownloadFilter{Search: `100%_off\`})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
