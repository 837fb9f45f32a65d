package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *RepoMock) UpsertSubscription(ctx context.Context, userUID string, planID int64, start, end time.Time) (int64, error) {
	args := m.Called(ctx, userUID, planID, start, end)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) ([]models.SubscriptionStatus, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SubscriptionStatus), args.Error(1)
}
func (m *RepoMock) GetPlan(ctx context.Context, name string) (*models.Plan, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) CountDownloads(ctx context.Context, userUID string, day time.Time) (int, error) {
	args := m.Called(ctx, userUID, day)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) SetSubscriptionBillingReference(ctx context.Context, userUID string, ref *string) error {
	return m.Called(ctx, userUID, ref).Error(0)
}
func (m *RepoMock) ListDownloads(ctx context.Context, filter models.DownloadFilter) ([]models.DownloadLogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DownloadLogEntry), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_GetForUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		sub     *models.Subscription
		repoErr error
		wantNil bool
		wantErr bool
	}{
		{name: "found", sub: &models.Subscription{ID: 1, UserUID: "u1"}},
		{name: "absent is not an error", repoErr: storage.ErrNotFound, wantNil: true},
		{name: "storage failure", repoErr: errors.New("db down"), wantNil: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			if tt.sub != nil {
				repo.On("GetSubscription", ctx, "u1").Return(tt.sub, nil).Once()
			} else {
				repo.On("GetSubscription", ctx, "u1").Return(nil, tt.repoErr).Once()
			}

			got, err := New(repo, newNoopLogger()).GetForUser(ctx, "u1")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantNil, got == nil)
		})
	}
}

func TestService_Assign(t *testing.T) {
	ctx := context.Background()
	user := &models.User{UUID: "u1", Username: "basicuser"}
	plan := &models.Plan{ID: 2, Name: "Basic", DailyLimit: 10}

	t.Run("creates or overwrites", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByUID", ctx, "u1").Return(user, nil).Once()
		repo.On("GetPlan", ctx, "Basic").Return(plan, nil).Once()
		repo.On("UpsertSubscription", ctx, "u1", int64(2), date(2024, 1, 1), date(2024, 12, 31)).Return(int64(9), nil).Once()

		sub, err := New(repo, newNoopLogger()).Assign(ctx, "u1", "Basic", date(2024, 1, 1), date(2024, 12, 31))
		require.NoError(t, err)
		assert.Equal(t, int64(9), sub.ID)
		assert.Equal(t, "Basic", sub.PlanName())
		repo.AssertExpectations(t)
	})

	t.Run("single day period", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByUID", ctx, "u1").Return(user, nil).Once()
		repo.On("GetPlan", ctx, "Basic").Return(plan, nil).Once()
		repo.On("UpsertSubscription", ctx, "u1", int64(2), date(2024, 6, 1), date(2024, 6, 1)).Return(int64(1), nil).Once()

		_, err := New(repo, newNoopLogger()).Assign(ctx, "u1", "Basic", date(2024, 6, 1), date(2024, 6, 1))
		require.NoError(t, err)
	})

	t.Run("end before start", func(t *testing.T) {
		repo := new(RepoMock)
		_, err := New(repo, newNoopLogger()).Assign(ctx, "u1", "Basic", date(2024, 2, 1), date(2024, 1, 31))
		assert.ErrorIs(t, err, ErrInvalidDates)
		repo.AssertNotCalled(t, "UpsertSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown plan", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByUID", ctx, "u1").Return(user, nil).Once()
		repo.On("GetPlan", ctx, "Platinum").Return(nil, storage.ErrNotFound).Once()

		_, err := New(repo, newNoopLogger()).Assign(ctx, "u1", "Platinum", date(2024, 1, 1), date(2024, 1, 2))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByUID", ctx, "ghost").Return(nil, storage.ErrNotFound).Once()

		_, err := New(repo, newNoopLogger()).Assign(ctx, "ghost", "Basic", date(2024, 1, 1), date(2024, 1, 2))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestService_Status(t *testing.T) {
	ctx := context.Background()
	today := date(2024, 3, 15)

	t.Run("active subscription", func(t *testing.T) {
		repo := new(RepoMock)
		sub := &models.Subscription{
			UserUID:   "u1",
			Plan:      &models.Plan{ID: 2, Name: "Basic", DailyLimit: 10},
			StartDate: date(2024, 3, 1),
			EndDate:   date(2024, 3, 31),
		}
		repo.On("GetSubscription", ctx, "u1").Return(sub, nil).Once()
		repo.On("CountDownloads", ctx, "u1", today).Return(4, nil).Once()

		status, err := New(repo, newNoopLogger()).Status(ctx, "u1", today)
		require.NoError(t, err)
		assert.True(t, status.Active)
		assert.True(t, status.StartedThisMonth)
		assert.Equal(t, 4, status.DownloadsToday)
		assert.Equal(t, 10, status.DailyLimit)
	})

	t.Run("no subscription", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetSubscription", ctx, "u1").Return(nil, storage.ErrNotFound).Once()
		repo.On("CountDownloads", ctx, "u1", today).Return(0, nil).Once()

		status, err := New(repo, newNoopLogger()).Status(ctx, "u1", today)
		require.NoError(t, err)
		assert.Nil(t, status.Subscription)
		assert.False(t, status.Active)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("passes filter through", func(t *testing.T) {
		repo := new(RepoMock)
		filter := models.SubscriptionFilter{Status: "expired", Today: date(2024, 3, 15), Limit: 10}
		repo.On("ListSubscriptions", ctx, filter).Return([]models.SubscriptionStatus{{DownloadsToday: 1}}, nil).Once()

		got, err := New(repo, newNoopLogger()).List(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := New(new(RepoMock), newNoopLogger()).List(ctx, models.SubscriptionFilter{Status: "paused"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestService_Downloads(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes date", func(t *testing.T) {
		repo := new(RepoMock)
		day := date(2024, 3, 15)
		noon := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
		repo.On("ListDownloads", ctx, models.DownloadFilter{Date: &day, Search: "pro"}).
			Return([]models.DownloadLogEntry{{ID: 7, ProductName: "Pro Product 1"}}, nil).Once()

		got, err := New(repo, newNoopLogger()).Downloads(ctx, models.DownloadFilter{Date: &noon, Search: "pro"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(7), got[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListDownloads", ctx, models.DownloadFilter{}).Return(nil, errors.New("db")).Once()

		_, err := New(repo, newNoopLogger()).Downloads(ctx, models.DownloadFilter{})
		assert.Error(t, err)
	})
}

func TestService_SetBillingReference(t *testing.T) {
	ctx := context.Background()
	ref := "sub_1NQ"

	t.Run("stored as is", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("SetSubscriptionBillingReference", ctx, "u1", &ref).Return(nil).Once()

		require.NoError(t, New(repo, newNoopLogger()).SetBillingReference(ctx, "u1", &ref))
		repo.AssertExpectations(t)
	})

	t.Run("no subscription", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("SetSubscriptionBillingReference", ctx, "u1", (*string)(nil)).Return(storage.ErrNotFound).Once()

		err := New(repo, newNoopLogger()).SetBillingReference(ctx, "u1", nil)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
