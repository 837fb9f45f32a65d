package upsert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/services/catalog"
)

type MockService struct{ mock.Mock }

func (m *MockService) UpsertPlan(ctx context.Context, name string, dailyLimit int, price decimal.Decimal) (*models.Plan, error) {
	args := m.Called(ctx, name, dailyLimit, price.String())
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func (m *MockService) SetPlanBillingReference(ctx context.Context, name string, ref *string) error {
	return m.Called(ctx, name, ref).Error(0)
}

func strPtr(s string) *string { return &s }

func TestUpsertHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		plan           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
		absentBody     string
	}{
		{
			name: "success",
			plan: "Pro",
			body: `{"daily_limit":100,"price":"50.00"}`,
			setupMock: func(m *MockService) {
				m.On("UpsertPlan", mock.Anything, "Pro", 100, "50").
					Return(&models.Plan{ID: 3, Name: "Pro", DailyLimit: 100, Price: decimal.NewFromInt(50)}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"daily_limit":100`,
		},
		{
			name: "with billing reference",
			plan: "Gold",
			body: `{"daily_limit":500,"price":"100","billing_reference":"price_gold"}`,
			setupMock: func(m *MockService) {
				m.On("UpsertPlan", mock.Anything, "Gold", 500, "100").
					Return(&models.Plan{ID: 4, Name: "Gold", DailyLimit: 500, Price: decimal.NewFromInt(100)}, nil).Once()
				m.On("SetPlanBillingReference", mock.Anything, "Gold", strPtr("price_gold")).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"billing_reference":"price_gold"`,
		},
		{
			name: "empty billing reference clears it",
			plan: "Gold",
			body: `{"daily_limit":500,"price":"100","billing_reference":""}`,
			setupMock: func(m *MockService) {
				ref := "price_old"
				m.On("UpsertPlan", mock.Anything, "Gold", 500, "100").
					Return(&models.Plan{ID: 4, Name: "Gold", DailyLimit: 500, BillingReference: &ref}, nil).Once()
				m.On("SetPlanBillingReference", mock.Anything, "Gold", (*string)(nil)).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Gold"`,
			absentBody:     `price_old`,
		},
		{
			name: "billing reference storage error",
			plan: "Gold",
			body: `{"daily_limit":500,"price":"100","billing_reference":"price_gold"}`,
			setupMock: func(m *MockService) {
				m.On("UpsertPlan", mock.Anything, "Gold", 500, "100").
					Return(&models.Plan{ID: 4, Name: "Gold", DailyLimit: 500}, nil).Once()
				m.On("SetPlanBillingReference", mock.Anything, "Gold", strPtr("price_gold")).Return(errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `failed to save plan`,
		},
		{
			name:           "negative limit",
			plan:           "Pro",
			body:           `{"daily_limit":-1,"price":"50"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field DailyLimit must be at least 0`,
		},
		{
			name:           "price is not a number",
			plan:           "Pro",
			body:           `{"daily_limit":1,"price":"free"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Price can contain only numbers`,
		},
		{
			name: "rejected by catalog",
			plan: "Pro",
			body: `{"daily_limit":1,"price":"-5"}`,
			setupMock: func(m *MockService) {
				m.On("UpsertPlan", mock.Anything, "Pro", 1, "-5").
					Return(nil, fmt.Errorf("catalog.UpsertPlan: %w: negative price", catalog.ErrInvalidPlan)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `negative price`,
		},
		{
			name: "storage error",
			plan: "Pro",
			body: `{"daily_limit":1,"price":"5"}`,
			setupMock: func(m *MockService) {
				m.On("UpsertPlan", mock.Anything, "Pro", 1, "5").Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `failed to save plan`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/plans/"+tt.plan, bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("name", tt.plan)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			if tt.absentBody != "" {
				assert.NotContains(t, w.Body.String(), tt.absentBody)
			}
			svc.AssertExpectations(t)
		})
	}
}
