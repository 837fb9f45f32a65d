package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/gifshop/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var (
	planFree  = models.Plan{ID: 1, Name: "Free", DailyLimit: 3}
	planBasic = models.Plan{ID: 2, Name: "Basic", DailyLimit: 10}
	planPro   = models.Plan{ID: 3, Name: "Pro", DailyLimit: 100}
	planGold  = models.Plan{ID: 4, Name: "Gold", DailyLimit: 500}
)

func subscribed(plan models.Plan, start, end time.Time) *models.Subscription {
	return &models.Subscription{UserUID: "u1", Plan: &plan, StartDate: start, EndDate: end}
}

func TestEvaluate(t *testing.T) {
	today := date(2024, 3, 15)
	year := func(p models.Plan) *models.Subscription {
		return subscribed(p, date(2024, 1, 1), date(2024, 12, 31))
	}

	tests := []struct {
		name        string
		sub         *models.Subscription
		product     models.Product
		used        int
		today       time.Time
		wantAllowed bool
		wantReason  string
	}{
		{
			name:       "no subscription",
			product:    models.Product{Plan: planBasic},
			today:      today,
			wantReason: ReasonNoSubscription,
		},
		{
			name:       "expired the day after end date",
			sub:        subscribed(planBasic, date(2024, 1, 1), date(2024, 1, 31)),
			product:    models.Product{Plan: planBasic},
			today:      date(2024, 2, 1),
			wantReason: ReasonInactive,
		},
		{
			name:       "not yet started",
			sub:        subscribed(planBasic, date(2024, 4, 1), date(2024, 4, 30)),
			product:    models.Product{Plan: planBasic},
			today:      today,
			wantReason: ReasonInactive,
		},
		{
			name:        "end date is inclusive",
			sub:         subscribed(planBasic, date(2024, 1, 1), date(2024, 1, 31)),
			product:     models.Product{Plan: planBasic},
			today:       date(2024, 1, 31),
			wantAllowed: true,
		},
		{
			name:        "start date is inclusive",
			sub:         subscribed(planBasic, date(2024, 1, 1), date(2024, 1, 31)),
			product:     models.Product{Plan: planBasic},
			today:       date(2024, 1, 1),
			wantAllowed: true,
		},
		{
			name:       "higher tier does not grant lower tier product",
			sub:        year(planGold),
			product:    models.Product{Plan: planBasic},
			today:      today,
			wantReason: ReasonPlanMismatch,
		},
		{
			name:       "pro subscriber and gold product",
			sub:        year(planPro),
			product:    models.Product{Plan: planGold},
			today:      today,
			wantReason: ReasonPlanMismatch,
		},
		{
			name:       "deleted plan",
			sub:        &models.Subscription{StartDate: date(2024, 1, 1), EndDate: date(2024, 12, 31)},
			product:    models.Product{Plan: planBasic},
			today:      today,
			wantReason: ReasonPlanMismatch,
		},
		{
			name:        "one below the limit",
			sub:         year(planBasic),
			product:     models.Product{Plan: planBasic},
			used:        9,
			today:       today,
			wantAllowed: true,
		},
		{
			name:       "limit reached",
			sub:        year(planBasic),
			product:    models.Product{Plan: planBasic},
			used:       10,
			today:      today,
			wantReason: ReasonLimitReached,
		},
		{
			name:       "zero limit blocks",
			sub:        year(models.Plan{ID: 9, Name: "Blocked", DailyLimit: 0}),
			product:    models.Product{Plan: models.Plan{ID: 9, Name: "Blocked"}},
			today:      today,
			wantReason: ReasonLimitReached,
		},
		{
			name:       "inactive is reported before plan mismatch",
			sub:        subscribed(planFree, date(2023, 1, 1), date(2023, 12, 31)),
			product:    models.Product{Plan: planGold},
			today:      today,
			wantReason: ReasonInactive,
		},
		{
			name:       "plan mismatch is reported before limit",
			sub:        year(planFree),
			product:    models.Product{Plan: planBasic},
			used:       3,
			today:      today,
			wantReason: ReasonPlanMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.sub, tt.product, tt.used, tt.today)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, tt.used, d.Used)
		})
	}
}

func TestEvaluate_ReportsLimit(t *testing.T) {
	d := Evaluate(subscribed(planBasic, date(2024, 1, 1), date(2024, 12, 31)), models.Product{Plan: planBasic}, 4, date(2024, 3, 15))
	assert.True(t, d.Allowed)
	assert.Equal(t, 10, d.Limit)
	assert.Equal(t, 4, d.Used)
}
