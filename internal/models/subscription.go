package models

import (
	"time"

	"github.com/magabrotheeeer/gifshop/internal/lib/calendar"
)

// Subscription назначение плана пользователю на период [StartDate, EndDate].
// У пользователя не больше одной подписки. Plan равен nil, если план удалён.
type Subscription struct {
	ID               int64     `json:"id"`
	UserUID          string    `json:"user_uid"`
	Username         string    `json:"username,omitempty"`
	Plan             *Plan     `json:"plan"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	BillingReference *string   `json:"billing_reference,omitempty"`
}

// IsActive сообщает, что today попадает в период подписки включительно.
func (s Subscription) IsActive(today time.Time) bool {
	return calendar.Within(today, s.StartDate, s.EndDate)
}

// StartedThisMonth сообщает, что подписка началась в том же месяце, что и today.
// Проверяется дата начала, а не продления: через месяц после старта всегда false.
func (s Subscription) StartedThisMonth(today time.Time) bool {
	return calendar.SameMonth(s.StartDate, today)
}

// PlanName возвращает имя плана или "No Plan".
func (s Subscription) PlanName() string {
	if s.Plan == nil {
		return "No Plan"
	}
	return s.Plan.Name
}

// SubscriptionStatus подписка вместе с использованием квоты на дату.
type SubscriptionStatus struct {
	Subscription     *Subscription `json:"subscription"`
	Active           bool          `json:"active"`
	StartedThisMonth bool          `json:"started_this_month"`
	DownloadsToday   int           `json:"downloads_today"`
	DailyLimit       int           `json:"daily_limit"`
}

// SubscriptionFilter параметры выборки подписок для администратора.
type SubscriptionFilter struct {
	Status string    // "active", "expired" или пусто
	Today  time.Time // дата, относительно которой считается активность
	Limit  int
	Offset int
}

// AssignRequest данные для назначения подписки.
type AssignRequest struct {
	Plan      string `json:"plan" validate:"required"`
	StartDate string `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate   string `json:"end_date" validate:"required"`   // YYYY-MM-DD
	// BillingReference идентификатор подписки у платёжного провайдера, см. PlanRequest.
	BillingReference *string `json:"billing_reference,omitempty" validate:"omitempty,max=100"`
}
