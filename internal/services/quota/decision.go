package quota

import (
	"time"

	"github.com/magabrotheeeer/gifshop/internal/models"
)

// Причины отказа. Проверки выполняются в этом порядке, возвращается первая сработавшая.
const (
	ReasonNoSubscription = "no subscription"
	ReasonInactive       = "subscription expired or not yet started"
	ReasonPlanMismatch   = "plan does not grant access to this product"
	ReasonLimitReached   = "daily limit reached"
)

// Decision описывает результат проверки права на скачивание.
// Отказ является обычным значением, а не ошибкой.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Used    int    `json:"used"`
	Limit   int    `json:"limit"`
}

// Evaluate применяет правило доступа без обращения к хранилищу.
// sub равен nil, если у пользователя нет подписки; used равен числу скачиваний за today.
//
// Планы сравниваются на точное совпадение: подписка Gold не открывает товары Basic.
// Лимит 0 запрещает скачивания полностью.
func Evaluate(sub *models.Subscription, product models.Product, used int, today time.Time) Decision {
	d := Decision{Used: used}
	if sub == nil {
		d.Reason = ReasonNoSubscription
		return d
	}
	if sub.Plan != nil {
		d.Limit = sub.Plan.DailyLimit
	}
	if !sub.IsActive(today) {
		d.Reason = ReasonInactive
		return d
	}
	if sub.Plan == nil || !models.SamePlan(sub.Plan, &product.Plan) {
		d.Reason = ReasonPlanMismatch
		return d
	}
	if used >= sub.Plan.DailyLimit {
		d.Reason = ReasonLimitReached
		return d
	}
	d.Allowed = true
	return d
}
