// Package models содержит доменные структуры магазина: тарифные планы,
// товары, подписки пользователей и журнал скачиваний.
//
// Даты в моделях календарные (полночь UTC), см. пакет calendar.
package models

import "github.com/shopspring/decimal"

// Plan тарифный план с ценой и дневным лимитом скачиваний.
type Plan struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	DailyLimit       int             `json:"daily_limit"`
	BillingReference *string         `json:"billing_reference,omitempty"` // идентификатор цены у платёжного провайдера
}

// SamePlan сообщает, что a и b обозначают один и тот же план.
// Планы сравниваются по ID, а если ID ещё не присвоен, по имени.
func SamePlan(a, b *Plan) bool {
	if a == nil || b == nil {
		return false
	}
	if a.ID != 0 && b.ID != 0 {
		return a.ID == b.ID
	}
	return a.Name == b.Name
}

// BillingRef приводит ссылку из запроса к значению для хранения:
// пустая строка означает очистку.
func BillingRef(ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	return ref
}

// PlanRequest данные для создания или обновления плана.
type PlanRequest struct {
	DailyLimit int    `json:"daily_limit" validate:"gte=0"`
	Price      string `json:"price" validate:"required,numeric"`
	// BillingReference задаёт идентификатор цены у платёжного провайдера.
	// Пустая строка очищает его, отсутствие поля оставляет без изменений.
	BillingReference *string `json:"billing_reference,omitempty" validate:"omitempty,max=100"`
}
