package models

import "time"

// DownloadLogEntry запись журнала скачиваний. Записи только добавляются.
// UserUID равен nil, если пользователь удалён.
type DownloadLogEntry struct {
	ID          int64     `json:"id"`
	UserUID     *string   `json:"user_uid"`
	Username    *string   `json:"username"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Date        time.Time `json:"date"`
}

// DownloadFilter параметры выборки журнала для администратора.
type DownloadFilter struct {
	Date    *time.Time
	UserUID string
	Search  string // подстрока имени пользователя или товара
	Limit   int
	Offset  int
}

// DownloadEvent публикуется после каждой учтённой загрузки.
type DownloadEvent struct {
	EntryID   int64     `json:"entry_id"`
	UserUID   string    `json:"user_uid"`
	ProductID int64     `json:"product_id"`
	Plan      string    `json:"plan"`
	Date      time.Time `json:"date"`
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
}
