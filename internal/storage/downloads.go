package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/gifshop/internal/models"
)

// likeEscaper экранирует спецсимволы шаблона LIKE в пользовательском вводе.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CountDownloads возвращает число скачиваний пользователя за день.
func (s *Storage) CountDownloads(ctx context.Context, userUID string, day time.Time) (int, error) {
	const op = "storage.CountDownloads"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM download_logs WHERE user_uid = $1 AND download_date = $2`,
		userUID, day).Scan(&count)
	if err != nil {
		return 0, wrap(op, err)
	}
	return count, nil
}

// RecordDownload добавляет запись в журнал скачиваний и возвращает её ID.
func (s *Storage) RecordDownload(ctx context.Context, userUID string, productID int64, day time.Time) (int64, error) {
	const op = "storage.RecordDownload"

	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO download_logs (user_uid, product_id, download_date) VALUES ($1, $2, $3) RETURNING id`,
		userUID, productID, day).Scan(&id)
	if err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// ListDownloads возвращает журнал скачиваний, новые записи первыми.
func (s *Storage) ListDownloads(ctx context.Context, filter models.DownloadFilter) ([]models.DownloadLogEntry, error) {
	const op = "storage.ListDownloads"

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Date != nil {
		conds = append(conds, "d.download_date = "+arg(*filter.Date))
	}
	if filter.UserUID != "" {
		conds = append(conds, "d.user_uid = "+arg(filter.UserUID))
	}
	if filter.Search != "" {
		p := arg("%" + likeEscaper.Replace(filter.Search) + "%")
		conds = append(conds, "(u.username ILIKE "+p+` ESCAPE '\' OR pr.name ILIKE `+p+` ESCAPE '\')`)
	}

	query := `SELECT d.id, d.user_uid, u.username, d.product_id, pr.name, d.download_date
			  FROM download_logs d
			  JOIN products pr ON pr.id = d.product_id
			  LEFT JOIN users u ON u.uid = d.user_uid`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY d.download_date DESC, d.id DESC LIMIT " + arg(pageLimit(filter.Limit)) +
		" OFFSET " + arg(filter.Offset)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var result []models.DownloadLogEntry
	for rows.Next() {
		var (
			e             models.DownloadLogEntry
			uid, username sql.NullString
		)
		if err := rows.Scan(&e.ID, &uid, &username, &e.ProductID, &e.ProductName, &e.Date); err != nil {
			return nil, wrap(op, err)
		}
		e.UserUID = stringPtr(uid)
		e.Username = stringPtr(username)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}
