// Package upload формирует имена объектов для файлов товаров в хранилище.
package upload

import (
	"crypto/md5" //nolint:gosec // используется только для имени файла
	"encoding/hex"
	"path"
	"strings"
	"time"
)

// Prefix каталог, в который складываются загруженные файлы.
const Prefix = "uploads/images/"

// ObjectName возвращает уникальное имя объекта: md5 от исходного имени
// и метки времени с сохранением расширения исходного файла.
func ObjectName(filename string, now time.Time) string {
	ext := Ext(filename)
	sum := md5.Sum([]byte(filename + now.UTC().Format("20060102150405.000000")))
	name := hex.EncodeToString(sum[:])
	if ext != "" {
		name += "." + ext
	}
	return path.Join(Prefix, name)
}

// Ext возвращает расширение файла без точки в нижнем регистре.
func Ext(filename string) string {
	ext := path.Ext(path.Base(filename))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ContentType подбирает MIME-тип по расширению.
func ContentType(filename string) string {
	switch Ext(filename) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "zip":
		return "application/zip"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
