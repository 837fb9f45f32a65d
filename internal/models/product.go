package models

// DefaultImage изображение товара по умолчанию.
const DefaultImage = "default.jpg"

// Product скачиваемый товар, доступный подписчикам ровно одного плана.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Plan  Plan    `json:"plan"`
	Image *string `json:"image,omitempty"` // ключ объекта в хранилище
	File  *string `json:"file,omitempty"`  // ключ объекта в хранилище
}

// HasFile сообщает, загружен ли файл товара.
func (p Product) HasFile() bool {
	return p.File != nil && *p.File != ""
}

// ProductRequest данные для создания товара.
type ProductRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Plan string `json:"plan" validate:"required,max=50"`
}

// FileKind тип прикрепляемого к товару файла.
type FileKind string

const (
	FileKindImage FileKind = "image"
	FileKindFile  FileKind = "file"
)
