package templates

import (
	"time"

	"github.com/google/uuid"
)

// Template is one biodata design in the gallery.
type Template struct {
	ID            uuid.UUID `json:"id"            gorm:"column:id;primaryKey"`
	Name          string    `json:"name"          gorm:"column:name;not null"`
	Slug          string    `json:"slug"          gorm:"column:slug;uniqueIndex;not null"`
	Description   string    `json:"description"   gorm:"column:description"`
	PreviewImage  string    `json:"preview_image" gorm:"column:preview_image"`
	Price         float64   `json:"price"         gorm:"column:price;not null;default:0"`
	IsPremium     bool      `json:"is_premium"    gorm:"column:is_premium;not null;default:false"`
	IsActive      bool      `json:"is_active"     gorm:"column:is_active;not null;default:true"`
	SortOrder     int       `json:"sort_order"    gorm:"column:sort_order;not null;default:0"`
	DownloadCount int64     `json:"download_count" gorm:"column:download_count;not null;default:0"`
	FieldSchema   string    `json:"-"             gorm:"column:field_schema;type:text"`
	TemplateFile  string    `json:"-"             gorm:"column:template_file"`
	CreatedAt     time.Time `json:"created_at"    gorm:"column:created_at;not null"`
	UpdatedAt     time.Time `json:"updated_at"    gorm:"column:updated_at"`
}

func (Template) TableName() string {
	return "templates"
}

func (t *Template) IsFree() bool {
	return t.Price == 0
}
