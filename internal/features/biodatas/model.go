package biodatas

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedBiodata is the metadata row for one rendered artifact. The
// artifact itself lives in the file vault; the uuid.Nil user is a guest.
type GeneratedBiodata struct {
	ID          uuid.UUID `json:"id"          gorm:"column:id;primaryKey"`
	UserID      uuid.UUID `json:"userId"      gorm:"column:user_id;index"`
	TemplateID  uuid.UUID `json:"templateId"  gorm:"column:template_id;index"`
	FormData    string    `json:"-"           gorm:"column:form_data;type:text"`
	PdfFilename string    `json:"filename"    gorm:"column:pdf_filename;not null"`
	PdfSize     int64     `json:"size"        gorm:"column:pdf_size;not null"`
	GeneratedAt time.Time `json:"generatedAt" gorm:"column:generated_at;not null"`
	CreatedAt   time.Time `json:"createdAt"   gorm:"column:created_at;not null"`
}

func (GeneratedBiodata) TableName() string {
	return "generated_biodatas"
}

// BiodataWithTemplate is the listing projection for a user's dashboard.
type BiodataWithTemplate struct {
	GeneratedBiodata
	TemplateName string `gorm:"column:template_name"`
	TemplateSlug string `gorm:"column:template_slug"`
}
