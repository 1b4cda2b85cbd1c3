package cms

import (
	"time"

	"github.com/google/uuid"
)

// Setting is one keyed piece of site copy. Type tells the content
// endpoint how to decode Value: "text" passes through, "json" is
// unmarshalled, "boolean" becomes a bool.
type Setting struct {
	Key   string `json:"setting_key"   gorm:"column:setting_key;primaryKey"`
	Value string `json:"setting_value" gorm:"column:setting_value;type:text"`
	Type  string `json:"setting_type"  gorm:"column:setting_type;not null;default:text"`
	Group string `json:"setting_group" gorm:"column:setting_group"`
}

func (Setting) TableName() string {
	return "cms_settings"
}

// Usp is one selling-point card on the landing page.
type Usp struct {
	ID          uuid.UUID `json:"id"          gorm:"column:id;primaryKey"`
	Icon        string    `json:"icon"        gorm:"column:icon"`
	Title       string    `json:"title"       gorm:"column:title;not null"`
	Description string    `json:"description" gorm:"column:description"`
	SortOrder   int       `json:"-"           gorm:"column:sort_order;not null;default:0"`
	IsActive    bool      `json:"-"           gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `json:"-"           gorm:"column:created_at;not null"`
}

func (Usp) TableName() string {
	return "cms_usps"
}

type Faq struct {
	ID        uuid.UUID `json:"id"       gorm:"column:id;primaryKey"`
	Question  string    `json:"question" gorm:"column:question;not null"`
	Answer    string    `json:"answer"   gorm:"column:answer;type:text"`
	SortOrder int       `json:"-"        gorm:"column:sort_order;not null;default:0"`
	IsActive  bool      `json:"-"        gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `json:"-"        gorm:"column:created_at;not null"`
}

func (Faq) TableName() string {
	return "cms_faqs"
}
