package templates

import (
	"github.com/google/uuid"
)

type ListTemplatesRequest struct {
	Page    int `form:"page,default=1"`
	PerPage int `form:"per_page,default=12"`
}

// Normalize clamps client-supplied paging so the same effective values
// reach both the query and the response meta.
func (r *ListTemplatesRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PerPage < 1 || r.PerPage > 50 {
		r.PerPage = 12
	}
}

type TemplateListItem struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	PreviewImage  string    `json:"preview_image"`
	Price         float64   `json:"price"`
	IsPremium     bool      `json:"is_premium"`
	IsFree        bool      `json:"is_free"`
	DownloadCount int64     `json:"download_count"`
}

// FieldSchema is decoded as `any`: designers store both object and
// array shapes and the API echoes whichever was saved.
type TemplateDetail struct {
	TemplateListItem
	FieldSchema any `json:"field_schema"`
}

type UpsertTemplateRequest struct {
	Name         string  `json:"name" binding:"required"`
	Slug         string  `json:"slug" binding:"required"`
	Description  string  `json:"description"`
	PreviewImage string  `json:"preview_image"`
	Price        float64 `json:"price"`
	IsPremium    bool    `json:"is_premium"`
	FieldSchema  string  `json:"field_schema"`
	TemplateFile string  `json:"template_file"`
}

type ReorderRequest struct {
	Orders []ReorderEntry `json:"orders" binding:"required,min=1"`
}

type ReorderEntry struct {
	ID        uuid.UUID `json:"id" binding:"required"`
	SortOrder int       `json:"sort_order"`
}
