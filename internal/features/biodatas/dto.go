package biodatas

import (
	"time"

	"github.com/google/uuid"
)

type GenerateRequest struct {
	TemplateID string            `json:"template_id" binding:"required"`
	FormData   map[string]string `json:"form_data" binding:"required"`
}

type GenerateResult struct {
	BiodataID     *uuid.UUID `json:"biodata_id"`
	Filename      string     `json:"filename"`
	Size          int64      `json:"size"`
	DownloadToken string     `json:"download_token"`
	DownloadURL   string     `json:"download_url"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

type RegenerateTokenRequest struct {
	BiodataID string `json:"biodata_id" binding:"required"`
}

type RegenerateTokenResult struct {
	DownloadToken string    `json:"download_token"`
	DownloadURL   string    `json:"download_url"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type MyBiodatasRequest struct {
	Page    int `form:"page,default=1"`
	PerPage int `form:"per_page,default=10"`
}

// Normalize clamps client-supplied paging so the same effective values
// reach both the query and the response meta.
func (r *MyBiodatasRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PerPage < 1 || r.PerPage > 50 {
		r.PerPage = 10
	}
}

type BiodataListItem struct {
	ID           uuid.UUID `json:"id"`
	TemplateName string    `json:"template_name"`
	TemplateSlug string    `json:"template_slug"`
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	GeneratedAt  time.Time `json:"generated_at"`
	CreatedAt    time.Time `json:"created_at"`
}
