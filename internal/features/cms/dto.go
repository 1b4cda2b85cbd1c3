package cms

import "github.com/google/uuid"

// SiteContent is everything the marketing frontend renders: decoded
// settings plus the active, ordered USP and FAQ lists.
type SiteContent struct {
	Settings map[string]any `json:"settings"`
	Usps     []Usp          `json:"usps"`
	Faqs     []Faq          `json:"faqs"`
}

type SaveSettingsRequest struct {
	Settings map[string]any `json:"settings" binding:"required"`
}

// SaveUspRequest upserts: a present ID updates, an absent one appends a
// new card at the end of the sort order.
type SaveUspRequest struct {
	ID          *uuid.UUID `json:"id"`
	Icon        string     `json:"icon"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	IsActive    *bool      `json:"is_active"`
}

type SaveFaqRequest struct {
	ID       *uuid.UUID `json:"id"`
	Question string     `json:"question" binding:"required"`
	Answer   string     `json:"answer" binding:"required"`
	IsActive *bool      `json:"is_active"`
}
