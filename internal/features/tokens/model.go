package tokens

import (
	"time"

	"github.com/google/uuid"
)

// DownloadToken is the DB-backed record of an issued download token.
// Rows are created at generation time and mutated only by the serve path;
// this subsystem never deletes them, retention is an external concern.
type DownloadToken struct {
	ID             uuid.UUID  `json:"id"             gorm:"column:id;primaryKey"`
	BiodataID      uuid.UUID  `json:"biodataId"      gorm:"column:biodata_id;not null;index"`
	Token          string     `json:"token"          gorm:"column:token;uniqueIndex;not null"`
	ExpiresAt      time.Time  `json:"expiresAt"      gorm:"column:expires_at;not null"`
	MaxDownloads   int        `json:"maxDownloads"   gorm:"column:max_downloads;not null"`
	DownloadCount  int        `json:"downloadCount"  gorm:"column:download_count;not null;default:0"`
	LastDownloadAt *time.Time `json:"lastDownloadAt" gorm:"column:last_download_at"`
	IPAddress      string     `json:"ipAddress"      gorm:"column:ip_address"`
	CreatedAt      time.Time  `json:"createdAt"      gorm:"column:created_at;not null"`
}

func (DownloadToken) TableName() string {
	return "download_tokens"
}

func (t *DownloadToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

func (t *DownloadToken) IsExhausted() bool {
	return t.DownloadCount >= t.MaxDownloads
}

func (t *DownloadToken) DownloadsRemaining() int {
	remaining := t.MaxDownloads - t.DownloadCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TokenWithBiodata is the lookup projection: the token row together with
// the owning artifact's filename, owner and template name, fetched in a
// single query so the serve path needs no second round trip.
type TokenWithBiodata struct {
	DownloadToken
	PdfFilename  string    `gorm:"column:pdf_filename"`
	OwnerID      uuid.UUID `gorm:"column:owner_id"`
	TemplateName string    `gorm:"column:template_name"`
}
