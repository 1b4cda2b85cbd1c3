package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(token *DownloadToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	return r.db.Create(token).Error
}

// FindByToken fetches the token row joined with its artifact metadata.
// A clean miss returns (nil, nil); a non-nil error means the store could
// not answer, which callers must treat as "no record", not "invalid".
func (r *TokenRepository) FindByToken(token string) (*TokenWithBiodata, error) {
	var result TokenWithBiodata

	err := r.db.
		Table("download_tokens").
		Select("download_tokens.*, generated_biodatas.pdf_filename AS pdf_filename, "+
			"generated_biodatas.user_id AS owner_id, templates.name AS template_name").
		Joins("JOIN generated_biodatas ON generated_biodatas.id = download_tokens.biodata_id").
		Joins("LEFT JOIN templates ON templates.id = generated_biodatas.template_id").
		Where("download_tokens.token = ?", token).
		Take(&result).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &result, nil
}

// RecordServe accounts one successful serve. The check and the increment
// are a single conditional UPDATE so two concurrent serves of the same
// token can never both pass a stale read check; the row is only touched
// while download_count < max_downloads and the token is unexpired.
func (r *TokenRepository) RecordServe(id uuid.UUID, ipAddress string) (bool, error) {
	now := time.Now().UTC()

	result := r.db.Model(&DownloadToken{}).
		Where("id = ? AND download_count < max_downloads AND expires_at > ?", id, now).
		Updates(map[string]any{
			"download_count":   gorm.Expr("download_count + 1"),
			"last_download_at": now,
			"ip_address":       ipAddress,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *TokenRepository) CountIssuedSince(since time.Time) (int64, error) {
	var count int64

	err := r.db.Model(&DownloadToken{}).
		Where("created_at > ?", since).
		Count(&count).Error

	return count, err
}

// GenerateSecureToken returns a 32-byte opaque random token, URL-safe.
// The token carries no decodable payload, it is purely a lookup key.
func GenerateSecureToken() string {
	b := make([]byte, 32)

	if _, err := rand.Read(b); err != nil {
		panic("failed to generate secure random token: " + err.Error())
	}

	return base64.URLEncoding.EncodeToString(b)
}
