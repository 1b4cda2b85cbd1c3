package biodatas

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BiodataRepository struct {
	db *gorm.DB
}

func NewBiodataRepository(db *gorm.DB) *BiodataRepository {
	return &BiodataRepository{db: db}
}

func (r *BiodataRepository) Create(biodata *GeneratedBiodata) error {
	if biodata.ID == uuid.Nil {
		biodata.ID = uuid.New()
	}
	if biodata.CreatedAt.IsZero() {
		biodata.CreatedAt = time.Now().UTC()
	}
	return r.db.Create(biodata).Error
}

func (r *BiodataRepository) FindByIDAndUser(id, userID uuid.UUID) (*GeneratedBiodata, error) {
	var biodata GeneratedBiodata

	err := r.db.
		Where("id = ? AND user_id = ?", id, userID).
		First(&biodata).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &biodata, nil
}

func (r *BiodataRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]BiodataWithTemplate, error) {
	var biodatas []BiodataWithTemplate

	err := r.db.
		Table("generated_biodatas").
		Select("generated_biodatas.*, templates.name AS template_name, templates.slug AS template_slug").
		Joins("LEFT JOIN templates ON templates.id = generated_biodatas.template_id").
		Where("generated_biodatas.user_id = ?", userID).
		Order("generated_biodatas.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&biodatas).Error

	return biodatas, err
}

func (r *BiodataRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64

	err := r.db.Model(&GeneratedBiodata{}).
		Where("user_id = ?", userID).
		Count(&count).Error

	return count, err
}

func (r *BiodataRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&GeneratedBiodata{}).Count(&count).Error
	return count, err
}

func (r *BiodataRepository) ListRecent(limit int) ([]BiodataWithTemplate, error) {
	var biodatas []BiodataWithTemplate

	err := r.db.
		Table("generated_biodatas").
		Select("generated_biodatas.*, templates.name AS template_name, templates.slug AS template_slug").
		Joins("LEFT JOIN templates ON templates.id = generated_biodatas.template_id").
		Order("generated_biodatas.created_at DESC").
		Limit(limit).
		Find(&biodatas).Error

	return biodatas, err
}
