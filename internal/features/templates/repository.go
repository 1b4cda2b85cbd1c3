package templates

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(template *Template) error {
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now().UTC()
	}
	return r.db.Create(template).Error
}

func (r *TemplateRepository) Update(template *Template) error {
	template.UpdatedAt = time.Now().UTC()
	return r.db.Save(template).Error
}

func (r *TemplateRepository) ListActive(limit, offset int) ([]Template, error) {
	var templates []Template

	err := r.db.
		Where("is_active = ?", true).
		Order("sort_order ASC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&templates).Error

	return templates, err
}

func (r *TemplateRepository) CountActive() (int64, error) {
	var count int64

	err := r.db.Model(&Template{}).
		Where("is_active = ?", true).
		Count(&count).Error

	return count, err
}

func (r *TemplateRepository) FindBySlug(slug string) (*Template, error) {
	var template Template

	err := r.db.
		Where("slug = ? AND is_active = ?", slug, true).
		First(&template).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &template, nil
}

func (r *TemplateRepository) FindByID(id uuid.UUID) (*Template, error) {
	var template Template

	err := r.db.
		Where("id = ?", id).
		First(&template).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &template, nil
}

func (r *TemplateRepository) IncrementDownloadCount(id uuid.UUID) error {
	return r.db.Model(&Template{}).
		Where("id = ?", id).
		Update("download_count", gorm.Expr("download_count + 1")).Error
}

func (r *TemplateRepository) SetActive(id uuid.UUID, isActive bool) error {
	return r.db.Model(&Template{}).
		Where("id = ?", id).
		Update("is_active", isActive).Error
}

// Reorder applies a batch of sort_order assignments atomically. Either
// every template in the batch moves or none do.
func (r *TemplateRepository) Reorder(orders map[uuid.UUID]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for id, sortOrder := range orders {
			result := tx.Model(&Template{}).
				Where("id = ?", id).
				Update("sort_order", sortOrder)

			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errors.New("template not found: " + id.String())
			}
		}
		return nil
	})
}
