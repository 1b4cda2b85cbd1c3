package cms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CmsRepository struct {
	db *gorm.DB
}

func NewCmsRepository(db *gorm.DB) *CmsRepository {
	return &CmsRepository{db: db}
}

func (r *CmsRepository) ListSettings() ([]Setting, error) {
	var settings []Setting
	err := r.db.Find(&settings).Error
	return settings, err
}

// UpdateSetting touches existing keys only; the setting catalogue is
// seeded with the schema, admins edit values.
func (r *CmsRepository) UpdateSetting(key, value string) (bool, error) {
	result := r.db.Model(&Setting{}).
		Where("setting_key = ?", key).
		Update("setting_value", value)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *CmsRepository) ListActiveUsps() ([]Usp, error) {
	var usps []Usp
	err := r.db.Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&usps).Error
	return usps, err
}

func (r *CmsRepository) ListActiveFaqs() ([]Faq, error) {
	var faqs []Faq
	err := r.db.Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&faqs).Error
	return faqs, err
}

func (r *CmsRepository) CreateUsp(usp *Usp) error {
	if usp.ID == uuid.Nil {
		usp.ID = uuid.New()
	}
	if usp.CreatedAt.IsZero() {
		usp.CreatedAt = time.Now().UTC()
	}

	next, err := r.nextSortOrder(&Usp{})
	if err != nil {
		return err
	}
	usp.SortOrder = next

	return r.db.Create(usp).Error
}

func (r *CmsRepository) UpdateUsp(usp *Usp) (bool, error) {
	result := r.db.Model(&Usp{}).
		Where("id = ?", usp.ID).
		Updates(map[string]any{
			"icon":        usp.Icon,
			"title":       usp.Title,
			"description": usp.Description,
			"is_active":   usp.IsActive,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *CmsRepository) CreateFaq(faq *Faq) error {
	if faq.ID == uuid.Nil {
		faq.ID = uuid.New()
	}
	if faq.CreatedAt.IsZero() {
		faq.CreatedAt = time.Now().UTC()
	}

	next, err := r.nextSortOrder(&Faq{})
	if err != nil {
		return err
	}
	faq.SortOrder = next

	return r.db.Create(faq).Error
}

func (r *CmsRepository) UpdateFaq(faq *Faq) (bool, error) {
	result := r.db.Model(&Faq{}).
		Where("id = ?", faq.ID).
		Updates(map[string]any{
			"question":  faq.Question,
			"answer":    faq.Answer,
			"is_active": faq.IsActive,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *CmsRepository) DeleteFaq(id uuid.UUID) (bool, error) {
	result := r.db.Delete(&Faq{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *CmsRepository) nextSortOrder(model any) (int, error) {
	var max int
	err := r.db.Model(model).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max + 1, err
}
