package cms

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

var ErrContentNotFound = errors.New("content entry not found")

type CmsService struct {
	repository *CmsRepository
	logger     *slog.Logger
}

func NewCmsService(repository *CmsRepository, logger *slog.Logger) *CmsService {
	return &CmsService{
		repository: repository,
		logger:     logger,
	}
}

// Content assembles the full public payload in one call so the frontend
// needs a single request on page load.
func (s *CmsService) Content() (*SiteContent, error) {
	settings, err := s.repository.ListSettings()
	if err != nil {
		return nil, err
	}

	decoded := make(map[string]any, len(settings))
	for i := range settings {
		decoded[settings[i].Key] = decodeSetting(&settings[i])
	}

	usps, err := s.repository.ListActiveUsps()
	if err != nil {
		return nil, err
	}

	faqs, err := s.repository.ListActiveFaqs()
	if err != nil {
		return nil, err
	}

	return &SiteContent{
		Settings: decoded,
		Usps:     usps,
		Faqs:     faqs,
	}, nil
}

// SaveSettings writes each known key; unknown keys are skipped and
// reported so a stale admin panel cannot grow the catalogue.
func (s *CmsService) SaveSettings(request *SaveSettingsRequest) ([]string, error) {
	skipped := make([]string, 0)

	for key, value := range request.Settings {
		encoded, err := encodeSettingValue(value)
		if err != nil {
			return nil, err
		}

		updated, err := s.repository.UpdateSetting(key, encoded)
		if err != nil {
			return nil, err
		}
		if !updated {
			skipped = append(skipped, key)
		}
	}

	if len(skipped) > 0 {
		s.logger.Warn("ignored unknown CMS settings", "keys", skipped)
	}
	return skipped, nil
}

func (s *CmsService) SaveUsp(request *SaveUspRequest) error {
	isActive := true
	if request.IsActive != nil {
		isActive = *request.IsActive
	}

	usp := &Usp{
		Icon:        request.Icon,
		Title:       request.Title,
		Description: request.Description,
		IsActive:    isActive,
	}

	if request.ID == nil {
		return s.repository.CreateUsp(usp)
	}

	usp.ID = *request.ID
	updated, err := s.repository.UpdateUsp(usp)
	if err != nil {
		return err
	}
	if !updated {
		return ErrContentNotFound
	}
	return nil
}

func (s *CmsService) SaveFaq(request *SaveFaqRequest) error {
	isActive := true
	if request.IsActive != nil {
		isActive = *request.IsActive
	}

	faq := &Faq{
		Question: request.Question,
		Answer:   request.Answer,
		IsActive: isActive,
	}

	if request.ID == nil {
		return s.repository.CreateFaq(faq)
	}

	faq.ID = *request.ID
	updated, err := s.repository.UpdateFaq(faq)
	if err != nil {
		return err
	}
	if !updated {
		return ErrContentNotFound
	}
	return nil
}

func (s *CmsService) DeleteFaq(id uuid.UUID) error {
	deleted, err := s.repository.DeleteFaq(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrContentNotFound
	}
	return nil
}

func decodeSetting(setting *Setting) any {
	switch setting.Type {
	case "json":
		var value any
		if err := json.Unmarshal([]byte(setting.Value), &value); err == nil {
			return value
		}
		return setting.Value
	case "boolean":
		return setting.Value == "1" || setting.Value == "true"
	default:
		return setting.Value
	}
}

func encodeSettingValue(value any) (string, error) {
	if text, ok := value.(string); ok {
		return text, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
