package templates

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// ErrInvalidFieldSchema rejects admin writes whose field_schema is not
// parseable JSON; a broken schema would otherwise vanish from the
// public detail endpoint.
var ErrInvalidFieldSchema = errors.New("field_schema must be valid JSON")

type TemplateService struct {
	repository *TemplateRepository
	logger     *slog.Logger
}

func NewTemplateService(repository *TemplateRepository, logger *slog.Logger) *TemplateService {
	return &TemplateService{
		repository: repository,
		logger:     logger,
	}
}

func (s *TemplateService) ListActive(page, perPage int) ([]TemplateListItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 50 {
		perPage = 12
	}

	total, err := s.repository.CountActive()
	if err != nil {
		return nil, 0, err
	}

	templates, err := s.repository.ListActive(perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}

	items := make([]TemplateListItem, 0, len(templates))
	for i := range templates {
		items = append(items, toListItem(&templates[i]))
	}

	return items, total, nil
}

func (s *TemplateService) GetBySlug(slug string) (*TemplateDetail, error) {
	template, err := s.repository.FindBySlug(slug)
	if err != nil || template == nil {
		return nil, err
	}

	return toDetail(template), nil
}

func (s *TemplateService) GetByID(id uuid.UUID) (*Template, error) {
	return s.repository.FindByID(id)
}

func (s *TemplateService) RecordGeneration(id uuid.UUID) {
	// Gallery popularity counter only; failures must not affect generation.
	if err := s.repository.IncrementDownloadCount(id); err != nil {
		s.logger.Error("failed to increment template download count", "templateId", id, "error", err)
	}
}

func (s *TemplateService) Create(request *UpsertTemplateRequest) (*Template, error) {
	if request.FieldSchema != "" && !json.Valid([]byte(request.FieldSchema)) {
		return nil, ErrInvalidFieldSchema
	}

	template := &Template{
		Name:         request.Name,
		Slug:         request.Slug,
		Description:  request.Description,
		PreviewImage: request.PreviewImage,
		Price:        request.Price,
		IsPremium:    request.IsPremium,
		IsActive:     true,
		FieldSchema:  request.FieldSchema,
		TemplateFile: request.TemplateFile,
	}

	if err := s.repository.Create(template); err != nil {
		return nil, err
	}

	s.logger.Info("created template", "slug", template.Slug)
	return template, nil
}

func (s *TemplateService) UpdateTemplate(id uuid.UUID, request *UpsertTemplateRequest) (*Template, error) {
	if request.FieldSchema != "" && !json.Valid([]byte(request.FieldSchema)) {
		return nil, ErrInvalidFieldSchema
	}

	template, err := s.repository.FindByID(id)
	if err != nil || template == nil {
		return nil, err
	}

	template.Name = request.Name
	template.Slug = request.Slug
	template.Description = request.Description
	template.PreviewImage = request.PreviewImage
	template.Price = request.Price
	template.IsPremium = request.IsPremium
	template.FieldSchema = request.FieldSchema
	template.TemplateFile = request.TemplateFile

	if err := s.repository.Update(template); err != nil {
		return nil, err
	}

	return template, nil
}

func (s *TemplateService) SetActive(id uuid.UUID, isActive bool) error {
	return s.repository.SetActive(id, isActive)
}

func (s *TemplateService) Reorder(request *ReorderRequest) error {
	orders := make(map[uuid.UUID]int, len(request.Orders))
	for _, entry := range request.Orders {
		orders[entry.ID] = entry.SortOrder
	}

	return s.repository.Reorder(orders)
}

func toListItem(template *Template) TemplateListItem {
	return TemplateListItem{
		ID:            template.ID,
		Name:          template.Name,
		Slug:          template.Slug,
		Description:   template.Description,
		PreviewImage:  template.PreviewImage,
		Price:         template.Price,
		IsPremium:     template.IsPremium,
		IsFree:        template.IsFree(),
		DownloadCount: template.DownloadCount,
	}
}

func toDetail(template *Template) *TemplateDetail {
	detail := &TemplateDetail{
		TemplateListItem: toListItem(template),
	}

	if template.FieldSchema != "" {
		var schema any
		if err := json.Unmarshal([]byte(template.FieldSchema), &schema); err == nil {
			detail.FieldSchema = schema
		}
	}

	return detail
}
