package biodatas

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"biodaat-backend/internal/features/downloads"
	"biodaat-backend/internal/features/templates"
	"biodaat-backend/internal/features/tokens"

	"github.com/google/uuid"
)

var (
	ErrPaymentRequired = errors.New("template requires purchase")
	ErrRenderFailed    = errors.New("failed to render biodata")
	ErrBiodataNotFound = errors.New("biodata not found")
)

// GeneratorService orchestrates one generation request: render the
// artifact, persist metadata best-effort, and issue a download token on
// whichever path the database's availability allows. The user always gets
// a usable download reference if rendering succeeded.
type GeneratorService struct {
	repository      *BiodataRepository
	tokenService    *tokens.TokenService
	templateService *templates.TemplateService
	vault           *downloads.FileVault
	renderer        Renderer
	logger          *slog.Logger
}

func NewGeneratorService(
	repository *BiodataRepository,
	tokenService *tokens.TokenService,
	templateService *templates.TemplateService,
	vault *downloads.FileVault,
	renderer Renderer,
	logger *slog.Logger,
) *GeneratorService {
	return &GeneratorService{
		repository:      repository,
		tokenService:    tokenService,
		templateService: templateService,
		vault:           vault,
		renderer:        renderer,
		logger:          logger,
	}
}

func (s *GeneratorService) Generate(
	userID uuid.UUID,
	templateID uuid.UUID,
	formData map[string]string,
) (*GenerateResult, error) {
	tmpl := s.lookupTemplate(templateID)

	if tmpl.Price > 0 {
		return nil, ErrPaymentRequired
	}

	// Step 1: render. A rendering failure is the only fatal outcome.
	artifact, format, err := s.renderer.Render(tmpl, formData)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	filename := GenerateFilename(tmpl.Slug, userID)
	if format == FormatHTML {
		filename = strings.TrimSuffix(filename, ".pdf") + ".html"
	}

	size, err := s.vault.WriteArtifact(filename, artifact)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	// Step 2: persist metadata, best effort. Failure downgrades the
	// delivery mode instead of failing the request.
	biodata := &GeneratedBiodata{
		UserID:      userID,
		TemplateID:  tmpl.ID,
		FormData:    marshalFormData(formData),
		PdfFilename: filename,
		PdfSize:     size,
		GeneratedAt: time.Now().UTC(),
	}

	metadataPersisted := true
	if err := s.repository.Create(biodata); err != nil {
		metadataPersisted = false
		s.logger.Error("failed to persist biodata metadata, degrading delivery mode",
			"filename", filename, "error", err)
	}

	s.templateService.RecordGeneration(tmpl.ID)

	result := &GenerateResult{
		Filename: filename,
		Size:     size,
	}
	if metadataPersisted {
		result.BiodataID = &biodata.ID
	}

	// Step 3: mint the token on the strongest path still standing.
	s.attachDownloadReference(result, metadataPersisted, biodata.ID, filename)

	return result, nil
}

// attachDownloadReference fills in token, URL and expiry. DB-backed opaque
// token when both DB writes succeed; stateless signed token when the token
// row cannot be written; raw ?file= URL when no row exists at all, so the
// artifact stays reachable even if verification has nothing to go on.
func (s *GeneratorService) attachDownloadReference(
	result *GenerateResult,
	metadataPersisted bool,
	biodataID uuid.UUID,
	filename string,
) {
	if metadataPersisted {
		record, err := s.tokenService.Issue(biodataID)
		if err == nil {
			result.DownloadToken = record.Token
			result.DownloadURL = downloadURLForToken(record.Token)
			result.ExpiresAt = record.ExpiresAt
			return
		}

		s.logger.Error("failed to issue download token, falling back to stateless",
			"biodataId", biodataID, "error", err)

		token, expiresAt := s.tokenService.MintStateless(filename)
		result.DownloadToken = token
		result.DownloadURL = downloadURLForToken(token)
		result.ExpiresAt = expiresAt
		return
	}

	// Fully degraded: no metadata row, no token row. The stateless token
	// still carries expiry enforcement; the ?file= URL is the last-resort
	// reference that works even without the signing secret on the client
	// side of a redeploy.
	token, expiresAt := s.tokenService.MintStateless(filename)
	result.DownloadToken = token
	result.DownloadURL = downloadURLForFile(filename)
	result.ExpiresAt = expiresAt
}

// lookupTemplate resolves the requested template, falling back to the
// built-in classic template when the row is missing or the store is
// unreachable; generation must not depend on the database being up.
func (s *GeneratorService) lookupTemplate(templateID uuid.UUID) *templates.Template {
	tmpl, err := s.templateService.GetByID(templateID)
	if err != nil {
		s.logger.Warn("template lookup failed, using default template", "error", err)
	}
	if tmpl == nil {
		return &templates.Template{
			ID:   templateID,
			Name: "Classic Template",
			Slug: "classic",
		}
	}
	return tmpl
}

func (s *GeneratorService) RegenerateToken(
	userID uuid.UUID,
	biodataID uuid.UUID,
) (*RegenerateTokenResult, error) {
	biodata, err := s.repository.FindByIDAndUser(biodataID, userID)
	if err != nil {
		return nil, err
	}
	if biodata == nil {
		return nil, ErrBiodataNotFound
	}

	// Regeneration inserts a fresh row; earlier tokens stay live until
	// their own expiry.
	record, err := s.tokenService.Issue(biodata.ID)
	if err != nil {
		s.logger.Error("failed to issue regenerated token, falling back to stateless",
			"biodataId", biodataID, "error", err)

		token, expiresAt := s.tokenService.MintStateless(biodata.PdfFilename)
		return &RegenerateTokenResult{
			DownloadToken: token,
			DownloadURL:   downloadURLForToken(token),
			ExpiresAt:     expiresAt,
		}, nil
	}

	return &RegenerateTokenResult{
		DownloadToken: record.Token,
		DownloadURL:   downloadURLForToken(record.Token),
		ExpiresAt:     record.ExpiresAt,
	}, nil
}

func (s *GeneratorService) ListByUser(
	userID uuid.UUID,
	page, perPage int,
) ([]BiodataListItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 50 {
		perPage = 10
	}

	total, err := s.repository.CountByUser(userID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.repository.ListByUser(userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}

	items := make([]BiodataListItem, 0, len(rows))
	for i := range rows {
		items = append(items, BiodataListItem{
			ID:           rows[i].ID,
			TemplateName: rows[i].TemplateName,
			TemplateSlug: rows[i].TemplateSlug,
			Filename:     rows[i].PdfFilename,
			Size:         rows[i].PdfSize,
			GeneratedAt:  rows[i].GeneratedAt,
			CreatedAt:    rows[i].CreatedAt,
		})
	}

	return items, total, nil
}

func downloadURLForToken(token string) string {
	return fmt.Sprintf("/api/v1/download?token=%s", token)
}

func downloadURLForFile(filename string) string {
	return fmt.Sprintf("/api/v1/download?file=%s", filename)
}

func marshalFormData(formData map[string]string) string {
	raw, err := json.Marshal(formData)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
