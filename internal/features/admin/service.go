package admin

import (
	"log/slog"
	"time"

	"biodaat-backend/internal/features/biodatas"
	"biodaat-backend/internal/features/templates"
	"biodaat-backend/internal/features/tokens"
	"biodaat-backend/internal/features/users"

	"github.com/google/uuid"
)

const recentGenerationsLimit = 10

type DashboardStats struct {
	TotalUsers        int64              `json:"total_users"`
	TotalBiodatas     int64              `json:"total_biodatas"`
	ActiveTemplates   int64              `json:"active_templates"`
	TokensIssued24h   int64              `json:"tokens_issued_24h"`
	RecentGenerations []RecentGeneration `json:"recent_generations"`
}

type RecentGeneration struct {
	ID           uuid.UUID `json:"id"`
	TemplateName string    `json:"template_name"`
	Filename     string    `json:"filename"`
	IsGuest      bool      `json:"is_guest"`
	GeneratedAt  time.Time `json:"generated_at"`
}

type DashboardService struct {
	userRepository     *users.UserRepository
	biodataRepository  *biodatas.BiodataRepository
	templateRepository *templates.TemplateRepository
	tokenService       *tokens.TokenService
	logger             *slog.Logger
}

func NewDashboardService(
	userRepository *users.UserRepository,
	biodataRepository *biodatas.BiodataRepository,
	templateRepository *templates.TemplateRepository,
	tokenService *tokens.TokenService,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		userRepository:     userRepository,
		biodataRepository:  biodataRepository,
		templateRepository: templateRepository,
		tokenService:       tokenService,
		logger:             logger,
	}
}

// Stats aggregates the dashboard counters. Individual failures degrade
// to zero counts rather than failing the whole dashboard.
func (s *DashboardService) Stats() *DashboardStats {
	stats := &DashboardStats{
		RecentGenerations: []RecentGeneration{},
	}

	var err error
	if stats.TotalUsers, err = s.userRepository.CountAll(); err != nil {
		s.logger.Warn("failed to count users", "error", err)
	}
	if stats.TotalBiodatas, err = s.biodataRepository.CountAll(); err != nil {
		s.logger.Warn("failed to count biodatas", "error", err)
	}
	if stats.ActiveTemplates, err = s.templateRepository.CountActive(); err != nil {
		s.logger.Warn("failed to count templates", "error", err)
	}
	if stats.TokensIssued24h, err = s.tokenService.CountIssuedSince(time.Now().UTC().Add(-24 * time.Hour)); err != nil {
		s.logger.Warn("failed to count issued tokens", "error", err)
	}

	recent, err := s.biodataRepository.ListRecent(recentGenerationsLimit)
	if err != nil {
		s.logger.Warn("failed to list recent generations", "error", err)
		return stats
	}

	for _, biodata := range recent {
		stats.RecentGenerations = append(stats.RecentGenerations, RecentGeneration{
			ID:           biodata.ID,
			TemplateName: biodata.TemplateName,
			Filename:     biodata.PdfFilename,
			IsGuest:      biodata.UserID == uuid.Nil,
			GeneratedAt:  biodata.GeneratedAt,
		})
	}

	return stats
}
