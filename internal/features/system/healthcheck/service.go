package system_healthcheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

const dbPingTimeout = 3 * time.Second

type HealthcheckService struct {
	db           *gorm.DB
	rawDB        *sqlx.DB
	artifactRoot string
}

func NewHealthcheckService(db *gorm.DB, rawDB *sqlx.DB, artifactRoot string) *HealthcheckService {
	return &HealthcheckService{
		db:           db,
		rawDB:        rawDB,
		artifactRoot: artifactRoot,
	}
}

// IsHealthy verifies the database answers queries and the artifact
// directory accepts writes.
func (s *HealthcheckService) IsHealthy() error {
	if err := s.db.Raw("SELECT 1").Error; err != nil {
		return errors.New("cannot connect to the database")
	}

	if err := s.checkArtifactRoot(); err != nil {
		return errors.New("artifact storage is not writable")
	}

	return nil
}

// CheckDatabase pings MySQL over the raw connection with a bounded
// timeout, for probes that want the driver-level answer.
func (s *HealthcheckService) CheckDatabase() error {
	if s.rawDB == nil {
		return errors.New("raw database connection is not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	return s.rawDB.PingContext(ctx)
}

func (s *HealthcheckService) checkArtifactRoot() error {
	if err := os.MkdirAll(s.artifactRoot, 0o755); err != nil {
		return err
	}

	probe := filepath.Join(s.artifactRoot, ".healthcheck-"+uuid.New().String())
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}

	return os.Remove(probe)
}
