package downloads

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ArtifactSweeper removes generated documents older than the retention
// window. Download tokens outlive their files only in the degraded
// stateless mode, and those expire within the hour, so sweeping by file
// age is safe at retention windows measured in days.
type ArtifactSweeper struct {
	root      string
	retention time.Duration
	logger    *slog.Logger
}

func NewArtifactSweeper(root string, retentionDays int, logger *slog.Logger) *ArtifactSweeper {
	return &ArtifactSweeper{
		root:      root,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

// Sweep deletes expired artifacts and returns how many were removed.
// Only files matching the generated-artifact naming pattern are touched.
func (s *ArtifactSweeper) Sweep() int {
	cutoff := time.Now().Add(-s.retention)

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read artifact directory", "error", err)
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !allowedFilenamePattern.MatchString(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.root, entry.Name())); err != nil {
			s.logger.Warn("failed to remove expired artifact", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("swept expired artifacts", "removed", removed)
	}

	return removed
}
