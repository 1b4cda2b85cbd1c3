package downloads

import (
	"errors"
	"log/slog"
	"time"

	"biodaat-backend/internal/features/tokens"
)

var (
	ErrTokenRequired     = errors.New("download token is required")
	ErrInvalidToken      = errors.New("invalid download token")
	ErrTokenExpired      = errors.New("download token has expired")
	ErrMaxDownloads      = errors.New("maximum downloads exceeded")
	ErrStoreUnavailable  = errors.New("token verification temporarily unavailable")
	ErrForbiddenFilename = errors.New("filename not allowed")
)

// FileServe describes one artifact ready to stream.
type FileServe struct {
	Path        string
	Filename    string
	ContentType string
}

type DownloadService struct {
	tokenService *tokens.TokenService
	vault        *FileVault
	logger       *slog.Logger
}

func NewDownloadService(
	tokenService *tokens.TokenService,
	vault *FileVault,
	logger *slog.Logger,
) *DownloadService {
	return &DownloadService{
		tokenService: tokenService,
		vault:        vault,
		logger:       logger,
	}
}

// ResolveByFilename is the lowest-trust fallback: a raw filename from the
// degraded-mode URL. Only the whitelist protects this path; no expiry or
// use-count enforcement is attempted. It exists so a user is never left
// with an undownloadable artifact when everything else failed.
func (s *DownloadService) ResolveByFilename(filename string) (*FileServe, error) {
	if !s.vault.IsAllowedUserFilename(filename) {
		s.logger.Warn("rejected direct-file download, filename failed whitelist", "filename", filename)
		return nil, ErrForbiddenFilename
	}

	path, name, contentType, err := s.vault.Resolve(filename)
	if err != nil {
		return nil, err
	}

	return &FileServe{Path: path, Filename: name, ContentType: contentType}, nil
}

// ResolveByToken validates a caller-presented token and resolves the file
// to stream. countServe distinguishes download (accounted) from preview
// (read-only intent, no increment).
func (s *DownloadService) ResolveByToken(token, ipAddress string, countServe bool) (*FileServe, error) {
	resolution := s.tokenService.Resolve(token)

	switch resolution.Kind {
	case tokens.ResolutionDbBacked:
		return s.serveDbBacked(resolution.Record, ipAddress, countServe)

	case tokens.ResolutionStateless:
		path, name, contentType, err := s.vault.Resolve(resolution.Filename)
		if err != nil {
			return nil, err
		}
		return &FileServe{Path: path, Filename: name, ContentType: contentType}, nil

	case tokens.ResolutionExpired:
		return nil, ErrTokenExpired

	case tokens.ResolutionUnavailable:
		return nil, ErrStoreUnavailable

	default:
		return nil, ErrInvalidToken
	}
}

func (s *DownloadService) serveDbBacked(
	record *tokens.TokenWithBiodata,
	ipAddress string,
	countServe bool,
) (*FileServe, error) {
	now := time.Now().UTC()

	// Expiry beats quota: a token past expires_at is "expired" even if
	// downloads remain.
	if record.IsExpired(now) {
		return nil, ErrTokenExpired
	}
	if record.IsExhausted() {
		return nil, ErrMaxDownloads
	}

	if countServe {
		served, err := s.tokenService.RecordServe(record.ID, ipAddress)
		if err != nil {
			// Counter update failures never abort the response, the file
			// has already been committed to stream.
			s.logger.Error("failed to record download serve", "tokenId", record.ID, "error", err)
		} else if !served {
			// A concurrent request won the conditional UPDATE race and the
			// increment would now violate the quota or the expiry window.
			if record.ExpiresAt.After(now) {
				return nil, ErrMaxDownloads
			}
			return nil, ErrTokenExpired
		}
	}

	path, name, contentType, err := s.vault.Resolve(record.PdfFilename)
	if err != nil {
		return nil, err
	}

	return &FileServe{Path: path, Filename: name, ContentType: contentType}, nil
}
