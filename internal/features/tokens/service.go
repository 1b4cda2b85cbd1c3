package tokens

import (
	"errors"
	"log/slog"
	"time"

	"biodaat-backend/internal/config"

	"github.com/google/uuid"
)

// ErrStoreUnavailable reports that the relational store could not be
// reached. Absence of proof is not proof of invalidity, so callers fall
// back to stateless verification instead of rejecting.
var ErrStoreUnavailable = errors.New("token store unavailable")

type TokenService struct {
	repository *TokenRepository
	codec      *Codec
	env        *config.Env
	logger     *slog.Logger
}

func NewTokenService(
	repository *TokenRepository,
	codec *Codec,
	env *config.Env,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		repository: repository,
		codec:      codec,
		env:        env,
		logger:     logger,
	}
}

// Issue persists a fresh opaque token bound to a stored biodata. Every
// token-issuing event creates a new row; regeneration never mutates or
// revokes earlier tokens.
func (s *TokenService) Issue(biodataID uuid.UUID) (*DownloadToken, error) {
	token := &DownloadToken{
		BiodataID:     biodataID,
		Token:         GenerateSecureToken(),
		ExpiresAt:     time.Now().UTC().Add(s.env.TokenExpiry),
		MaxDownloads:  s.env.MaxDownloads,
		DownloadCount: 0,
	}

	if err := s.repository.Create(token); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	s.logger.Info("issued download token", "biodataId", biodataID, "expiresAt", token.ExpiresAt)
	return token, nil
}

// MintStateless produces the degraded-mode signed token for an artifact
// that could not get a DB-backed token.
func (s *TokenService) MintStateless(filename string) (string, time.Time) {
	expiresAt := time.Now().UTC().Add(s.env.TokenExpiry)
	return s.codec.Mint(filename, expiresAt), expiresAt
}

// RecordServe accounts a successful serve, best effort from the caller's
// point of view: the resolver has already committed to streaming bytes.
func (s *TokenService) RecordServe(id uuid.UUID, ipAddress string) (bool, error) {
	return s.repository.RecordServe(id, ipAddress)
}

type CheckResult struct {
	Valid              bool      `json:"valid"`
	Filename           string    `json:"filename"`
	TemplateName       string    `json:"template_name"`
	ExpiresAt          time.Time `json:"expires_at"`
	DownloadsRemaining int       `json:"downloads_remaining"`
	IsExpired          bool      `json:"is_expired"`
	IsMaxDownloads     bool      `json:"is_max_downloads"`
}

// Check is the non-mutating probe behind GET /check-token. It never
// increments the counter.
func (s *TokenService) Check(token string) (*CheckResult, error) {
	record, err := s.repository.FindByToken(token)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if record == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	isExpired := record.IsExpired(now)
	isMaxed := record.IsExhausted()

	return &CheckResult{
		Valid:              !isExpired && !isMaxed,
		Filename:           record.PdfFilename,
		TemplateName:       record.TemplateName,
		ExpiresAt:          record.ExpiresAt,
		DownloadsRemaining: record.DownloadsRemaining(),
		IsExpired:          isExpired,
		IsMaxDownloads:     isMaxed,
	}, nil
}

func (s *TokenService) CountIssuedSince(since time.Time) (int64, error) {
	return s.repository.CountIssuedSince(since)
}
