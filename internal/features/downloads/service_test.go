package downloads

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"biodaat-backend/internal/config"
	"biodaat-backend/internal/features/tokens"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type downloadFixture struct {
	db              *gorm.DB
	root            string
	tokenRepository *tokens.TokenRepository
	tokenService    *tokens.TokenService
	service         *DownloadService
}

func newDownloadFixture(t *testing.T) *downloadFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&tokens.DownloadToken{}))
	require.NoError(t, db.Exec(`CREATE TABLE generated_biodatas (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		template_id TEXT,
		pdf_filename TEXT
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE templates (
		id TEXT PRIMARY KEY,
		name TEXT
	)`).Error)

	env := &config.Env{
		DownloadSecret: "test-secret",
		TokenExpiry:    time.Hour,
		MaxDownloads:   5,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	root := t.TempDir()
	tokenRepository := tokens.NewTokenRepository(db)
	tokenService := tokens.NewTokenService(tokenRepository, tokens.NewCodec(env.DownloadSecret), env, log)
	vault := NewFileVault(root)

	return &downloadFixture{
		db:              db,
		root:            root,
		tokenRepository: tokenRepository,
		tokenService:    tokenService,
		service:         NewDownloadService(tokenService, vault, log),
	}
}

func (f *downloadFixture) insertBiodata(t *testing.T, filename string) uuid.UUID {
	id := uuid.New()
	err := f.db.Exec(
		"INSERT INTO generated_biodatas (id, user_id, pdf_filename) VALUES (?, ?, ?)",
		id.String(), uuid.Nil.String(), filename,
	).Error
	require.NoError(t, err)
	return id
}

func (f *downloadFixture) writeArtifact(t *testing.T, filename string) {
	require.NoError(t, os.WriteFile(filepath.Join(f.root, filename), []byte("%PDF"), 0o644))
}

func Test_ResolveByFilename_WhitelistedExistingFile_Serves(t *testing.T) {
	fixture := newDownloadFixture(t)
	fixture.writeArtifact(t, "biodata_classic_0_20250101_abcd1234.pdf")

	serve, err := fixture.service.ResolveByFilename("biodata_classic_0_20250101_abcd1234.pdf")
	require.NoError(t, err)

	assert.Equal(t, "biodata_classic_0_20250101_abcd1234.pdf", serve.Filename)
	assert.Equal(t, "application/pdf", serve.ContentType)
}

func Test_ResolveByFilename_TraversalFilename_Forbidden(t *testing.T) {
	fixture := newDownloadFixture(t)

	_, err := fixture.service.ResolveByFilename("../../etc/passwd")
	assert.ErrorIs(t, err, ErrForbiddenFilename)
}

func Test_ResolveByToken_ValidDbToken_ServesAndCounts(t *testing.T) {
	fixture := newDownloadFixture(t)
	fixture.writeArtifact(t, "biodata_a.pdf")
	biodataID := fixture.insertBiodata(t, "biodata_a.pdf")

	token, err := fixture.tokenService.Issue(biodataID)
	require.NoError(t, err)

	serve, err := fixture.service.ResolveByToken(token.Token, "203.0.113.7", true)
	require.NoError(t, err)
	assert.Equal(t, "biodata_a.pdf", serve.Filename)

	var stored tokens.DownloadToken
	require.NoError(t, fixture.db.First(&stored, "id = ?", token.ID).Error)
	assert.Equal(t, 1, stored.DownloadCount)
}

func Test_ResolveByToken_Preview_DoesNotConsumeDownload(t *testing.T) {
	fixture := newDownloadFixture(t)
	fixture.writeArtifact(t, "biodata_a.pdf")
	biodataID := fixture.insertBiodata(t, "biodata_a.pdf")

	token, err := fixture.tokenService.Issue(biodataID)
	require.NoError(t, err)

	_, err = fixture.service.ResolveByToken(token.Token, "203.0.113.7", false)
	require.NoError(t, err)

	var stored tokens.DownloadToken
	require.NoError(t, fixture.db.First(&stored, "id = ?", token.ID).Error)
	assert.Equal(t, 0, stored.DownloadCount)
}

func Test_ResolveByToken_ExpiredDbToken_ReturnsExpired(t *testing.T) {
	fixture := newDownloadFixture(t)
	fixture.writeArtifact(t, "biodata_a.pdf")
	biodataID := fixture.insertBiodata(t, "biodata_a.pdf")

	token := &tokens.DownloadToken{
		BiodataID:    biodataID,
		Token:        tokens.GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(-time.Minute),
		MaxDownloads: 5,
	}
	require.NoError(t, fixture.tokenRepository.Create(token))

	_, err := fixture.service.ResolveByToken(token.Token, "203.0.113.7", true)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func Test_ResolveByToken_ExpiredAndExhausted_ExpiryWins(t *testing.T) {
	fixture := newDownloadFixture(t)
	biodataID := fixture.insertBiodata(t, "biodata_a.pdf")

	token := &tokens.DownloadToken{
		BiodataID:     biodataID,
		Token:         tokens.GenerateSecureToken(),
		ExpiresAt:     time.Now().UTC().Add(-time.Minute),
		MaxDownloads:  2,
		DownloadCount: 2,
	}
	require.NoError(t, fixture.tokenRepository.Create(token))

	_, err := fixture.service.ResolveByToken(token.Token, "203.0.113.7", true)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func Test_ResolveByToken_ExhaustedDbToken_ReturnsMaxDownloads(t *testing.T) {
	fixture := newDownloadFixture(t)
	fixture.writeArtifact(t, "biodata_a.pdf")
	biodataID := fixture.insertBiodata(t, "biodata_a.pdf")

	token := &tokens.DownloadToken{
		BiodataID:     biodataID,
		Token:         tokens.GenerateSecureToken(),
		ExpiresAt:     time.Now().UTC().Add(time.Hour),
		MaxDownloads:  5,
		DownloadCount: 5,
	}
	require.NoError(t, fixture.tokenRepository.Create(token))

	_, err := fixture.service.ResolveByToken(token.Token, "203.0.113.7", true)
	assert.ErrorIs(t, err, ErrMaxDownloads)
}

func Test_ResolveByToken_StatelessToken_ServesWithoutStoreRow(t *testing.T) {
	fixture := newDownloadFixture(t)
	fixture.writeArtifact(t, "biodata_a.pdf")

	token, _ := fixture.tokenService.MintStateless("biodata_a.pdf")

	serve, err := fixture.service.ResolveByToken(token, "203.0.113.7", true)
	require.NoError(t, err)
	assert.Equal(t, "biodata_a.pdf", serve.Filename)
}

func Test_ResolveByToken_GarbageToken_ReturnsInvalid(t *testing.T) {
	fixture := newDownloadFixture(t)

	_, err := fixture.service.ResolveByToken("garbage", "203.0.113.7", true)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_ResolveByToken_StoreDown_ReturnsUnavailableNotInvalid(t *testing.T) {
	fixture := newDownloadFixture(t)

	sqlDB, err := fixture.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = fixture.service.ResolveByToken("opaque-looking-token", "203.0.113.7", true)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func Test_ResolveByToken_DbTokenWithHtmlFallback_ServesHtml(t *testing.T) {
	fixture := newDownloadFixture(t)
	fixture.writeArtifact(t, "biodata_a.html")
	biodataID := fixture.insertBiodata(t, "biodata_a.pdf")

	token, err := fixture.tokenService.Issue(biodataID)
	require.NoError(t, err)

	serve, err := fixture.service.ResolveByToken(token.Token, "203.0.113.7", true)
	require.NoError(t, err)

	assert.Equal(t, "biodata_a.html", serve.Filename)
	assert.Equal(t, "text/html", serve.ContentType)
}
