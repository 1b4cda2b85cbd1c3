package tokens

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDb(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&DownloadToken{}))

	// The joined tables live in sibling features; create the minimal
	// shape here to keep the package self-contained.
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

	return db
}

func insertBiodata(t *testing.T, db *gorm.DB, userID uuid.UUID, templateID *uuid.UUID, filename string) uuid.UUID {
	id := uuid.New()

	var templateValue any
	if templateID != nil {
		templateValue = templateID.String()
	}

	err := db.Exec(
		"INSERT INTO generated_biodatas (id, user_id, template_id, pdf_filename) VALUES (?, ?, ?, ?)",
		id.String(), userID.String(), templateValue, filename,
	).Error
	require.NoError(t, err)

	return id
}

func insertTemplate(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	id := uuid.New()
	err := db.Exec("INSERT INTO templates (id, name) VALUES (?, ?)", id.String(), name).Error
	require.NoError(t, err)
	return id
}

func Test_Create_FillsIDAndCreatedAt(t *testing.T) {
	repository := NewTokenRepository(setupTestDb(t))

	token := &DownloadToken{
		BiodataID:    uuid.New(),
		Token:        GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		MaxDownloads: 5,
	}

	require.NoError(t, repository.Create(token))

	assert.NotEqual(t, uuid.Nil, token.ID)
	assert.False(t, token.CreatedAt.IsZero())
}

func Test_FindByToken_UnknownToken_ReturnsNilWithoutError(t *testing.T) {
	repository := NewTokenRepository(setupTestDb(t))

	record, err := repository.FindByToken("does-not-exist")

	assert.NoError(t, err)
	assert.Nil(t, record)
}

func Test_FindByToken_KnownToken_ReturnsJoinedMetadata(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTokenRepository(db)

	ownerID := uuid.New()
	templateID := insertTemplate(t, db, "Classic")
	biodataID := insertBiodata(t, db, ownerID, &templateID, "biodata_classic_1_20250101_abcd1234.pdf")

	token := &DownloadToken{
		BiodataID:    biodataID,
		Token:        GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		MaxDownloads: 5,
	}
	require.NoError(t, repository.Create(token))

	record, err := repository.FindByToken(token.Token)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, token.ID, record.ID)
	assert.Equal(t, "biodata_classic_1_20250101_abcd1234.pdf", record.PdfFilename)
	assert.Equal(t, ownerID, record.OwnerID)
	assert.Equal(t, "Classic", record.TemplateName)
}

func Test_FindByToken_BiodataWithoutTemplate_TemplateNameIsEmpty(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTokenRepository(db)

	biodataID := insertBiodata(t, db, uuid.New(), nil, "biodata_classic_0_20250101_abcd1234.pdf")

	token := &DownloadToken{
		BiodataID:    biodataID,
		Token:        GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		MaxDownloads: 5,
	}
	require.NoError(t, repository.Create(token))

	record, err := repository.FindByToken(token.Token)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Empty(t, record.TemplateName)
}

func Test_RecordServe_IncrementsUntilQuotaThenRefuses(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTokenRepository(db)

	token := &DownloadToken{
		BiodataID:    uuid.New(),
		Token:        GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		MaxDownloads: 2,
	}
	require.NoError(t, repository.Create(token))

	for i := 0; i < 2; i++ {
		served, err := repository.RecordServe(token.ID, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, served, "serve %d should be within quota", i+1)
	}

	served, err := repository.RecordServe(token.ID, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, served, "serve beyond max_downloads must be refused")

	var stored DownloadToken
	require.NoError(t, db.First(&stored, "id = ?", token.ID).Error)
	assert.Equal(t, 2, stored.DownloadCount, "refused serve must not increment the counter")
}

func Test_RecordServe_ExpiredToken_NotCounted(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTokenRepository(db)

	token := &DownloadToken{
		BiodataID:    uuid.New(),
		Token:        GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(-time.Minute),
		MaxDownloads: 5,
	}
	require.NoError(t, repository.Create(token))

	served, err := repository.RecordServe(token.ID, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, served)

	var stored DownloadToken
	require.NoError(t, db.First(&stored, "id = ?", token.ID).Error)
	assert.Equal(t, 0, stored.DownloadCount)
}

func Test_RecordServe_StoresLastDownloadTimeAndIP(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTokenRepository(db)

	token := &DownloadToken{
		BiodataID:    uuid.New(),
		Token:        GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		MaxDownloads: 5,
	}
	require.NoError(t, repository.Create(token))

	served, err := repository.RecordServe(token.ID, "198.51.100.23")
	require.NoError(t, err)
	require.True(t, served)

	var stored DownloadToken
	require.NoError(t, db.First(&stored, "id = ?", token.ID).Error)
	assert.Equal(t, "198.51.100.23", stored.IPAddress)
	require.NotNil(t, stored.LastDownloadAt)
	assert.WithinDuration(t, time.Now().UTC(), *stored.LastDownloadAt, 5*time.Second)
}

func Test_CountIssuedSince_CountsOnlyNewerRows(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTokenRepository(db)

	old := &DownloadToken{
		BiodataID:    uuid.New(),
		Token:        GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		MaxDownloads: 5,
		CreatedAt:    time.Now().UTC().Add(-48 * time.Hour),
	}
	require.NoError(t, repository.Create(old))

	recent := &DownloadToken{
		BiodataID:    uuid.New(),
		Token:        GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		MaxDownloads: 5,
	}
	require.NoError(t, repository.Create(recent))

	count, err := repository.CountIssuedSince(time.Now().UTC().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func Test_GenerateSecureToken_ProducesUniqueOpaqueTokens(t *testing.T) {
	first := GenerateSecureToken()
	second := GenerateSecureToken()

	assert.NotEqual(t, first, second)
	assert.Greater(t, len(first), 40)
	assert.NotContains(t, first, ".")
}

func Test_RecordServe_ConcurrentServes_ExactlyQuotaSucceed(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTokenRepository(db)

	token := &DownloadToken{
		BiodataID:    uuid.New(),
		Token:        GenerateSecureToken(),
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		MaxDownloads: 3,
	}
	require.NoError(t, repository.Create(token))

	const attempts = 10

	var wg sync.WaitGroup
	var served int64
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ok, err := repository.RecordServe(token.ID, "203.0.113.7")
			if err != nil {
				errs <- err
				return
			}
			if ok {
				atomic.AddInt64(&served, 1)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.EqualValues(t, 3, served, "successful serves must equal the quota")

	var stored DownloadToken
	require.NoError(t, db.First(&stored, "id = ?", token.ID).Error)
	assert.Equal(t, 3, stored.DownloadCount)
}
