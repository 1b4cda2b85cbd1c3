package templates

import (
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

	require.NoError(t, db.AutoMigrate(&Template{}))
	return db
}

func insertTemplate(t *testing.T, repository *TemplateRepository, slug string, sortOrder int, isActive bool) *Template {
	template := &Template{
		Name:      slug,
		Slug:      slug,
		SortOrder: sortOrder,
		IsActive:  isActive,
	}
	require.NoError(t, repository.Create(template))
	return template
}

func Test_ListActive_OrdersBySortOrderThenNewest(t *testing.T) {
	repository := NewTemplateRepository(setupTestDb(t))

	insertTemplate(t, repository, "third", 30, true)
	insertTemplate(t, repository, "first", 10, true)
	insertTemplate(t, repository, "second", 20, true)

	templates, err := repository.ListActive(10, 0)
	require.NoError(t, err)
	require.Len(t, templates, 3)

	assert.Equal(t, "first", templates[0].Slug)
	assert.Equal(t, "second", templates[1].Slug)
	assert.Equal(t, "third", templates[2].Slug)
}

func Test_ListActive_ExcludesInactiveTemplates(t *testing.T) {
	repository := NewTemplateRepository(setupTestDb(t))

	insertTemplate(t, repository, "visible", 10, true)
	insertTemplate(t, repository, "hidden", 20, false)

	templates, err := repository.ListActive(10, 0)
	require.NoError(t, err)

	require.Len(t, templates, 1)
	assert.Equal(t, "visible", templates[0].Slug)
}

func Test_FindBySlug_InactiveTemplate_ReturnsNil(t *testing.T) {
	repository := NewTemplateRepository(setupTestDb(t))

	insertTemplate(t, repository, "hidden", 10, false)

	template, err := repository.FindBySlug("hidden")
	assert.NoError(t, err)
	assert.Nil(t, template)
}

func Test_FindBySlug_UnknownSlug_ReturnsNilWithoutError(t *testing.T) {
	repository := NewTemplateRepository(setupTestDb(t))

	template, err := repository.FindBySlug("missing")
	assert.NoError(t, err)
	assert.Nil(t, template)
}

func Test_IncrementDownloadCount_AddsOne(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTemplateRepository(db)

	template := insertTemplate(t, repository, "classic", 10, true)

	require.NoError(t, repository.IncrementDownloadCount(template.ID))
	require.NoError(t, repository.IncrementDownloadCount(template.ID))

	var stored Template
	require.NoError(t, db.First(&stored, "id = ?", template.ID).Error)
	assert.Equal(t, int64(2), stored.DownloadCount)
}

func Test_Reorder_AppliesAllAssignments(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTemplateRepository(db)

	first := insertTemplate(t, repository, "first", 10, true)
	second := insertTemplate(t, repository, "second", 20, true)

	err := repository.Reorder(map[uuid.UUID]int{
		first.ID:  20,
		second.ID: 10,
	})
	require.NoError(t, err)

	templates, err := repository.ListActive(10, 0)
	require.NoError(t, err)
	require.Len(t, templates, 2)

	assert.Equal(t, "second", templates[0].Slug)
	assert.Equal(t, "first", templates[1].Slug)
}

func Test_Reorder_UnknownTemplate_RollsBackWholeBatch(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTemplateRepository(db)

	template := insertTemplate(t, repository, "classic", 10, true)

	err := repository.Reorder(map[uuid.UUID]int{
		template.ID: 99,
		uuid.New():  1,
	})
	require.Error(t, err)

	var stored Template
	require.NoError(t, db.First(&stored, "id = ?", template.ID).Error)
	assert.Equal(t, 10, stored.SortOrder, "failed batch must not move any template")
}

func Test_Update_TouchesUpdatedAt(t *testing.T) {
	db := setupTestDb(t)
	repository := NewTemplateRepository(db)

	template := insertTemplate(t, repository, "classic", 10, true)
	template.Name = "Classic Revised"

	require.NoError(t, repository.Update(template))

	var stored Template
	require.NoError(t, db.First(&stored, "id = ?", template.ID).Error)
	assert.Equal(t, "Classic Revised", stored.Name)
	assert.WithinDuration(t, time.Now().UTC(), stored.UpdatedAt, 5*time.Second)
}
