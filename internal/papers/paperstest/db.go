// Package paperstest opens throwaway papers databases for tests.
package paperstest

import (
	"testing"

	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens a migrated in-memory sqlite database that is closed
// when the test ends. One connection keeps every query on the same memory
// database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db), "failed to migrate schema")
	return db
}

// CreateUser inserts an account whose password is "secret1".
func CreateUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{Name: name, Email: name + "@uni.example", Password: string(hash), Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreatePaper inserts a paper in the given status.
func CreatePaper(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, status string) *models.Paper {
	t.Helper()
	p := &models.Paper{
		Title:      "On " + author.Name,
		Abstract:   "An abstract",
		FileName:   "paper.pdf",
		CategoryID: category.ID,
		AuthorID:   author.ID,
		Status:     status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
