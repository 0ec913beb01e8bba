package repositories

import (
	"errors"
	"fmt"

	"github.com/anonto42/webapps/backend/internal/papers/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")

	// Workflow guards.
	ErrCategoryInUse     = errors.New("category has papers")
	ErrUserHasPapers     = errors.New("user has submitted papers")
	ErrNotAssignable     = errors.New("paper cannot take reviewers in its current status")
	ErrNotReviewer       = errors.New("user is not a reviewer")
	ErrNotAssigned       = errors.New("reviewer is not assigned to this paper")
	ErrPaperClosed       = errors.New("a decision has already been made on this paper")
	ErrReviewSubmitted   = errors.New("reviewer has already submitted a review")
	ErrReviewsIncomplete = errors.New("not every assigned reviewer has submitted a review")

	// Misses that handlers tell apart from a missing paper. Both match
	// ErrNotFound.
	ErrReviewerNotFound   = fmt.Errorf("reviewer %w", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("assignment %w", ErrNotFound)
)

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

// duplicate needs the connection opened with TranslateError.
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// Migrate creates or updates every papers table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Category{}, &models.Paper{}, &models.Assignment{}, &models.Review{})
}

func page(db *gorm.DB, skip, limit int) *gorm.DB {
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db.Offset(skip)
}
