package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/webapps/backend/internal/papers/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaperRepository defines the interface for submissions and their review
// workflow
type PaperRepository interface {
	Create(ctx context.Context, paper *models.Paper) error
	GetByID(ctx context.Context, id uint) (*models.Paper, error)
	Detail(ctx context.Context, id uint) (*models.Paper, error)
	List(ctx context.Context, filter models.PaperFilter) ([]models.Paper, int64, error)
	Delete(ctx context.Context, id, authorID uint) error
	StatusCounts(ctx context.Context, authorID uint) (models.StatusCounts, error)

	IsAssigned(ctx context.Context, paperID, reviewerID uint) (bool, error)
	Assignments(ctx context.Context, reviewerID uint) ([]models.Assignment, error)
	ReviewsBy(ctx context.Context, reviewerID uint) ([]models.Review, error)
	ReviewerStats(ctx context.Context, reviewerID uint) (models.ReviewerStats, error)
	CountAssignments(ctx context.Context, status string) (int64, error)

	Assign(ctx context.Context, paperID, reviewerID uint) (*models.Assignment, error)
	Unassign(ctx context.Context, paperID, reviewerID uint) error
	SubmitReview(ctx context.Context, review *models.Review) (string, error)
	SetStatus(ctx context.Context, paperID uint, status string) (*models.Paper, error)
}

type GormPaperRepository struct {
	db *gorm.DB
}

func NewGormPaperRepository(db *gorm.DB) *GormPaperRepository {
	return &GormPaperRepository{db: db}
}

func (r *GormPaperRepository) Create(ctx context.Context, paper *models.Paper) error {
	paper.Status = models.StatusSubmitted
	return r.db.WithContext(ctx).Create(paper).Error
}

func (r *GormPaperRepository) GetByID(ctx context.Context, id uint) (*models.Paper, error) {
	var paper models.Paper
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Author").First(&paper, id).Error; err != nil {
		return nil, notFound(err, "paper")
	}
	return &paper, nil
}

// Detail loads a paper with its assignments and reviews.
func (r *GormPaperRepository) Detail(ctx context.Context, id uint) (*models.Paper, error) {
	var paper models.Paper
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("assigned_at") }).
		Preload("Assignments.Reviewer").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("Reviews.Reviewer").
		First(&paper, id).Error
	if err != nil {
		return nil, notFound(err, "paper")
	}
	return &paper, nil
}

// List pages papers newest first.
func (r *GormPaperRepository) List(ctx context.Context, f models.PaperFilter) ([]models.Paper, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Paper{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var papers []models.Paper
	err := page(q, f.Skip, f.Limit).
		Preload("Category").
		Preload("Author").
		Order("created_at DESC").Order("id DESC").
		Find(&papers).Error
	if err != nil {
		return nil, 0, err
	}
	return papers, total, nil
}

// Delete removes an author's own paper with its assignments and reviews.
func (r *GormPaperRepository) Delete(ctx context.Context, id, authorID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paper models.Paper
		if err := tx.Where("id = ? AND author_id = ?", id, authorID).First(&paper).Error; err != nil {
			return notFound(err, "paper")
		}
		if err := tx.Where("paper_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("paper_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&paper).Error
	})
}

// StatusCounts groups papers by status, for one author or, with authorID 0,
// for everyone. Every status is present in the result.
func (r *GormPaperRepository) StatusCounts(ctx context.Context, authorID uint) (models.StatusCounts, error) {
	q := r.db.WithContext(ctx).Model(&models.Paper{}).Select("status, COUNT(*) AS count").Group("status")
	if authorID != 0 {
		q = q.Where("author_id = ?", authorID)
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(models.StatusCounts, len(models.PaperStatuses))
	for _, s := range models.PaperStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *GormPaperRepository) IsAssigned(ctx context.Context, paperID, reviewerID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("paper_id = ? AND reviewer_id = ?", paperID, reviewerID).
		Count(&n).Error
	return n > 0, err
}

// Assignments lists a reviewer's assignments, pending ones first.
func (r *GormPaperRepository) Assignments(ctx context.Context, reviewerID uint) ([]models.Assignment, error) {
	var out []models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Paper").
		Preload("Paper.Category").
		Preload("Paper.Author").
		Where("reviewer_id = ?", reviewerID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "status"}, Desc: true}).
		Order("assigned_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormPaperRepository) ReviewsBy(ctx context.Context, reviewerID uint) ([]models.Review, error) {
	var out []models.Review
	err := r.db.WithContext(ctx).
		Preload("Paper").
		Where("reviewer_id = ?", reviewerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormPaperRepository) ReviewerStats(ctx context.Context, reviewerID uint) (models.ReviewerStats, error) {
	var stats models.ReviewerStats
	db := r.db.WithContext(ctx)

	err := db.Model(&models.Assignment{}).
		Select("COUNT(*) AS assigned, COUNT(CASE WHEN status = ? THEN 1 END) AS pending, COUNT(CASE WHEN status = ? THEN 1 END) AS completed",
			models.AssignmentPending, models.AssignmentCompleted).
		Where("reviewer_id = ?", reviewerID).
		Scan(&stats).Error
	if err != nil {
		return stats, err
	}

	var avg struct{ AverageScore *float64 }
	err = db.Model(&models.Review{}).
		Select("AVG(score) AS average_score").
		Where("reviewer_id = ?", reviewerID).
		Scan(&avg).Error
	if err != nil {
		return stats, err
	}
	if avg.AverageScore != nil {
		stats.AverageScore = *avg.AverageScore
	}
	return stats, nil
}

func (r *GormPaperRepository) CountAssignments(ctx context.Context, status string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Assignment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	return n, q.Count(&n).Error
}

// lockPaper reads a paper inside tx, holding its row where the database
// supports row locks.
func lockPaper(tx *gorm.DB, id uint) (*models.Paper, error) {
	var paper models.Paper
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&paper, id).Error; err != nil {
		return nil, notFound(err, "paper")
	}
	return &paper, nil
}

// Assign puts a reviewer on a submitted or under-review paper and moves it
// to under_review.
func (r *GormPaperRepository) Assign(ctx context.Context, paperID, reviewerID uint) (*models.Assignment, error) {
	var assignment *models.Assignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paper, err := lockPaper(tx, paperID)
		if err != nil {
			return err
		}
		if paper.Status != models.StatusSubmitted && paper.Status != models.StatusUnderReview {
			return ErrNotAssignable
		}

		var reviewer models.User
		if err := tx.First(&reviewer, reviewerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewerNotFound
			}
			return err
		}
		if reviewer.Role != models.RoleReviewer {
			return ErrNotReviewer
		}

		var existing int64
		if err := tx.Model(&models.Assignment{}).
			Where("paper_id = ? AND reviewer_id = ?", paperID, reviewerID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}

		if err := tx.Model(paper).Update("status", models.StatusUnderReview).Error; err != nil {
			return err
		}
		assignment = &models.Assignment{PaperID: paperID, ReviewerID: reviewerID, Status: models.AssignmentPending}
		return duplicate(tx.Create(assignment).Error)
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// Unassign removes a reviewer who has not reviewed yet. A paper left with no
// reviewers goes back to submitted.
func (r *GormPaperRepository) Unassign(ctx context.Context, paperID, reviewerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paper, err := lockPaper(tx, paperID)
		if err != nil {
			return err
		}

		var assignment models.Assignment
		if err := tx.Where("paper_id = ? AND reviewer_id = ?", paperID, reviewerID).First(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			return err
		}

		var reviewed int64
		if err := tx.Model(&models.Review{}).
			Where("paper_id = ? AND reviewer_id = ?", paperID, reviewerID).
			Count(&reviewed).Error; err != nil {
			return err
		}
		if reviewed > 0 {
			return ErrReviewSubmitted
		}

		if err := tx.Delete(&assignment).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.Assignment{}).Where("paper_id = ?", paperID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 && paper.Status == models.StatusUnderReview {
			return tx.Model(paper).Update("status", models.StatusSubmitted).Error
		}
		return nil
	})
}

// reviewProgress counts a paper's assignments and the reviews written by
// its assigned reviewers.
func reviewProgress(tx *gorm.DB, paperID uint) (assigned, reviewed int64, err error) {
	if err = tx.Model(&models.Assignment{}).Where("paper_id = ?", paperID).Count(&assigned).Error; err != nil {
		return
	}
	err = tx.Model(&models.Review{}).
		Where("paper_id = ? AND reviewer_id IN (?)", paperID,
			tx.Model(&models.Assignment{}).Select("reviewer_id").Where("paper_id = ?", paperID)).
		Count(&reviewed).Error
	return
}

// SubmitReview stores or replaces the reviewer's review and completes their
// assignment. Once every assigned reviewer has reviewed, the paper becomes
// reviewed. It returns the paper's status afterwards.
func (r *GormPaperRepository) SubmitReview(ctx context.Context, review *models.Review) (string, error) {
	var status string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paper, err := lockPaper(tx, review.PaperID)
		if err != nil {
			return err
		}

		var assignment models.Assignment
		if err := tx.Where("paper_id = ? AND reviewer_id = ?", review.PaperID, review.ReviewerID).First(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAssigned
			}
			return err
		}
		if models.ClosedStatus(paper.Status) {
			return ErrPaperClosed
		}

		review.UpdatedAt = time.Now()
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "paper_id"}, {Name: "reviewer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"comments", "score", "recommendation", "updated_at"}),
		}).Create(review).Error
		if err != nil {
			return err
		}

		if err := tx.Model(&assignment).Update("status", models.AssignmentCompleted).Error; err != nil {
			return err
		}

		status = paper.Status
		assigned, reviewed, err := reviewProgress(tx, paper.ID)
		if err != nil {
			return err
		}
		if assigned > 0 && reviewed >= assigned && paper.Status != models.StatusReviewed {
			status = models.StatusReviewed
			return tx.Model(paper).Update("status", status).Error
		}
		return nil
	})
	return status, err
}

// SetStatus records an admin decision. Accepting or rejecting needs every
// assigned reviewer's review, and completes all of the paper's assignments.
func (r *GormPaperRepository) SetStatus(ctx context.Context, paperID uint, status string) (*models.Paper, error) {
	var paper *models.Paper
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		paper, err = lockPaper(tx, paperID)
		if err != nil {
			return err
		}

		if models.ClosedStatus(status) {
			assigned, reviewed, err := reviewProgress(tx, paperID)
			if err != nil {
				return err
			}
			if assigned == 0 || reviewed < assigned {
				return ErrReviewsIncomplete
			}
			if err := tx.Model(&models.Assignment{}).
				Where("paper_id = ?", paperID).
				Update("status", models.AssignmentCompleted).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(paper).Update("status", status).Error; err != nil {
			return err
		}
		paper.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paper, nil
}
