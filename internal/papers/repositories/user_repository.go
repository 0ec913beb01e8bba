package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/webapps/backend/internal/papers/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for portal account operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, role string, skip, limit int) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	Reviewers(ctx context.Context) ([]models.ReviewerLoad, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

// GormUserRepository implements UserRepository with gorm
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create stores a new account with its email lower-cased.
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return duplicate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// List pages accounts newest first, optionally for one role.
func (r *GormUserRepository) List(ctx context.Context, role string, skip, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := page(q, skip, limit).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return duplicate(r.db.WithContext(ctx).Save(user).Error)
}

// Delete refuses accounts that authored papers and drops the reviewer's
// assignments that never produced a review.
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var papers int64
		if err := tx.Model(&models.Paper{}).Where("author_id = ?", id).Count(&papers).Error; err != nil {
			return err
		}
		if papers > 0 {
			return ErrUserHasPapers
		}

		if err := tx.Where("reviewer_id = ? AND status = ?", id, models.AssignmentPending).
			Delete(&models.Assignment{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "user")
		}
		return nil
	})
}

// Reviewers lists reviewer accounts with their assignment load.
func (r *GormUserRepository) Reviewers(ctx context.Context) ([]models.ReviewerLoad, error) {
	var out []models.ReviewerLoad
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select(`users.id, users.name, users.email, users.institution,
			COUNT(CASE WHEN assignments.status = ? THEN 1 END) AS pending,
			COUNT(CASE WHEN assignments.status = ? THEN 1 END) AS completed`,
			models.AssignmentPending, models.AssignmentCompleted).
		Joins("LEFT JOIN assignments ON assignments.reviewer_id = users.id").
		Where("users.role = ?", models.RoleReviewer).
		Group("users.id").
		Order("users.name").
		Scan(&out).Error
	return out, err
}

func (r *GormUserRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}
