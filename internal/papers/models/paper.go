package models

import "time"

const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusReviewed    = "reviewed"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
)

var PaperStatuses = []string{StatusSubmitted, StatusUnderReview, StatusReviewed, StatusAccepted, StatusRejected}

const (
	AssignmentPending   = "pending"
	AssignmentCompleted = "completed"
)

// Paper is a submission. FileName only names the manuscript; no bytes are
// stored.
type Paper struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"size:255;not null"`
	Abstract    string       `json:"abstract" gorm:"type:text"`
	Keywords    string       `json:"keywords,omitempty" gorm:"size:255"`
	FileName    string       `json:"fileName" gorm:"size:255;not null"`
	CategoryID  uint         `json:"categoryId" gorm:"index"`
	Category    *Category    `json:"category,omitempty"`
	AuthorID    uint         `json:"authorId" gorm:"index;not null"`
	Author      *User        `json:"author,omitempty"`
	Status      string       `json:"status" gorm:"size:20;index;not null;default:submitted"`
	Assignments []Assignment `json:"assignments,omitempty"`
	Reviews     []Review     `json:"reviews,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Assignment asks one reviewer to review one paper.
type Assignment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PaperID    uint      `json:"paperId" gorm:"uniqueIndex:idx_assignment_pair;not null"`
	Paper      *Paper    `json:"paper,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	ReviewerID uint      `json:"reviewerId" gorm:"uniqueIndex:idx_assignment_pair;not null"`
	Reviewer   *User     `json:"reviewer,omitempty"`
	Status     string    `json:"status" gorm:"size:20;not null;default:pending"`
	AssignedAt time.Time `json:"assignedAt" gorm:"autoCreateTime"`
}

type Review struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	PaperID        uint      `json:"paperId" gorm:"uniqueIndex:idx_review_pair;not null"`
	Paper          *Paper    `json:"paper,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	ReviewerID     uint      `json:"reviewerId" gorm:"uniqueIndex:idx_review_pair;not null"`
	Reviewer       *User     `json:"reviewer,omitempty"`
	Comments       string    `json:"comments" gorm:"type:text"`
	Score          int       `json:"score"`
	Recommendation string    `json:"recommendation" gorm:"size:20"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type PaperRequest struct {
	Title      string `json:"title" validate:"required,min=3,max=255"`
	Abstract   string `json:"abstract" validate:"required,max=5000"`
	Keywords   string `json:"keywords,omitempty" validate:"max=255"`
	FileName   string `json:"fileName" validate:"required,max=255"`
	CategoryID uint   `json:"categoryId" validate:"required"`
}

type ReviewRequest struct {
	Score          *int   `json:"score" validate:"required,min=0,max=100"`
	Comments       string `json:"comments" validate:"required,max=5000"`
	Recommendation string `json:"recommendation" validate:"required,oneof=accept minor_revision major_revision reject"`
}

type AssignRequest struct {
	ReviewerID uint `json:"reviewerId" validate:"required"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=submitted under_review reviewed accepted rejected"`
}

// PaperFilter narrows the admin paper list. Zero values match everything.
type PaperFilter struct {
	Status   string
	AuthorID uint
	Skip     int
	Limit    int
}

// StatusCounts maps paper status to the number of papers in it.
type StatusCounts map[string]int64

func (s StatusCounts) Total() int64 {
	var n int64
	for _, v := range s {
		n += v
	}
	return n
}

// ReviewerStats backs the reviewer dashboard.
type ReviewerStats struct {
	Assigned     int64   `json:"assigned"`
	Pending      int64   `json:"pending"`
	Completed    int64   `json:"completed"`
	AverageScore float64 `json:"averageScore"`
}

// PortalStats backs the admin dashboard.
type PortalStats struct {
	TotalUsers         int64        `json:"totalUsers"`
	Authors            int64        `json:"authors"`
	Reviewers          int64        `json:"reviewers"`
	TotalPapers        int64        `json:"totalPapers"`
	PapersByStatus     StatusCounts `json:"papersByStatus"`
	PendingAssignments int64        `json:"pendingAssignments"`
}

// ClosedStatus reports whether a decision has been made on the paper.
func ClosedStatus(s string) bool {
	return s == StatusAccepted || s == StatusRejected
}
