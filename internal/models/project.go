package models

import (
	"time"

	"gorm.io/gorm"
)

// Project status labels form one enum with a fixed transition table:
//
//	Proposal Submitted → Accepted | Rejected
//	Accepted           → Completed
//
// Supervisor-created projects start directly in Accepted.
const (
	ProjectProposalSubmitted = "Proposal Submitted"
	ProjectAccepted          = "Accepted"
	ProjectRejected          = "Rejected"
	ProjectCompleted         = "Completed"
)

const (
	MilestonePending   = "Pending"
	MilestoneCompleted = "Completed"
)

const (
	SubmissionOnTime = "On Time"
	SubmissionLate   = "Late"
)

const (
	ReviewPending  = "Pending"
	ReviewAccepted = "Accepted"
	ReviewRejected = "Rejected"
)

// Project always belongs to a group; CreatedBy records the proposing student
// or the supervisor who registered it. Projects are never hard-deleted.
type Project struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:300;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Objectives   string         `gorm:"type:text" json:"objectives"`
	GroupID      uint           `gorm:"index;not null" json:"group_id"`
	SupervisorID uint           `gorm:"index;not null" json:"supervisor_id"`
	CreatedBy    uint           `json:"created_by"`
	Status       string         `gorm:"size:50;not null" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Group *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// Milestone is a deliverable checkpoint with a due date. Status flips from
// Pending to Completed on the first submission, whatever its review outcome.
type Milestone struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"index;not null" json:"project_id"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	Status      string    `gorm:"size:20;default:Pending" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// Submission is one deliverable upload event against a milestone. Version is
// 1 + the number of earlier submissions for the same milestone.
type Submission struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ProjectID      uint       `gorm:"index;not null" json:"project_id"`
	MilestoneID    uint       `gorm:"index;not null" json:"milestone_id"`
	SubmissionType string     `gorm:"size:50;not null" json:"submission_type"`
	Version        int        `gorm:"default:1" json:"version"`
	SubmittedBy    uint       `gorm:"index;not null" json:"submitted_by"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	Status         string     `gorm:"size:20" json:"status"` // On Time, Late
	DaysLate       int        `gorm:"default:0" json:"days_late"`
	Remarks        string     `gorm:"type:text" json:"remarks"`
	ReviewStatus   string     `gorm:"size:20;default:Pending" json:"review_status"`
	ReviewedBy     *uint      `json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`

	Project   *Project     `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Milestone *Milestone   `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
	Files     []FileUpload `gorm:"foreignKey:SubmissionID" json:"files,omitempty"`
}

// FileUpload is immutable once created. StoredName is the uuid-prefixed name
// on disk; FileName is what the uploader called it.
type FileUpload struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FileName     string    `gorm:"size:300;not null" json:"file_name"`
	StoredName   string    `gorm:"size:340;not null" json:"-"`
	FilePath     string    `gorm:"size:600;not null" json:"-"`
	FileType     string    `gorm:"size:150" json:"file_type"`
	FileSize     int64     `json:"file_size"`
	UploadedBy   uint      `gorm:"index;not null" json:"uploaded_by"`
	SubmissionID uint      `gorm:"index;not null" json:"submission_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// ProjectHistory is the append-only audit trail: exactly one row per
// state-changing operation, never updated or deleted.
type ProjectHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  uint      `gorm:"index;not null" json:"project_id"`
	Action     string    `gorm:"size:300;not null" json:"action"`
	ActionDate time.Time `json:"action_date"`
	UserID     uint      `json:"user_id"`
	Status     string    `gorm:"size:20" json:"status"`
	DaysLate   int       `gorm:"default:0" json:"days_late"`
}

func (Project) TableName() string        { return "projects" }
func (Milestone) TableName() string      { return "milestones" }
func (Submission) TableName() string     { return "submissions" }
func (FileUpload) TableName() string     { return "file_uploads" }
func (ProjectHistory) TableName() string { return "project_histories" }
