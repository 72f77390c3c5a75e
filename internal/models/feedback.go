package models

import "time"

// Feedback is an append-only message thread between a student and their
// supervisor, scoped to a project.
type Feedback struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  uint      `gorm:"index;not null" json:"project_id"`
	SenderID   uint      `gorm:"index;not null" json:"sender_id"`
	ReceiverID uint      `gorm:"index;not null" json:"receiver_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	FilePath   string    `gorm:"size:600" json:"file_path"`
	SentAt     time.Time `json:"sent_at"`
}

// Notification kinds written by the delivery worker.
const (
	NotifyProposalReviewed   = "proposal_reviewed"
	NotifySubmissionReceived = "submission_received"
	NotifySubmissionReviewed = "submission_reviewed"
	NotifyGroupMembership    = "group_membership"
	NotifyMilestoneDue       = "milestone_due"
	NotifyFeedback           = "feedback_received"
)

// Notification is an in-app inbox entry, persisted by the task queue worker.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Kind      string     `gorm:"size:50;index" json:"kind"`
	Title     string     `gorm:"size:300" json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	ProjectID *uint      `json:"project_id"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (Feedback) TableName() string     { return "feedback" }
func (Notification) TableName() string { return "notifications" }
