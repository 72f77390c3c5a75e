package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	GroupActive   = "Active"
	GroupInactive = "Inactive"

	// MaxGroupsPerSupervisor caps how many groups one supervisor may own.
	MaxGroupsPerSupervisor = 3
)

const MembershipActive = "Active"

// Group is a supervisor-led cohort of students sharing a project context.
type Group struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:200;not null" json:"name"`
	SupervisorID uint           `gorm:"index;not null" json:"supervisor_id"`
	Status       string         `gorm:"size:20;default:Active" json:"status"` // Active, Inactive
	Description  string         `gorm:"type:text" json:"description"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Supervisor *User `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
}

// StudentGroup records group membership. The unique index on StudentID is
// the source of truth for the one-group-per-student invariant; the
// application check merely produces a friendlier error.
type StudentGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"index;not null" json:"group_id"`
	StudentID uint      `gorm:"uniqueIndex;not null" json:"student_id"`
	Status    string    `gorm:"size:20;default:Active" json:"status"`
	JoinedAt  time.Time `json:"joined_at"`

	Group   *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Student *User  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (Group) TableName() string        { return "groups" }
func (StudentGroup) TableName() string { return "student_groups" }
