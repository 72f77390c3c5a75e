package models

import (
	"time"

	"gorm.io/gorm"
)

// Role IDs are fixed and seeded; the role of a user never changes after
// account creation.
const (
	RoleAdmin      uint = 1
	RoleSupervisor uint = 2
	RoleStudent    uint = 3
)

// User status IDs follow the account lifecycle: accounts are created
// Pending and only Active accounts may log in.
const (
	StatusPending  uint = 1
	StatusRejected uint = 2
	StatusInactive uint = 3
	StatusBlocked  uint = 4
	StatusActive   uint = 5
)

// RoleName maps a role ID to its token-claim name.
func RoleName(id uint) string {
	switch id {
	case RoleAdmin:
		return "admin"
	case RoleSupervisor:
		return "supervisor"
	case RoleStudent:
		return "student"
	}
	return ""
}

// Role is a seeded lookup row.
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
}

// UserStatus is a seeded lookup row.
type UserStatus struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
}

type Department struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:200;not null" json:"name"`
}

// User represents an account in the directory. GroupCount on supervisors is
// denormalized and maintained in the same transaction as every group
// creation or supervisor reassignment.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email         string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  string         `gorm:"size:255" json:"-"` // empty for LDAP accounts
	RoleID        uint           `gorm:"index;not null" json:"role_id"`
	DepartmentID  *uint          `json:"department_id"`
	StatusID      uint           `gorm:"index;not null;default:1" json:"status_id"`
	StudentNumber string         `gorm:"size:50" json:"student_number"` // institutional id, students only
	GroupCount    int            `gorm:"default:0" json:"group_count"`
	AuthType      string         `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	LastLogin     *time.Time     `json:"last_login"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// Profile holds personal details, created lazily on first save.
type Profile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName   string     `gorm:"size:100" json:"first_name"`
	LastName    string     `gorm:"size:100" json:"last_name"`
	ContactInfo string     `gorm:"size:255" json:"contact_info"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	CNIC        string     `gorm:"size:50" json:"cnic"`
	ImagePath   string     `gorm:"size:500" json:"image_path"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RefreshToken stores rotating refresh tokens; only the sha256 hash is kept.
type RefreshToken struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"index;not null" json:"user_id"`
	TokenHash         string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt         time.Time  `json:"expires_at"`
	RevokedAt         *time.Time `json:"revoked_at"`
	ReplacedByTokenID *uint      `json:"replaced_by_token_id"`
	CreatedByIP       string     `gorm:"size:50" json:"created_by_ip"`
	UserAgent         string     `gorm:"size:500" json:"user_agent"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (Role) TableName() string         { return "roles" }
func (UserStatus) TableName() string   { return "user_statuses" }
func (Department) TableName() string   { return "departments" }
func (User) TableName() string         { return "users" }
func (Profile) TableName() string      { return "profiles" }
func (RefreshToken) TableName() string { return "refresh_tokens" }
