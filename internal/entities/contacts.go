package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
	UserRoleViewer UserRole = "viewer"
)

// Priority bounds for contacts. 1 is the most urgent.
const (
	PriorityMin = 1
	PriorityMax = 5
)

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string   `gorm:"size:100" json:"-"`
	Role         UserRole `gorm:"size:20;default:'editor'" json:"role"`

	// SHA-256 hash of the API token; the plaintext is shown to the user once.
	APITokenHash string `gorm:"index;size:64" json:"-"`

	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Contact is an investor-relations record owned by exactly one user.
// Name is the only required field; everything else is optional because
// contacts routinely arrive from loosely-structured spreadsheets.
type Contact struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index" json:"user_id"`
	Name        string `gorm:"index;size:256" json:"name"`
	Email       string `gorm:"size:255" json:"email,omitempty"`
	Phone       string `gorm:"size:64" json:"phone,omitempty"`
	Location    string `gorm:"size:256" json:"location,omitempty"`
	Institution string `gorm:"index;size:256" json:"institution,omitempty"`
	Details     string `gorm:"type:text" json:"details,omitempty"`

	// Calendar date only; the time component is always midnight UTC.
	LastInteractionDate *time.Time `json:"last_interaction_date,omitempty"`

	// 1-5 inclusive or nil. Out-of-range values are never stored.
	Priority *int `json:"priority,omitempty"`

	User        User         `gorm:"foreignKey:UserID" json:"-"`
	Attachments []Attachment `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Attachment is the metadata row for one binary file belonging to a contact.
// The binary itself lives in the blob store under StoragePath; the two must
// be created and destroyed together.
type Attachment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ContactID uint   `gorm:"index" json:"contact_id"`
	UserID    uint   `gorm:"index" json:"user_id"`
	FileName  string `gorm:"size:512" json:"file_name"`

	// Opaque locator in the blob store, unique per upload.
	StoragePath string `gorm:"uniqueIndex;size:512" json:"storage_path"`

	MimeType  string `gorm:"size:128" json:"mime_type,omitempty"`
	SizeBytes int64  `json:"size_bytes"`

	Contact Contact `gorm:"foreignKey:ContactID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type JobType string

const (
	JobTypeImport JobType = "import"
	JobTypeExport JobType = "export"
)

type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobProgress is the pollable progress record for one pipeline run.
// One row per (user, job type); each run overwrites the previous one.
type JobProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index:idx_job_user_type,unique" json:"user_id"`
	JobType     JobType    `gorm:"size:20;index:idx_job_user_type,unique" json:"job_type"`
	Status      JobStatus  `gorm:"size:20" json:"status"`
	Message     string     `gorm:"size:512" json:"message,omitempty"`
	Percent     int        `json:"percent"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (Contact) TableName() string {
	return "contacts"
}

func (Attachment) TableName() string {
	return "attachments"
}

func (JobProgress) TableName() string {
	return "job_progress"
}
