package store

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	FirstName    string    `gorm:"not null"`
	LastName     string    `gorm:"not null"`
	Role         string    `gorm:"not null"`
	ProfileImage string    `gorm:"size:1024"`
	CompanyID    *string   `gorm:"index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type CompanyModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null;index"`
	Slug        string `gorm:"index"`
	Description string `gorm:"type:text"`
	Website     string
	Location    string
	Logo        string
	Status      string    `gorm:"not null;index"`
	CreatedBy   string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type JobModel struct {
	ID           string         `gorm:"primaryKey"`
	Title        string         `gorm:"not null"`
	CompanyID    string         `gorm:"not null;index"`
	Location     string         `gorm:"not null"`
	Description  string         `gorm:"type:text;not null"`
	Requirements pq.StringArray `gorm:"type:text[]"`
	Salary       string
	Tags         pq.StringArray `gorm:"type:text[]"`
	Type         string         `gorm:"not null;index"`
	Featured     bool           `gorm:"not null;default:false"`
	PostedBy     string         `gorm:"not null;index"`
	CreatedAt    time.Time      `gorm:"not null;index"`
	UpdatedAt    time.Time      `gorm:"not null"`
}

// ApplicationModel carries a compound unique index on (job_id, applicant_id)
// so duplicate submissions are rejected by the database.
type ApplicationModel struct {
	ID          string         `gorm:"primaryKey"`
	JobID       string         `gorm:"not null;uniqueIndex:idx_applications_job_applicant"`
	ApplicantID string         `gorm:"not null;uniqueIndex:idx_applications_job_applicant;index"`
	Resume      string         `gorm:"size:1024"`
	CoverLetter string         `gorm:"type:text"`
	Status      string         `gorm:"not null"`
	Notes       string         `gorm:"type:text"`
	History     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"not null;index"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

type SavedJobModel struct {
	UserID    string    `gorm:"primaryKey"`
	JobID     string    `gorm:"primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}
