package store

import (
	"context"
	"errors"
	"time"

	"jobboard/pkg/domain"
)

var (
	// ErrNotFound is returned by updates that target a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a uniqueness constraint rejects a write:
	// duplicate user email or a second application for the same job and applicant.
	ErrAlreadyExists = errors.New("record already exists")
)

// Store defines persistence operations for users, companies, jobs and applications.
// Back-references (company employees and jobs, job application counts, saved
// jobs) are computed from the referencing records at read time.
type Store interface {
	// users
	// RegisterUser inserts u, storing it as admin when no other user exists
	// yet. The emptiness check and the insert are atomic; a taken email yields
	// ErrAlreadyExists.
	RegisterUser(ctx context.Context, u domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	// saved jobs
	SaveJob(ctx context.Context, userID, jobID string) error
	UnsaveJob(ctx context.Context, userID, jobID string) error
	ListSavedJobIDs(ctx context.Context, userID string) ([]string, error)

	// companies
	CreateCompany(ctx context.Context, c domain.Company, owner domain.User) error
	UpdateCompany(ctx context.Context, c domain.Company) error
	GetCompany(ctx context.Context, id string) (domain.Company, bool, error)
	ListCompanies(ctx context.Context, status domain.CompanyStatus) ([]domain.Company, error)
	DeleteCompany(ctx context.Context, id string) error

	// jobs
	CreateJob(ctx context.Context, j domain.Job) error
	UpdateJob(ctx context.Context, j domain.Job) error
	GetJob(ctx context.Context, id string) (domain.Job, bool, error)
	ListJobs(ctx context.Context, f domain.JobFilter) ([]domain.Job, error)
	CountJobs(ctx context.Context, f domain.JobFilter) (int, error)
	ListJobsByIDs(ctx context.Context, ids []string) ([]domain.Job, error)
	DeleteJob(ctx context.Context, id string) error

	// applications
	CreateApplication(ctx context.Context, a domain.Application) error
	UpdateApplication(ctx context.Context, a domain.Application) error
	GetApplication(ctx context.Context, id string) (domain.Application, bool, error)
	ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]domain.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID string) ([]domain.Application, error)
}

// Session is the verified content of an access token.
type Session struct {
	UserID string
	Role   domain.UserRole
}

// SessionStore issues and verifies access tokens.
type SessionStore interface {
	NewSession(userID string, role domain.UserRole) (string, error)
	VerifySession(token string) (Session, error)
	DeleteSession(token string) error
}

// UserSessionRevoker revokes every token a user holds, e.g. after a password change.
type UserSessionRevoker interface {
	RevokeUserSessions(userID string, since time.Time) error
}
