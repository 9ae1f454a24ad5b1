package domain

import "time"

type UserRole string

const (
	RoleUser     UserRole = "user"
	RoleEmployer UserRole = "employer"
	RoleAdmin    UserRole = "admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

type CompanyStatus string

const (
	CompanyPending  CompanyStatus = "Pending"
	CompanyVerified CompanyStatus = "Verified"
	CompanyRejected CompanyStatus = "Rejected"
)

func (s CompanyStatus) Valid() bool {
	switch s {
	case CompanyPending, CompanyVerified, CompanyRejected:
		return true
	}
	return false
}

type JobType string

const (
	JobFullTime   JobType = "Full-time"
	JobPartTime   JobType = "Part-time"
	JobContract   JobType = "Contract"
	JobInternship JobType = "Internship"
	JobRemote     JobType = "Remote"
)

func (t JobType) Valid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobContract, JobInternship, JobRemote:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "Pending"
	ApplicationReviewing   ApplicationStatus = "Reviewing"
	ApplicationShortlisted ApplicationStatus = "Shortlisted"
	ApplicationRejected    ApplicationStatus = "Rejected"
	ApplicationInterview   ApplicationStatus = "Interview"
	ApplicationHired       ApplicationStatus = "Hired"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewing, ApplicationShortlisted,
		ApplicationRejected, ApplicationInterview, ApplicationHired:
		return true
	}
	return false
}

// JobSort selects the ordering of job listings.
type JobSort string

const (
	SortFeatured JobSort = ""
	SortLatest   JobSort = "latest"
	SortOldest   JobSort = "oldest"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         UserRole  `json:"role"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CompanyID    string    `json:"company,omitempty"`
	SavedJobs    []string  `json:"savedJobs"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Company struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description,omitempty"`
	Website     string        `json:"website,omitempty"`
	Location    string        `json:"location,omitempty"`
	Logo        string        `json:"logo,omitempty"`
	Status      CompanyStatus `json:"status"`
	CreatedBy   string        `json:"createdBy"`
	Employees   []string      `json:"employees"`
	Jobs        []string      `json:"jobs"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// CompanySummary is the compact company view embedded in job responses.
type CompanySummary struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Location string        `json:"location,omitempty"`
	Logo     string        `json:"logo,omitempty"`
	Status   CompanyStatus `json:"status"`
}

type Job struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	CompanyID        string          `json:"companyId"`
	Company          *CompanySummary `json:"company,omitempty"`
	Location         string          `json:"location"`
	Description      string          `json:"description"`
	Excerpt          string          `json:"excerpt,omitempty"`
	Requirements     []string        `json:"requirements"`
	Salary           string          `json:"salary,omitempty"`
	Tags             []string        `json:"tags"`
	Type             JobType         `json:"type"`
	Featured         bool            `json:"featured"`
	PostedBy         string          `json:"postedBy"`
	ApplicationCount int             `json:"applicationCount"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// JobSummary is the compact job view embedded in application listings.
type JobSummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	CompanyID string  `json:"companyId"`
	Location  string  `json:"location"`
	Type      JobType `json:"type"`
	PostedBy  string  `json:"postedBy"`
}

// JobFilter is the store-level query for job listings. Offset and Limit are
// already resolved from page parameters.
type JobFilter struct {
	Search    string
	Location  string
	Type      JobType
	CompanyID string
	Tags      []string
	Sort      JobSort
	Offset    int
	Limit     int
}

type StatusChange struct {
	Status    ApplicationStatus `json:"status"`
	ChangedBy string            `json:"changedBy"`
	ChangedAt time.Time         `json:"changedAt"`
}

type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	Job         *JobSummary       `json:"job,omitempty"`
	ApplicantID string            `json:"applicantId"`
	Resume      string            `json:"resume,omitempty"`
	CoverLetter string            `json:"coverLetter,omitempty"`
	Status      ApplicationStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	History     []StatusChange    `json:"history"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// JobPage is a page of job listings with pagination metadata.
type JobPage struct {
	Jobs        []Job `json:"jobs"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalJobs   int   `json:"totalJobs"`
}
