package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"jobboard/pkg/domain"
)

// MemoryStore keeps records in-process. It backs tests and single-instance
// development runs without Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	email     map[string]string // email -> user ID
	companies map[string]domain.Company
	jobs      map[string]domain.Job
	apps      map[string]domain.Application
	applied   map[string]string   // job ID + applicant ID -> application ID
	saved     map[string][]string // user ID -> job IDs, oldest first
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]domain.User),
		email:     make(map[string]string),
		companies: make(map[string]domain.Company),
		jobs:      make(map[string]domain.Job),
		apps:      make(map[string]domain.Application),
		applied:   make(map[string]string),
		saved:     make(map[string][]string),
	}
}

func appliedKey(jobID, applicantID string) string {
	return jobID + "\x00" + applicantID
}

// RegisterUser adds a user, making it admin when the store has no users.
func (m *MemoryStore) RegisterUser(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.users) == 0 {
		u.Role = domain.RoleAdmin
	}
	if _, ok := m.email[u.Email]; ok {
		return domain.User{}, ErrAlreadyExists
	}
	if _, ok := m.users[u.ID]; ok {
		return domain.User{}, ErrAlreadyExists
	}
	stored := u
	stored.SavedJobs = nil
	m.users[u.ID] = stored
	m.email[u.Email] = u.ID
	return u, nil
}

// UpdateUser replaces a user record.
func (m *MemoryStore) UpdateUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := m.email[u.Email]; taken && owner != u.ID {
		return ErrAlreadyExists
	}
	delete(m.email, cur.Email)
	u.SavedJobs = nil
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// GetUserByID returns a user with saved job ids.
func (m *MemoryStore) GetUserByID(_ context.Context, id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, false, nil
	}
	return m.withSaved(u), true, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	return m.withSaved(m.users[id]), true, nil
}

func (m *MemoryStore) withSaved(u domain.User) domain.User {
	u.SavedJobs = slices.Clone(m.saved[u.ID])
	if u.SavedJobs == nil {
		u.SavedJobs = []string{}
	}
	return u
}

// ListUsers returns all users ordered by creation time.
func (m *MemoryStore) ListUsers(_ context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		u.SavedJobs = []string{}
		res = append(res, u)
	}
	slices.SortFunc(res, func(a, b domain.User) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return res, nil
}

// SaveJob bookmarks a job; saving twice is a no-op.
func (m *MemoryStore) SaveJob(_ context.Context, userID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.saved[userID], jobID) {
		return nil
	}
	m.saved[userID] = append(m.saved[userID], jobID)
	return nil
}

// UnsaveJob removes a bookmark.
func (m *MemoryStore) UnsaveJob(_ context.Context, userID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[userID] = slices.DeleteFunc(m.saved[userID], func(id string) bool { return id == jobID })
	return nil
}

// ListSavedJobIDs returns bookmarked job ids, oldest first.
func (m *MemoryStore) ListSavedJobIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := slices.Clone(m.saved[userID])
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// CreateCompany stores the company and the updated owner under one lock.
func (m *MemoryStore) CreateCompany(_ context.Context, c domain.Company, owner domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[c.ID]; ok {
		return ErrAlreadyExists
	}
	cur, ok := m.users[owner.ID]
	if !ok {
		return ErrNotFound
	}
	c.Employees, c.Jobs = nil, nil
	m.companies[c.ID] = c
	cur.CompanyID = c.ID
	cur.Role = owner.Role
	cur.UpdatedAt = owner.UpdatedAt
	m.users[cur.ID] = cur
	return nil
}

// UpdateCompany replaces a company record.
func (m *MemoryStore) UpdateCompany(_ context.Context, c domain.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.companies[c.ID]
	if !ok {
		return ErrNotFound
	}
	c.CreatedBy = cur.CreatedBy
	c.CreatedAt = cur.CreatedAt
	c.Employees, c.Jobs = nil, nil
	m.companies[c.ID] = c
	return nil
}

// GetCompany returns a company with its employee and job ids.
func (m *MemoryStore) GetCompany(_ context.Context, id string) (domain.Company, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[id]
	if !ok {
		return domain.Company{}, false, nil
	}
	return m.withCompanyRefs(c), true, nil
}

// ListCompanies returns companies ordered by name, optionally filtered by status.
func (m *MemoryStore) ListCompanies(_ context.Context, status domain.CompanyStatus) ([]domain.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Company, 0, len(m.companies))
	for _, c := range m.companies {
		if status != "" && c.Status != status {
			continue
		}
		res = append(res, m.withCompanyRefs(c))
	}
	slices.SortFunc(res, func(a, b domain.Company) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return res, nil
}

func (m *MemoryStore) withCompanyRefs(c domain.Company) domain.Company {
	employees := make([]domain.User, 0)
	for _, u := range m.users {
		if u.CompanyID == c.ID {
			employees = append(employees, u)
		}
	}
	slices.SortFunc(employees, func(a, b domain.User) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	c.Employees = make([]string, 0, len(employees))
	for _, u := range employees {
		c.Employees = append(c.Employees, u.ID)
	}

	jobs := make([]domain.Job, 0)
	for _, j := range m.jobs {
		if j.CompanyID == c.ID {
			jobs = append(jobs, j)
		}
	}
	slices.SortFunc(jobs, func(a, b domain.Job) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	c.Jobs = make([]string, 0, len(jobs))
	for _, j := range jobs {
		c.Jobs = append(c.Jobs, j.ID)
	}
	return c
}

// DeleteCompany removes the company, detaches its employees and removes its
// jobs with their applications and bookmarks.
func (m *MemoryStore) DeleteCompany(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[id]; !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	for uid, u := range m.users {
		if u.CompanyID == id {
			u.CompanyID = ""
			u.UpdatedAt = now
			m.users[uid] = u
		}
	}
	for jid, j := range m.jobs {
		if j.CompanyID == id {
			m.deleteJobLocked(jid)
		}
	}
	delete(m.companies, id)
	return nil
}

// CreateJob stores a job.
func (m *MemoryStore) CreateJob(_ context.Context, j domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; ok {
		return ErrAlreadyExists
	}
	m.jobs[j.ID] = cloneJob(j)
	return nil
}

// UpdateJob replaces a job record.
func (m *MemoryStore) UpdateJob(_ context.Context, j domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.jobs[j.ID]
	if !ok {
		return ErrNotFound
	}
	j.PostedBy = cur.PostedBy
	j.CreatedAt = cur.CreatedAt
	m.jobs[j.ID] = cloneJob(j)
	return nil
}

// GetJob returns a job with its company summary and application count.
func (m *MemoryStore) GetJob(_ context.Context, id string) (domain.Job, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.Job{}, false, nil
	}
	return m.withJobRefs(j), true, nil
}

// ListJobs returns one page of jobs matching the filter.
func (m *MemoryStore) ListJobs(_ context.Context, f domain.JobFilter) ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := m.matchJobs(f)
	sortJobs(matched, f.Sort)
	start := min(max(f.Offset, 0), len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	page := matched[start:end]
	res := make([]domain.Job, 0, len(page))
	for _, j := range page {
		res = append(res, m.withJobRefs(j))
	}
	return res, nil
}

// CountJobs counts all jobs matching the filter, ignoring offset and limit.
func (m *MemoryStore) CountJobs(_ context.Context, f domain.JobFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matchJobs(f)), nil
}

// ListJobsByIDs returns the jobs that exist among ids, in the order given.
func (m *MemoryStore) ListJobsByIDs(_ context.Context, ids []string) ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := m.jobs[id]; ok {
			res = append(res, m.withJobRefs(j))
		}
	}
	return res, nil
}

func (m *MemoryStore) matchJobs(f domain.JobFilter) []domain.Job {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	location := strings.ToLower(strings.TrimSpace(f.Location))
	res := make([]domain.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if search != "" &&
			!strings.Contains(strings.ToLower(j.Title), search) &&
			!strings.Contains(strings.ToLower(j.Description), search) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(j.Location), location) {
			continue
		}
		if f.Type != "" && j.Type != f.Type {
			continue
		}
		if f.CompanyID != "" && j.CompanyID != f.CompanyID {
			continue
		}
		if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(tag string) bool { return slices.Contains(j.Tags, tag) }) {
			continue
		}
		res = append(res, j)
	}
	return res
}

func sortJobs(jobs []domain.Job, sort domain.JobSort) {
	newest := func(a, b domain.Job) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	}
	switch sort {
	case domain.SortLatest:
		slices.SortFunc(jobs, newest)
	case domain.SortOldest:
		slices.SortFunc(jobs, func(a, b domain.Job) int {
			return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
		})
	default:
		slices.SortFunc(jobs, func(a, b domain.Job) int {
			if a.Featured != b.Featured {
				if a.Featured {
					return -1
				}
				return 1
			}
			return newest(a, b)
		})
	}
}

func (m *MemoryStore) withJobRefs(j domain.Job) domain.Job {
	j = cloneJob(j)
	if c, ok := m.companies[j.CompanyID]; ok {
		j.Company = &domain.CompanySummary{ID: c.ID, Name: c.Name, Location: c.Location, Logo: c.Logo, Status: c.Status}
	}
	count := 0
	for _, a := range m.apps {
		if a.JobID == j.ID {
			count++
		}
	}
	j.ApplicationCount = count
	return j
}

func cloneJob(j domain.Job) domain.Job {
	j.Requirements = slices.Clone(j.Requirements)
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	j.Tags = slices.Clone(j.Tags)
	if j.Tags == nil {
		j.Tags = []string{}
	}
	j.Company = nil
	j.ApplicationCount = 0
	return j
}

// DeleteJob removes a job with its applications and bookmarks.
func (m *MemoryStore) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return ErrNotFound
	}
	m.deleteJobLocked(id)
	return nil
}

func (m *MemoryStore) deleteJobLocked(id string) {
	for aid, a := range m.apps {
		if a.JobID == id {
			delete(m.applied, appliedKey(a.JobID, a.ApplicantID))
			delete(m.apps, aid)
		}
	}
	for uid, ids := range m.saved {
		m.saved[uid] = slices.DeleteFunc(ids, func(jid string) bool { return jid == id })
	}
	delete(m.jobs, id)
}

// CreateApplication stores an application unless the applicant already applied.
func (m *MemoryStore) CreateApplication(_ context.Context, a domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := appliedKey(a.JobID, a.ApplicantID)
	if _, ok := m.applied[key]; ok {
		return ErrAlreadyExists
	}
	if _, ok := m.apps[a.ID]; ok {
		return ErrAlreadyExists
	}
	m.apps[a.ID] = cloneApplication(a)
	m.applied[key] = a.ID
	return nil
}

// UpdateApplication writes status, notes and history.
func (m *MemoryStore) UpdateApplication(_ context.Context, a domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.apps[a.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Status = a.Status
	cur.Notes = a.Notes
	cur.History = slices.Clone(a.History)
	cur.UpdatedAt = a.UpdatedAt
	m.apps[a.ID] = cur
	return nil
}

// GetApplication retrieves an application.
func (m *MemoryStore) GetApplication(_ context.Context, id string) (domain.Application, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.apps[id]
	if !ok {
		return domain.Application{}, false, nil
	}
	return cloneApplication(a), true, nil
}

// ListApplicationsByApplicant returns an applicant's applications, newest first.
func (m *MemoryStore) ListApplicationsByApplicant(_ context.Context, applicantID string) ([]domain.Application, error) {
	return m.listApplications(func(a domain.Application) bool { return a.ApplicantID == applicantID }), nil
}

// ListApplicationsByJob returns a job's applications, newest first.
func (m *MemoryStore) ListApplicationsByJob(_ context.Context, jobID string) ([]domain.Application, error) {
	return m.listApplications(func(a domain.Application) bool { return a.JobID == jobID }), nil
}

func (m *MemoryStore) listApplications(keep func(domain.Application) bool) []domain.Application {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Application, 0)
	for _, a := range m.apps {
		if keep(a) {
			res = append(res, cloneApplication(a))
		}
	}
	slices.SortFunc(res, func(a, b domain.Application) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return res
}

func cloneApplication(a domain.Application) domain.Application {
	a.History = slices.Clone(a.History)
	if a.History == nil {
		a.History = []domain.StatusChange{}
	}
	a.Job = nil
	return a
}
