package app

import (
	"context"
	"errors"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"jobboard/internal/policy"
	"jobboard/internal/util"
	"jobboard/pkg/domain"
	"jobboard/pkg/events"
	"jobboard/pkg/store"
	"jobboard/pkg/textutil"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// JobQuery is a job listing request. Page and Limit are 1-based and
// default when zero.
type JobQuery struct {
	Search    string
	Location  string
	Type      string
	CompanyID string
	Tags      []string
	Sort      string
	Page      int
	Limit     int
}

// JobInput is the body of a job posting.
type JobInput struct {
	Title        string
	CompanyID    string
	Location     string
	Description  string
	Requirements []string
	Salary       string
	Tags         []string
	Type         domain.JobType
	Featured     bool
}

// JobUpdate carries the optional fields of a job edit.
type JobUpdate struct {
	Title        *string
	Location     *string
	Description  *string
	Requirements *[]string
	Salary       *string
	Tags         *[]string
	Type         *domain.JobType
	Featured     *bool
}

// ListJobs returns one page of jobs. The page and the total are loaded
// concurrently.
func (a *App) ListJobs(ctx context.Context, q JobQuery) (domain.JobPage, error) {
	filter, page, err := jobFilter(q)
	if err != nil {
		return domain.JobPage{}, err
	}
	var (
		jobs  []domain.Job
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = a.store.ListJobs(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = a.store.CountJobs(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.JobPage{}, wrap("list jobs", err)
	}
	for i := range jobs {
		jobs[i] = a.withExcerpt(jobs[i])
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	return domain.JobPage{
		Jobs:        jobs,
		CurrentPage: page,
		TotalPages:  (total + filter.Limit - 1) / filter.Limit,
		TotalJobs:   total,
	}, nil
}

func jobFilter(q JobQuery) (domain.JobFilter, int, error) {
	page, limit := q.Page, q.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if page < 1 {
		return domain.JobFilter{}, 0, invalidInput("page must be a positive integer")
	}
	if limit < 1 {
		return domain.JobFilter{}, 0, invalidInput("limit must be a positive integer")
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page-1 > math.MaxInt/limit {
		return domain.JobFilter{}, 0, invalidInput("page is too large")
	}
	jobType := domain.JobType(strings.TrimSpace(q.Type))
	if jobType != "" && !jobType.Valid() {
		return domain.JobFilter{}, 0, invalidInput("unknown job type")
	}
	var sort domain.JobSort
	switch domain.JobSort(strings.ToLower(strings.TrimSpace(q.Sort))) {
	case domain.SortLatest:
		sort = domain.SortLatest
	case domain.SortOldest:
		sort = domain.SortOldest
	default:
		sort = domain.SortFeatured
	}
	return domain.JobFilter{
		Search:    strings.TrimSpace(q.Search),
		Location:  strings.TrimSpace(q.Location),
		Type:      jobType,
		CompanyID: strings.TrimSpace(q.CompanyID),
		Tags:      normalizeTags(q.Tags),
		Sort:      sort,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	}, page, nil
}

// GetJob returns a job with its company summary and application count.
func (a *App) GetJob(ctx context.Context, id string) (domain.Job, error) {
	job, ok, err := a.store.GetJob(ctx, id)
	if err != nil {
		return domain.Job{}, wrap("load job", err)
	}
	if !ok {
		return domain.Job{}, ErrJobNotFound
	}
	return a.withExcerpt(job), nil
}

// CreateJob posts a job. Employers may only post for a company they belong to.
func (a *App) CreateJob(ctx context.Context, actor domain.User, in JobInput) (domain.Job, error) {
	subject := policy.SubjectOf(actor)
	if err := policy.RequireRole(subject, domain.RoleEmployer, domain.RoleAdmin); err != nil {
		return domain.Job{}, err
	}
	if err := checkJobInput(in); err != nil {
		return domain.Job{}, err
	}
	company, ok, err := a.store.GetCompany(ctx, strings.TrimSpace(in.CompanyID))
	if err != nil {
		return domain.Job{}, wrap("load company", err)
	}
	if !ok {
		return domain.Job{}, ErrCompanyNotFound
	}
	if err := policy.RequireOwner(subject, company.Employees...); err != nil {
		return domain.Job{}, err
	}
	now := a.now()
	job := domain.Job{
		ID:           util.NewID(),
		Title:        strings.TrimSpace(in.Title),
		CompanyID:    company.ID,
		Location:     strings.TrimSpace(in.Location),
		Description:  in.Description,
		Requirements: cleanList(in.Requirements),
		Salary:       strings.TrimSpace(in.Salary),
		Tags:         normalizeTags(in.Tags),
		Type:         in.Type,
		Featured:     in.Featured,
		PostedBy:     actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateJob(ctx, job); err != nil {
		return domain.Job{}, wrap("create job", err)
	}
	a.publish(ctx, events.JobCreated, map[string]any{
		"jobId":     job.ID,
		"companyId": job.CompanyID,
		"postedBy":  job.PostedBy,
		"title":     job.Title,
	})
	return a.GetJob(ctx, job.ID)
}

func checkJobInput(in JobInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return invalidInput("title is required")
	case strings.TrimSpace(in.CompanyID) == "":
		return invalidInput("companyId is required")
	case strings.TrimSpace(in.Location) == "":
		return invalidInput("location is required")
	case strings.TrimSpace(in.Description) == "":
		return invalidInput("description is required")
	case !in.Type.Valid():
		return invalidInput("unknown job type")
	}
	return nil
}

// UpdateJob edits a job. Only the poster or an admin may edit.
func (a *App) UpdateJob(ctx context.Context, actor domain.User, id string, in JobUpdate) (domain.Job, error) {
	job, err := a.GetJob(ctx, id)
	if err != nil {
		return domain.Job{}, err
	}
	if err := policy.RequireOwner(policy.SubjectOf(actor), job.PostedBy); err != nil {
		return domain.Job{}, err
	}
	if in.Title != nil {
		job.Title = strings.TrimSpace(*in.Title)
	}
	if in.Location != nil {
		job.Location = strings.TrimSpace(*in.Location)
	}
	if in.Description != nil {
		job.Description = *in.Description
	}
	if in.Requirements != nil {
		job.Requirements = cleanList(*in.Requirements)
	}
	if in.Salary != nil {
		job.Salary = strings.TrimSpace(*in.Salary)
	}
	if in.Tags != nil {
		job.Tags = normalizeTags(*in.Tags)
	}
	if in.Type != nil {
		job.Type = *in.Type
	}
	if in.Featured != nil {
		job.Featured = *in.Featured
	}
	if err := checkJobInput(JobInput{
		Title:       job.Title,
		CompanyID:   job.CompanyID,
		Location:    job.Location,
		Description: job.Description,
		Type:        job.Type,
	}); err != nil {
		return domain.Job{}, err
	}
	job.UpdatedAt = a.now()
	if err := a.store.UpdateJob(ctx, job); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Job{}, ErrJobNotFound
		}
		return domain.Job{}, wrap("update job", err)
	}
	return a.GetJob(ctx, id)
}

// DeleteJob removes a job together with its applications and bookmarks.
func (a *App) DeleteJob(ctx context.Context, actor domain.User, id string) error {
	job, err := a.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.RequireOwner(policy.SubjectOf(actor), job.PostedBy); err != nil {
		return err
	}
	resumes, err := a.storedResumes(ctx, job.ID)
	if err != nil {
		return err
	}
	if err := a.store.DeleteJob(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrJobNotFound
		}
		return wrap("delete job", err)
	}
	a.removeOrphanResumes(ctx, resumes)
	a.publish(ctx, events.JobDeleted, map[string]any{
		"jobId":     job.ID,
		"companyId": job.CompanyID,
		"deletedBy": actor.ID,
	})
	return nil
}

// SaveJob bookmarks a job and returns the caller's saved job ids.
func (a *App) SaveJob(ctx context.Context, actor domain.User, jobID string) ([]string, error) {
	if _, err := a.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	if err := a.store.SaveJob(ctx, actor.ID, jobID); err != nil {
		return nil, wrap("save job", err)
	}
	return a.savedIDs(ctx, actor.ID)
}

// UnsaveJob removes a bookmark and returns the caller's saved job ids.
func (a *App) UnsaveJob(ctx context.Context, actor domain.User, jobID string) ([]string, error) {
	if _, err := a.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	if err := a.store.UnsaveJob(ctx, actor.ID, jobID); err != nil {
		return nil, wrap("unsave job", err)
	}
	return a.savedIDs(ctx, actor.ID)
}

func (a *App) savedIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := a.store.ListSavedJobIDs(ctx, userID)
	if err != nil {
		return nil, wrap("list saved jobs", err)
	}
	return ids, nil
}

func (a *App) withExcerpt(j domain.Job) domain.Job {
	j.Excerpt = textutil.Excerpt(j.Description, a.excerptRunes)
	return j
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
