package app

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"jobboard/internal/policy"
	"jobboard/internal/util"
	"jobboard/pkg/domain"
	"jobboard/pkg/events"
	"jobboard/pkg/storage"
	"jobboard/pkg/store"
)

// ApplicationInput is the body of a job application.
type ApplicationInput struct {
	JobID       string
	Resume      string
	CoverLetter string
}

// ApplicationUpdate carries the reviewer-editable fields.
type ApplicationUpdate struct {
	Status *domain.ApplicationStatus
	Notes  *string
}

// SubmitApplication applies the caller to a job. A second application to the
// same job is rejected with ErrAlreadyApplied.
func (a *App) SubmitApplication(ctx context.Context, actor domain.User, in ApplicationInput) (domain.Application, error) {
	job, err := a.GetJob(ctx, strings.TrimSpace(in.JobID))
	if err != nil {
		return domain.Application{}, err
	}
	resume, err := checkResumeRef(actor.ID, in.Resume)
	if err != nil {
		return domain.Application{}, err
	}
	now := a.now()
	app := domain.Application{
		ID:          util.NewID(),
		JobID:       job.ID,
		ApplicantID: actor.ID,
		Resume:      resume,
		CoverLetter: strings.TrimSpace(in.CoverLetter),
		Status:      domain.ApplicationPending,
		History: []domain.StatusChange{{
			Status:    domain.ApplicationPending,
			ChangedBy: actor.ID,
			ChangedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Application{}, ErrAlreadyApplied
		}
		return domain.Application{}, wrap("create application", err)
	}
	a.publish(ctx, events.ApplicationSubmitted, map[string]any{
		"applicationId": app.ID,
		"jobId":         job.ID,
		"applicantId":   actor.ID,
		"employerId":    job.PostedBy,
	})
	app.Job = jobSummary(job)
	return app, nil
}

// checkResumeRef accepts an external http(s) URL or a key the caller uploaded.
func checkResumeRef(userID, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if isExternalURL(ref) {
		return ref, nil
	}
	key, err := storage.CleanKey(ref)
	if err != nil || !strings.HasPrefix(key, resumePrefix(userID)) {
		return "", invalidInput("resume must be an http(s) URL or one of your uploaded files")
	}
	return key, nil
}

func isExternalURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// MyApplications lists the caller's applications, newest first.
func (a *App) MyApplications(ctx context.Context, actor domain.User) ([]domain.Application, error) {
	apps, err := a.store.ListApplicationsByApplicant(ctx, actor.ID)
	if err != nil {
		return nil, wrap("list applications", err)
	}
	return a.attachJobSummaries(ctx, apps)
}

// JobApplications lists the applications to a job. Only the poster or an
// admin may see them.
func (a *App) JobApplications(ctx context.Context, actor domain.User, jobID string) ([]domain.Application, error) {
	job, err := a.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwner(policy.SubjectOf(actor), job.PostedBy); err != nil {
		return nil, err
	}
	apps, err := a.store.ListApplicationsByJob(ctx, job.ID)
	if err != nil {
		return nil, wrap("list applications", err)
	}
	summary := jobSummary(job)
	for i := range apps {
		apps[i].Job = summary
	}
	return apps, nil
}

// GetApplication returns one application to its applicant, the job poster
// or an admin.
func (a *App) GetApplication(ctx context.Context, actor domain.User, id string) (domain.Application, error) {
	app, job, err := a.loadApplication(ctx, id)
	if err != nil {
		return domain.Application{}, err
	}
	if err := policy.RequireOwner(policy.SubjectOf(actor), app.ApplicantID, job.PostedBy); err != nil {
		return domain.Application{}, err
	}
	app.Job = jobSummary(job)
	return app, nil
}

// UpdateApplication changes status and notes. Only the job poster or an admin
// may review; every status change is appended to the history.
func (a *App) UpdateApplication(ctx context.Context, actor domain.User, id string, in ApplicationUpdate) (domain.Application, error) {
	app, job, err := a.loadApplication(ctx, id)
	if err != nil {
		return domain.Application{}, err
	}
	if err := policy.RequireOwner(policy.SubjectOf(actor), job.PostedBy); err != nil {
		return domain.Application{}, err
	}
	if in.Status == nil && in.Notes == nil {
		return domain.Application{}, invalidInput("status or notes is required")
	}
	now := a.now()
	previous := app.Status
	if in.Status != nil {
		if !in.Status.Valid() {
			return domain.Application{}, invalidInput("unknown application status")
		}
		if *in.Status != app.Status {
			app.Status = *in.Status
			app.History = append(app.History, domain.StatusChange{
				Status:    app.Status,
				ChangedBy: actor.ID,
				ChangedAt: now,
			})
		}
	}
	if in.Notes != nil {
		app.Notes = strings.TrimSpace(*in.Notes)
	}
	app.UpdatedAt = now
	if err := a.store.UpdateApplication(ctx, app); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Application{}, ErrApplicationNotFound
		}
		return domain.Application{}, wrap("update application", err)
	}
	if app.Status != previous {
		a.publish(ctx, events.ApplicationStatusChanged, map[string]any{
			"applicationId": app.ID,
			"jobId":         app.JobID,
			"applicantId":   app.ApplicantID,
			"from":          string(previous),
			"to":            string(app.Status),
			"changedBy":     actor.ID,
		})
	}
	app.Job = jobSummary(job)
	return app, nil
}

// ResumeURL returns a download link for an application's resume: a
// short-lived signed URL for uploaded files, or the external URL as stored.
func (a *App) ResumeURL(ctx context.Context, actor domain.User, applicationID string) (string, error) {
	app, err := a.GetApplication(ctx, actor, applicationID)
	if err != nil {
		return "", err
	}
	if app.Resume == "" {
		return "", ErrResumeNotFound
	}
	if isExternalURL(app.Resume) {
		return app.Resume, nil
	}
	if a.objects == nil {
		return "", ErrResumeNotFound
	}
	link, err := a.objects.PresignGet(ctx, app.Resume, resumeURLExpiry)
	if err != nil {
		return "", wrap("sign resume url", err)
	}
	return link, nil
}

func (a *App) loadApplication(ctx context.Context, id string) (domain.Application, domain.Job, error) {
	app, ok, err := a.store.GetApplication(ctx, id)
	if err != nil {
		return domain.Application{}, domain.Job{}, wrap("load application", err)
	}
	if !ok {
		return domain.Application{}, domain.Job{}, ErrApplicationNotFound
	}
	job, ok, err := a.store.GetJob(ctx, app.JobID)
	if err != nil {
		return domain.Application{}, domain.Job{}, wrap("load job", err)
	}
	if !ok {
		return domain.Application{}, domain.Job{}, ErrApplicationNotFound
	}
	return app, job, nil
}

func (a *App) attachJobSummaries(ctx context.Context, apps []domain.Application) ([]domain.Application, error) {
	if len(apps) == 0 {
		return []domain.Application{}, nil
	}
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.JobID)
	}
	jobs, err := a.store.ListJobsByIDs(ctx, ids)
	if err != nil {
		return nil, wrap("load jobs", err)
	}
	byID := make(map[string]*domain.JobSummary, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = jobSummary(j)
	}
	for i := range apps {
		apps[i].Job = byID[apps[i].JobID]
	}
	return apps, nil
}

func jobSummary(j domain.Job) *domain.JobSummary {
	return &domain.JobSummary{
		ID:        j.ID,
		Title:     j.Title,
		CompanyID: j.CompanyID,
		Location:  j.Location,
		Type:      j.Type,
		PostedBy:  j.PostedBy,
	}
}
