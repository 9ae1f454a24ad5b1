package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobboard/pkg/domain"
)

func seedJobs(t *testing.T, s *MemoryStore, companyID string, n int) []domain.Job {
	t.Helper()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	jobs := make([]domain.Job, 0, n)
	for i := 0; i < n; i++ {
		j := domain.Job{
			ID:          fmt.Sprintf("job-%02d", i),
			Title:       fmt.Sprintf("Engineer %d", i),
			CompanyID:   companyID,
			Location:    "Berlin",
			Description: "Build things",
			Type:        domain.JobFullTime,
			PostedBy:    "emp-1",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
			UpdatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.CreateJob(context.Background(), j); err != nil {
			t.Fatalf("create job: %v", err)
		}
		jobs = append(jobs, j)
	}
	return jobs
}

func TestMemoryStoreRejectsDuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.RegisterUser(ctx, domain.User{ID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.RegisterUser(ctx, domain.User{ID: "u2", Email: "a@example.com"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMemoryStoreListJobsPaginatesNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedJobs(t, s, "c1", 12)

	page, err := s.ListJobs(ctx, domain.JobFilter{Sort: domain.SortLatest, Offset: 5, Limit: 5})
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(page) != 5 {
		t.Fatalf("expected 5 jobs, got %d", len(page))
	}
	if page[0].ID != "job-06" || page[4].ID != "job-02" {
		t.Fatalf("unexpected page order: %s..%s", page[0].ID, page[4].ID)
	}
	total, err := s.CountJobs(ctx, domain.JobFilter{Sort: domain.SortLatest, Offset: 5, Limit: 5})
	if err != nil || total != 12 {
		t.Fatalf("expected total 12, got %d err=%v", total, err)
	}
}

func TestMemoryStoreListJobsFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	jobs := seedJobs(t, s, "c1", 3)
	remote := jobs[1]
	remote.Type = domain.JobRemote
	remote.Tags = []string{"go", "k8s"}
	remote.Featured = true
	remote.Description = "100% remote"
	if err := s.UpdateJob(ctx, remote); err != nil {
		t.Fatalf("update job: %v", err)
	}

	cases := []struct {
		name   string
		filter domain.JobFilter
		want   int
	}{
		{"type", domain.JobFilter{Type: domain.JobRemote}, 1},
		{"tags any-of", domain.JobFilter{Tags: []string{"rust", "go"}}, 1},
		{"search case-insensitive", domain.JobFilter{Search: "ENGINEER"}, 3},
		{"search literal percent", domain.JobFilter{Search: "100%"}, 1},
		{"location", domain.JobFilter{Location: "berl"}, 3},
		{"company", domain.JobFilter{CompanyID: "other"}, 0},
	}
	for _, tc := range cases {
		got, err := s.ListJobs(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: list: %v", tc.name, err)
		}
		if len(got) != tc.want {
			t.Fatalf("%s: expected %d jobs, got %d", tc.name, tc.want, len(got))
		}
	}

	featured, err := s.ListJobs(ctx, domain.JobFilter{})
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if featured[0].ID != remote.ID {
		t.Fatalf("featured job should sort first, got %s", featured[0].ID)
	}
}

func TestMemoryStoreApplicationUniqueUnderConcurrency(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedJobs(t, s, "c1", 1)

	var wg sync.WaitGroup
	var ok, dup atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.CreateApplication(ctx, domain.Application{
				ID:          fmt.Sprintf("app-%d", i),
				JobID:       "job-00",
				ApplicantID: "u1",
				Status:      domain.ApplicationPending,
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrAlreadyExists):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if ok.Load() != 1 || dup.Load() != 15 {
		t.Fatalf("expected exactly one success, ok=%d dup=%d", ok.Load(), dup.Load())
	}
	job, _, _ := s.GetJob(ctx, "job-00")
	if job.ApplicationCount != 1 {
		t.Fatalf("expected application count 1, got %d", job.ApplicationCount)
	}
}

func TestMemoryStoreDeleteCompanyCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	owner := domain.User{ID: "emp-1", Email: "emp@example.com", Role: domain.RoleUser}
	applicant := domain.User{ID: "u1", Email: "u1@example.com", Role: domain.RoleUser}
	for _, u := range []domain.User{owner, applicant} {
		if _, err := s.RegisterUser(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	owner.Role = domain.RoleEmployer
	if err := s.CreateCompany(ctx, domain.Company{ID: "c1", Name: "Acme", Status: domain.CompanyPending}, owner); err != nil {
		t.Fatalf("create company: %v", err)
	}
	company, ok, err := s.GetCompany(ctx, "c1")
	if err != nil || !ok || len(company.Employees) != 1 || company.Employees[0] != "emp-1" {
		t.Fatalf("expected owner as employee, got %+v err=%v", company, err)
	}
	seedJobs(t, s, "c1", 2)
	if err := s.SaveJob(ctx, "u1", "job-00"); err != nil {
		t.Fatalf("save job: %v", err)
	}
	if err := s.CreateApplication(ctx, domain.Application{ID: "a1", JobID: "job-00", ApplicantID: "u1"}); err != nil {
		t.Fatalf("create application: %v", err)
	}

	if err := s.DeleteCompany(ctx, "c1"); err != nil {
		t.Fatalf("delete company: %v", err)
	}
	got, _, _ := s.GetUserByID(ctx, "emp-1")
	if got.CompanyID != "" {
		t.Fatalf("expected company cleared, got %q", got.CompanyID)
	}
	if n, _ := s.CountJobs(ctx, domain.JobFilter{}); n != 0 {
		t.Fatalf("expected jobs removed, got %d", n)
	}
	if _, ok, _ := s.GetApplication(ctx, "a1"); ok {
		t.Fatalf("expected application removed")
	}
	saved, _ := s.ListSavedJobIDs(ctx, "u1")
	if len(saved) != 0 {
		t.Fatalf("expected saved jobs cleared, got %v", saved)
	}
	if err := s.DeleteCompany(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStoreSaveJobIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := s.SaveJob(ctx, "u1", "job-1"); err != nil {
			t.Fatalf("save job: %v", err)
		}
	}
	ids, _ := s.ListSavedJobIDs(ctx, "u1")
	if len(ids) != 1 {
		t.Fatalf("expected one saved id, got %v", ids)
	}
	if err := s.UnsaveJob(ctx, "u1", "job-1"); err != nil {
		t.Fatalf("unsave: %v", err)
	}
	ids, _ = s.ListSavedJobIDs(ctx, "u1")
	if len(ids) != 0 {
		t.Fatalf("expected no saved ids, got %v", ids)
	}
}

func TestMemoryStoreRegisterUserElectsFirstAdmin(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	first, err := s.RegisterUser(ctx, domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleEmployer})
	if err != nil || first.Role != domain.RoleAdmin {
		t.Fatalf("first register: %v %+v", err, first)
	}
	second, err := s.RegisterUser(ctx, domain.User{ID: "u2", Email: "b@example.com", Role: domain.RoleUser})
	if err != nil || second.Role != domain.RoleUser {
		t.Fatalf("second register: %v %+v", err, second)
	}
	if _, err := s.RegisterUser(ctx, domain.User{ID: "u3", Email: "a@example.com"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	stored, ok, err := s.GetUserByID(ctx, "u1")
	if err != nil || !ok || stored.Role != domain.RoleAdmin {
		t.Fatalf("stored first user: %v %+v", err, stored)
	}
}
