package app

import (
	"context"
	"errors"
	"testing"

	"jobboard/internal/policy"
	"jobboard/pkg/domain"
	"jobboard/pkg/events"
)

func TestCreateCompanyPromotesCreator(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "admin@example.com", "")
	user, _ := env.register(t, "founder@example.com", "")
	ctx := context.Background()

	var inputErr *InputError
	if _, err := env.app.CreateCompany(ctx, user, CompanyInput{Name: "  "}); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error for empty name, got %v", err)
	}
	c, err := env.app.CreateCompany(ctx, user, CompanyInput{Name: "Acme Labs", Location: "Oslo"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	if c.Status != domain.CompanyPending || c.CreatedBy != user.ID || c.Slug != "acme-labs" {
		t.Fatalf("unexpected company %+v", c)
	}
	if len(c.Employees) != 1 || c.Employees[0] != user.ID {
		t.Fatalf("expected creator as employee, got %v", c.Employees)
	}
	reloaded, err := env.app.Profile(ctx, user)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if reloaded.Role != domain.RoleEmployer || reloaded.CompanyID != c.ID {
		t.Fatalf("creator not promoted: %+v", reloaded)
	}
	if _, err := env.app.CreateCompany(ctx, reloaded, CompanyInput{Name: "Second"}); !errors.Is(err, ErrAlreadyInCompany) {
		t.Fatalf("expected ErrAlreadyInCompany, got %v", err)
	}
}

func TestAdminKeepsRoleWhenCreatingCompany(t *testing.T) {
	env := newTestEnv(t, nil)
	admin, _ := env.register(t, "admin@example.com", "")
	if _, err := env.app.CreateCompany(context.Background(), admin, CompanyInput{Name: "HQ"}); err != nil {
		t.Fatalf("create company: %v", err)
	}
	reloaded, err := env.app.Profile(context.Background(), admin)
	if err != nil || reloaded.Role != domain.RoleAdmin {
		t.Fatalf("admin role changed: %v %+v", err, reloaded)
	}
}

func TestUpdateAndVerifyCompany(t *testing.T) {
	env := newTestEnv(t, nil)
	admin, _ := env.register(t, "admin@example.com", "")
	employer, company := env.employerWithCompany(t, "boss@example.com")
	other, _ := env.employerWithCompany(t, "other@example.com")
	ctx := context.Background()

	website := "https://acme.test"
	if _, err := env.app.UpdateCompany(ctx, other, company.ID, CompanyUpdate{Website: &website}); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	updated, err := env.app.UpdateCompany(ctx, employer, company.ID, CompanyUpdate{Website: &website})
	if err != nil || updated.Website != website {
		t.Fatalf("employee update: %v %+v", err, updated)
	}
	name := "Acme & Sons"
	renamed, err := env.app.UpdateCompany(ctx, employer, company.ID, CompanyUpdate{Name: &name})
	if err != nil || renamed.Slug != "acme-and-sons" || renamed.Website != website {
		t.Fatalf("rename: %v %+v", err, renamed)
	}

	if _, err := env.app.VerifyCompany(ctx, employer, company.ID, ""); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected forbidden verify, got %v", err)
	}
	verified, err := env.app.VerifyCompany(ctx, admin, company.ID, "")
	if err != nil || verified.Status != domain.CompanyVerified {
		t.Fatalf("verify: %v %+v", err, verified)
	}
	if types := env.events.Types(); types[len(types)-1] != events.CompanyVerified {
		t.Fatalf("expected company.verified event, got %v", types)
	}
	list, err := env.app.ListCompanies(ctx, "Verified")
	if err != nil || len(list) != 1 || list[0].ID != company.ID {
		t.Fatalf("list verified: %v %+v", err, list)
	}
	var inputErr *InputError
	if _, err := env.app.ListCompanies(ctx, "Bogus"); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error for status filter, got %v", err)
	}
}

func TestDeleteCompanyCascades(t *testing.T) {
	env := newTestEnv(t, nil)
	admin, _ := env.register(t, "admin@example.com", "")
	employer, company := env.employerWithCompany(t, "boss@example.com")
	job := env.postJob(t, employer, company.ID, "Engineer", domain.JobFullTime)
	seeker, _ := env.register(t, "seeker@example.com", "")
	ctx := context.Background()
	if _, err := env.app.SubmitApplication(ctx, seeker, ApplicationInput{JobID: job.ID}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := env.app.DeleteCompany(ctx, employer, company.ID); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if err := env.app.DeleteCompany(ctx, admin, company.ID); err != nil {
		t.Fatalf("delete company: %v", err)
	}
	reloaded, err := env.app.Profile(ctx, employer)
	if err != nil || reloaded.CompanyID != "" {
		t.Fatalf("expected company cleared: %v %+v", err, reloaded)
	}
	if _, err := env.app.GetJob(ctx, job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected job removed, got %v", err)
	}
	mine, err := env.app.MyApplications(ctx, seeker)
	if err != nil || len(mine) != 0 {
		t.Fatalf("expected applications removed: %v %d", err, len(mine))
	}
	if err := env.app.DeleteCompany(ctx, admin, company.ID); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}
