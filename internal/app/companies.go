package app

import (
	"context"
	"errors"
	"strings"

	"github.com/gosimple/slug"

	"jobboard/internal/policy"
	"jobboard/internal/util"
	"jobboard/pkg/domain"
	"jobboard/pkg/events"
	"jobboard/pkg/store"
)

// CompanyInput is the body of a company registration.
type CompanyInput struct {
	Name        string
	Description string
	Website     string
	Location    string
	Logo        string
}

// CompanyUpdate carries the optional fields of a company edit.
type CompanyUpdate struct {
	Name        *string
	Description *string
	Website     *string
	Location    *string
	Logo        *string
}

// ListCompanies returns companies, optionally filtered by status.
func (a *App) ListCompanies(ctx context.Context, status string) ([]domain.Company, error) {
	st := domain.CompanyStatus(strings.TrimSpace(status))
	if st != "" && !st.Valid() {
		return nil, invalidInput("unknown company status")
	}
	companies, err := a.store.ListCompanies(ctx, st)
	if err != nil {
		return nil, wrap("list companies", err)
	}
	return companies, nil
}

// GetCompany returns a company with its employee and job ids.
func (a *App) GetCompany(ctx context.Context, id string) (domain.Company, error) {
	c, ok, err := a.store.GetCompany(ctx, id)
	if err != nil {
		return domain.Company{}, wrap("load company", err)
	}
	if !ok {
		return domain.Company{}, ErrCompanyNotFound
	}
	return c, nil
}

// CreateCompany registers a company owned by the caller. The caller joins it
// as first employee and, unless admin, is promoted to employer. New companies
// await verification.
func (a *App) CreateCompany(ctx context.Context, actor domain.User, in CompanyInput) (domain.Company, error) {
	owner, err := a.Profile(ctx, actor)
	if err != nil {
		return domain.Company{}, err
	}
	if owner.CompanyID != "" {
		return domain.Company{}, ErrAlreadyInCompany
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Company{}, invalidInput("name is required")
	}
	now := a.now()
	company := domain.Company{
		ID:          util.NewID(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(in.Description),
		Website:     strings.TrimSpace(in.Website),
		Location:    strings.TrimSpace(in.Location),
		Logo:        strings.TrimSpace(in.Logo),
		Status:      domain.CompanyPending,
		CreatedBy:   owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	owner.CompanyID = company.ID
	if owner.Role != domain.RoleAdmin {
		owner.Role = domain.RoleEmployer
	}
	owner.UpdatedAt = now
	if err := a.store.CreateCompany(ctx, company, owner); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Company{}, ErrUserNotFound
		}
		return domain.Company{}, wrap("create company", err)
	}
	return a.GetCompany(ctx, company.ID)
}

// UpdateCompany edits a company. Employees of the company and admins may edit.
func (a *App) UpdateCompany(ctx context.Context, actor domain.User, id string, in CompanyUpdate) (domain.Company, error) {
	c, err := a.GetCompany(ctx, id)
	if err != nil {
		return domain.Company{}, err
	}
	if err := policy.RequireOwner(policy.SubjectOf(actor), c.Employees...); err != nil {
		return domain.Company{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.Company{}, invalidInput("name cannot be empty")
		}
		c.Name = name
		c.Slug = slug.Make(name)
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.Website != nil {
		c.Website = strings.TrimSpace(*in.Website)
	}
	if in.Location != nil {
		c.Location = strings.TrimSpace(*in.Location)
	}
	if in.Logo != nil {
		c.Logo = strings.TrimSpace(*in.Logo)
	}
	c.UpdatedAt = a.now()
	if err := a.store.UpdateCompany(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Company{}, ErrCompanyNotFound
		}
		return domain.Company{}, wrap("update company", err)
	}
	return a.GetCompany(ctx, id)
}

// VerifyCompany sets a company's review status. Admin only; an empty status
// means Verified.
func (a *App) VerifyCompany(ctx context.Context, actor domain.User, id string, status domain.CompanyStatus) (domain.Company, error) {
	if err := policy.RequireRole(policy.SubjectOf(actor), domain.RoleAdmin); err != nil {
		return domain.Company{}, err
	}
	if status == "" {
		status = domain.CompanyVerified
	}
	if !status.Valid() {
		return domain.Company{}, invalidInput("unknown company status")
	}
	c, err := a.GetCompany(ctx, id)
	if err != nil {
		return domain.Company{}, err
	}
	previous := c.Status
	c.Status = status
	c.UpdatedAt = a.now()
	if err := a.store.UpdateCompany(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Company{}, ErrCompanyNotFound
		}
		return domain.Company{}, wrap("verify company", err)
	}
	if status == domain.CompanyVerified && previous != domain.CompanyVerified {
		a.publish(ctx, events.CompanyVerified, map[string]any{
			"companyId":  c.ID,
			"createdBy":  c.CreatedBy,
			"verifiedBy": actor.ID,
		})
	}
	return a.GetCompany(ctx, id)
}

// DeleteCompany removes a company, detaches its employees and deletes its
// jobs with their applications. Admin only.
func (a *App) DeleteCompany(ctx context.Context, actor domain.User, id string) error {
	if err := policy.RequireRole(policy.SubjectOf(actor), domain.RoleAdmin); err != nil {
		return err
	}
	c, err := a.GetCompany(ctx, id)
	if err != nil {
		return err
	}
	resumes, err := a.storedResumes(ctx, c.Jobs...)
	if err != nil {
		return err
	}
	if err := a.store.DeleteCompany(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCompanyNotFound
		}
		return wrap("delete company", err)
	}
	a.removeOrphanResumes(ctx, resumes)
	a.publish(ctx, events.CompanyDeleted, map[string]any{
		"companyId": c.ID,
		"employees": c.Employees,
		"jobs":      c.Jobs,
		"deletedBy": actor.ID,
	})
	return nil
}
