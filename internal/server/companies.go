package server

import (
	"net/http"

	"jobboard/internal/app"
	"jobboard/internal/validate"
	"jobboard/pkg/domain"
)

type companyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Location    string `json:"location"`
	Logo        string `json:"logo"`
}

type companyUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
	Location    *string `json:"location"`
	Logo        *string `json:"logo"`
}

type companyVerifyRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		companies, err := s.app.ListCompanies(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			writeAppError(w, r, err, "")
			return
		}
		writeJSON(w, http.StatusOK, companies)
	case http.MethodPost:
		user, ok := s.requireUser(w, r)
		if !ok {
			return
		}
		var req companyRequest
		if err := s.decodeBody(r, validate.CompanyCreate, &req); err != nil {
			writeAppError(w, r, err, "")
			return
		}
		company, err := s.app.CreateCompany(r.Context(), user, app.CompanyInput{
			Name:        req.Name,
			Description: req.Description,
			Website:     req.Website,
			Location:    req.Location,
			Logo:        req.Logo,
		})
		if err != nil {
			writeAppError(w, r, err, "")
			return
		}
		writeJSON(w, http.StatusCreated, company)
	default:
		methodNotAllowed(w)
	}
}

// handleCompanyByID serves /api/companies/:id and /api/companies/:id/verify.
func (s *Server) handleCompanyByID(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r.URL.Path, "/api/companies/")
	switch {
	case len(parts) == 1:
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			company, err := s.app.GetCompany(r.Context(), id)
			if err != nil {
				writeAppError(w, r, err, "")
				return
			}
			writeJSON(w, http.StatusOK, company)
		case http.MethodPut:
			if user, ok := s.requireUser(w, r); ok {
				s.handleUpdateCompany(w, r, user, id)
			}
		case http.MethodDelete:
			user, ok := s.requireUser(w, r)
			if !ok {
				return
			}
			if err := s.app.DeleteCompany(r.Context(), user, id); err != nil {
				s.auditForbidden(r, err, "company.delete", user)
				writeAppError(w, r, err, "Admin access required")
				return
			}
			s.audit(r, "company.delete", "success", "user_id", user.ID, "company_id", id)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Company removed"})
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 2 && parts[1] == "verify":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		user, ok := s.requireUser(w, r)
		if !ok {
			return
		}
		var req companyVerifyRequest
		if err := s.decodeBody(r, validate.CompanyVerify, &req); err != nil {
			writeAppError(w, r, err, "")
			return
		}
		company, err := s.app.VerifyCompany(r.Context(), user, parts[0], domain.CompanyStatus(req.Status))
		if err != nil {
			s.auditForbidden(r, err, "company.verify", user)
			writeAppError(w, r, err, "Admin access required")
			return
		}
		s.audit(r, "company.verify", "success", "user_id", user.ID, "company_id", company.ID, "status", string(company.Status))
		writeJSON(w, http.StatusOK, company)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	var req companyUpdateRequest
	if err := s.decodeBody(r, validate.CompanyUpdate, &req); err != nil {
		writeAppError(w, r, err, "")
		return
	}
	company, err := s.app.UpdateCompany(r.Context(), user, id, app.CompanyUpdate{
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		Location:    req.Location,
		Logo:        req.Logo,
	})
	if err != nil {
		s.auditForbidden(r, err, "company.update", user)
		writeAppError(w, r, err, "Not authorized to update this company")
		return
	}
	writeJSON(w, http.StatusOK, company)
}
