package server

import (
	"net/http"
	"strings"

	"jobboard/internal/app"
	"jobboard/internal/validate"
	"jobboard/pkg/domain"
)

type jobRequest struct {
	Title        string   `json:"title"`
	CompanyID    string   `json:"companyId"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Salary       string   `json:"salary"`
	Tags         []string `json:"tags"`
	Type         string   `json:"type"`
	Featured     bool     `json:"featured"`
}

type jobUpdateRequest struct {
	Title        *string         `json:"title"`
	Location     *string         `json:"location"`
	Description  *string         `json:"description"`
	Requirements *[]string       `json:"requirements"`
	Salary       *string         `json:"salary"`
	Tags         *[]string       `json:"tags"`
	Type         *domain.JobType `json:"type"`
	Featured     *bool           `json:"featured"`
}

type savedJobsResponse struct {
	SavedJobs []string `json:"savedJobs"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListJobs(w, r)
	case http.MethodPost:
		user, ok := s.requireUser(w, r)
		if !ok {
			return
		}
		s.handleCreateJob(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	page, err := positiveQueryInt(r, "page")
	if err != nil {
		writeAppError(w, r, err, "")
		return
	}
	limit, err := positiveQueryInt(r, "limit")
	if err != nil {
		writeAppError(w, r, err, "")
		return
	}
	q := r.URL.Query()
	var tags []string
	if raw := strings.TrimSpace(q.Get("tags")); raw != "" {
		tags = strings.Split(raw, ",")
	}
	result, err := s.app.ListJobs(r.Context(), app.JobQuery{
		Search:    q.Get("search"),
		Location:  q.Get("location"),
		Type:      q.Get("type"),
		CompanyID: q.Get("company"),
		Tags:      tags,
		Sort:      q.Get("sort"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		writeAppError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req jobRequest
	if err := s.decodeBody(r, validate.JobCreate, &req); err != nil {
		writeAppError(w, r, err, "")
		return
	}
	job, err := s.app.CreateJob(r.Context(), user, app.JobInput{
		Title:        req.Title,
		CompanyID:    req.CompanyID,
		Location:     req.Location,
		Description:  req.Description,
		Requirements: req.Requirements,
		Salary:       req.Salary,
		Tags:         req.Tags,
		Type:         domain.JobType(req.Type),
		Featured:     req.Featured,
	})
	if err != nil {
		s.auditForbidden(r, err, "job.create", user)
		writeAppError(w, r, err, "Not authorized to post jobs for this company")
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// handleJobByID serves /api/jobs/:id and /api/jobs/:id/save.
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r.URL.Path, "/api/jobs/")
	switch {
	case len(parts) == 1:
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			job, err := s.app.GetJob(r.Context(), id)
			if err != nil {
				writeAppError(w, r, err, "")
				return
			}
			writeJSON(w, http.StatusOK, job)
		case http.MethodPut:
			if user, ok := s.requireUser(w, r); ok {
				s.handleUpdateJob(w, r, user, id)
			}
		case http.MethodDelete:
			if user, ok := s.requireUser(w, r); ok {
				s.handleDeleteJob(w, r, user, id)
			}
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 2 && parts[1] == "save":
		user, ok := s.requireUser(w, r)
		if !ok {
			return
		}
		var (
			ids []string
			err error
		)
		switch r.Method {
		case http.MethodPost:
			ids, err = s.app.SaveJob(r.Context(), user, parts[0])
		case http.MethodDelete:
			ids, err = s.app.UnsaveJob(r.Context(), user, parts[0])
		default:
			methodNotAllowed(w)
			return
		}
		if err != nil {
			writeAppError(w, r, err, "")
			return
		}
		writeJSON(w, http.StatusOK, savedJobsResponse{SavedJobs: ids})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	var req jobUpdateRequest
	if err := s.decodeBody(r, validate.JobUpdate, &req); err != nil {
		writeAppError(w, r, err, "")
		return
	}
	job, err := s.app.UpdateJob(r.Context(), user, id, app.JobUpdate{
		Title:        req.Title,
		Location:     req.Location,
		Description:  req.Description,
		Requirements: req.Requirements,
		Salary:       req.Salary,
		Tags:         req.Tags,
		Type:         req.Type,
		Featured:     req.Featured,
	})
	if err != nil {
		s.auditForbidden(r, err, "job.update", user)
		writeAppError(w, r, err, "Not authorized to update this job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if err := s.app.DeleteJob(r.Context(), user, id); err != nil {
		s.auditForbidden(r, err, "job.delete", user)
		writeAppError(w, r, err, "Not authorized to delete this job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Job removed"})
}
