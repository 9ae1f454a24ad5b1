package server

import (
	"errors"
	"net/http"

	"jobboard/internal/app"
	"jobboard/internal/validate"
	"jobboard/pkg/domain"
)

type applicationRequest struct {
	JobID       string `json:"jobId"`
	Resume      string `json:"resume"`
	CoverLetter string `json:"coverLetter"`
}

type applicationUpdateRequest struct {
	Status *domain.ApplicationStatus `json:"status"`
	Notes  *string                   `json:"notes"`
}

func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req applicationRequest
	if err := s.decodeBody(r, validate.ApplicationSubmit, &req); err != nil {
		writeAppError(w, r, err, "")
		return
	}
	application, err := s.app.SubmitApplication(r.Context(), user, app.ApplicationInput{
		JobID:       req.JobID,
		Resume:      req.Resume,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		writeAppError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, application)
}

// handleApplicationRoutes serves /api/applications/user,
// /api/applications/job/:jobId, /api/applications/:id and
// /api/applications/:id/resume.
func (s *Server) handleApplicationRoutes(w http.ResponseWriter, r *http.Request, user domain.User) {
	parts := pathSegments(r.URL.Path, "/api/applications/")
	switch {
	case len(parts) == 1 && parts[0] == "user":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		apps, err := s.app.MyApplications(r.Context(), user)
		if err != nil {
			writeAppError(w, r, err, "")
			return
		}
		writeJSON(w, http.StatusOK, apps)
	case len(parts) == 2 && parts[0] == "job":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		apps, err := s.app.JobApplications(r.Context(), user, parts[1])
		if err != nil {
			s.auditForbidden(r, err, "application.list", user)
			writeAppError(w, r, err, "Not authorized to view these applications")
			return
		}
		writeJSON(w, http.StatusOK, apps)
	case len(parts) == 1:
		s.handleApplicationByID(w, r, user, parts[0])
	case len(parts) == 2 && parts[1] == "resume":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		link, err := s.app.ResumeURL(r.Context(), user, parts[0])
		if err != nil {
			s.auditForbidden(r, err, "application.resume", user)
			writeAppError(w, r, err, "Not authorized to view this application")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": link})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleApplicationByID(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	switch r.Method {
	case http.MethodGet:
		application, err := s.app.GetApplication(r.Context(), user, id)
		if err != nil {
			s.auditForbidden(r, err, "application.get", user)
			writeAppError(w, r, err, "Not authorized to view this application")
			return
		}
		writeJSON(w, http.StatusOK, application)
	case http.MethodPut:
		var req applicationUpdateRequest
		if err := s.decodeBody(r, validate.ApplicationUpdate, &req); err != nil {
			writeAppError(w, r, err, "")
			return
		}
		application, err := s.app.UpdateApplication(r.Context(), user, id, app.ApplicationUpdate{
			Status: req.Status,
			Notes:  req.Notes,
		})
		if err != nil {
			s.auditForbidden(r, err, "application.update", user)
			writeAppError(w, r, err, "Not authorized to update this application")
			return
		}
		writeJSON(w, http.StatusOK, application)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	maxBytes := s.app.MaxUploadBytes()
	// Allow room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64<<10)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAppError(w, r, app.ErrFileTooLarge, "")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()
	key, err := s.app.UploadResume(r.Context(), user, header.Filename, file, header.Size)
	if err != nil {
		writeAppError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}
