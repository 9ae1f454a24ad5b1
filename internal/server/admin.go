package server

import (
	"net/http"

	"jobboard/internal/validate"
	"jobboard/pkg/domain"
)

type roleUpdateRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	users, err := s.app.ListUsers(r.Context(), user)
	if err != nil {
		writeAppError(w, r, err, "Admin access required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": users,
		"count": len(users),
	})
}

func (s *Server) handleAdminUserByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	parts := pathSegments(r.URL.Path, "/api/admin/users/")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req roleUpdateRequest
	if err := s.decodeBody(r, validate.RoleUpdate, &req); err != nil {
		writeAppError(w, r, err, "")
		return
	}
	updated, err := s.app.UpdateUserRole(r.Context(), user, parts[0], domain.UserRole(req.Role))
	if err != nil {
		s.audit(r, "admin.user.role", "fail", "user_id", user.ID, "target_id", parts[0], "reason", err.Error())
		writeAppError(w, r, err, "Admin access required")
		return
	}
	s.audit(r, "admin.user.role", "success", "user_id", user.ID, "target_id", updated.ID, "role", string(updated.Role))
	writeJSON(w, http.StatusOK, updated)
}
