package server

import (
	"net/http"

	"jobboard/internal/app"
	"jobboard/internal/validate"
	"jobboard/pkg/domain"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type profileUpdateRequest struct {
	Email        *string `json:"email"`
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	ProfileImage *string `json:"profileImage"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registerLimiter) {
		s.audit(r, "user.register", "rate_limited")
		return
	}
	var req registerRequest
	if err := s.decodeBody(r, validate.Register, &req); err != nil {
		s.audit(r, "user.register", "fail", "reason", "invalid_body")
		writeAppError(w, r, err, "")
		return
	}
	user, token, err := s.app.Register(r.Context(), app.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.UserRole(req.Role),
	})
	if err != nil {
		s.audit(r, "user.register", "fail", "reason", err.Error())
		writeAppError(w, r, err, "")
		return
	}
	s.audit(r, "user.register", "success", "user_id", user.ID, "role", string(user.Role))
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter) {
		s.audit(r, "user.login", "rate_limited")
		return
	}
	var req loginRequest
	if err := s.decodeBody(r, validate.Login, &req); err != nil {
		s.audit(r, "user.login", "fail", "reason", "invalid_body")
		writeAppError(w, r, err, "")
		return
	}
	user, token, err := s.app.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.audit(r, "user.login", "fail", "reason", err.Error())
		writeAppError(w, r, err, "")
		return
	}
	s.audit(r, "user.login", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, _ := bearerToken(r.Header.Get("Authorization"))
	if err := s.app.Logout(token); err != nil {
		s.audit(r, "user.logout", "fail", "user_id", user.ID, "reason", err.Error())
		writeAppError(w, r, err, "")
		return
	}
	s.audit(r, "user.logout", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		profile, err := s.app.Profile(r.Context(), user)
		if err != nil {
			writeAppError(w, r, err, "")
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case http.MethodPut:
		var req profileUpdateRequest
		if err := s.decodeBody(r, validate.ProfileUpdate, &req); err != nil {
			writeAppError(w, r, err, "")
			return
		}
		updated, err := s.app.UpdateProfile(r.Context(), user, app.ProfileUpdate{
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			ProfileImage: req.ProfileImage,
		})
		if err != nil {
			writeAppError(w, r, err, "")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	var req changePasswordRequest
	if err := s.decodeBody(r, validate.PasswordChange, &req); err != nil {
		writeAppError(w, r, err, "")
		return
	}
	token, _ := bearerToken(r.Header.Get("Authorization"))
	fresh, err := s.app.ChangePassword(r.Context(), user, token, req.CurrentPassword, req.NewPassword)
	if err != nil {
		s.audit(r, "user.password.change", "fail", "user_id", user.ID, "reason", err.Error())
		writeAppError(w, r, err, "")
		return
	}
	s.audit(r, "user.password.change", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated", "token": fresh})
}

func (s *Server) handleSavedJobs(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	jobs, err := s.app.SavedJobs(r.Context(), user)
	if err != nil {
		writeAppError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}
