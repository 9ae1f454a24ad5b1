package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"jobboard/internal/app"
	"jobboard/internal/policy"
	"jobboard/internal/util"
	"jobboard/internal/validate"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// writeAppError maps use-case errors to HTTP responses. forbidden is the
// route-specific message for policy failures.
func writeAppError(w http.ResponseWriter, r *http.Request, err error, forbidden string) {
	var inputErr *app.InputError
	var schemaErr *validate.Error
	switch {
	case errors.As(err, &schemaErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body", Details: schemaErr.Details})
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Message)
	case errors.Is(err, policy.ErrForbidden):
		if forbidden == "" {
			forbidden = "Not authorized"
		}
		writeError(w, http.StatusForbidden, forbidden)
	case errors.Is(err, app.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "Token is not valid")
	case app.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case app.IsConflict(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		util.LoggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody validates the JSON body against schema and decodes it into dst.
func (s *Server) decodeBody(r *http.Request, schema validate.Schema, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		return &app.InputError{Message: "could not read request body"}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}
	if err := s.validator.Validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &app.InputError{Message: "invalid JSON body"}
	}
	return nil
}

// pathSegments splits the path below prefix into non-empty segments.
func pathSegments(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// positiveQueryInt parses an optional positive integer query parameter.
// Zero means absent.
func positiveQueryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &app.InputError{Message: name + " must be a positive integer"}
	}
	return n, nil
}
