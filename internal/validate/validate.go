// Package validate checks request bodies against embedded JSON schemas.
package validate

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names one embedded schema.
type Schema string

const (
	Register          Schema = "register"
	Login             Schema = "login"
	ProfileUpdate     Schema = "profile_update"
	PasswordChange    Schema = "password_change"
	JobCreate         Schema = "job_create"
	JobUpdate         Schema = "job_update"
	CompanyCreate     Schema = "company_create"
	CompanyUpdate     Schema = "company_update"
	CompanyVerify     Schema = "company_verify"
	ApplicationSubmit Schema = "application_submit"
	ApplicationUpdate Schema = "application_update"
	RoleUpdate        Schema = "role_update"
)

// Error lists the schema violations of a document.
type Error struct {
	Details []string
}

func (e *Error) Error() string {
	return "invalid request: " + strings.Join(e.Details, "; ")
}

// Validator holds the compiled schemas.
type Validator struct {
	schemas map[Schema]*gojsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}
	v := &Validator{schemas: make(map[Schema]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		data, err := fs.ReadFile(schemaFS, path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", entry.Name(), err)
		}
		v.schemas[Schema(strings.TrimSuffix(entry.Name(), ".json"))] = compiled
	}
	return v, nil
}

// Validate checks doc against the named schema. Malformed JSON and schema
// violations are returned as *Error.
func (v *Validator) Validate(name Schema, doc []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &Error{Details: []string{"body must be valid JSON"}}
	}
	if res.Valid() {
		return nil
	}
	details := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		if field := e.Field(); field != "" && field != "(root)" {
			details = append(details, field+": "+e.Description())
			continue
		}
		details = append(details, e.Description())
	}
	return &Error{Details: details}
}
