package validate

import (
	"errors"
	"strings"
	"testing"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return v
}

func TestAllSchemasCompile(t *testing.T) {
	v := newValidator(t)
	for _, name := range []Schema{
		Register, Login, ProfileUpdate, PasswordChange, JobCreate, JobUpdate,
		CompanyCreate, CompanyUpdate, CompanyVerify, ApplicationSubmit, ApplicationUpdate, RoleUpdate,
	} {
		if _, ok := v.schemas[name]; !ok {
			t.Fatalf("schema %q not loaded", name)
		}
	}
}

func TestValidate(t *testing.T) {
	v := newValidator(t)
	tests := []struct {
		name    string
		schema  Schema
		doc     string
		wantErr string
	}{
		{"register ok", Register, `{"email":"a@b.io","password":"hunter22a","firstName":"A","lastName":"B"}`, ""},
		{"register admin role refused", Register, `{"email":"a@b.io","password":"hunter22a","firstName":"A","lastName":"B","role":"admin"}`, "role"},
		{"register missing email", Register, `{"password":"hunter22a","firstName":"A","lastName":"B"}`, "email"},
		{"job bad type", JobCreate, `{"title":"T","companyId":"c","location":"L","description":"D","type":"Gig"}`, "type"},
		{"job unknown field", JobCreate, `{"title":"T","companyId":"c","location":"L","description":"D","type":"Remote","postedBy":"x"}`, "postedBy"},
		{"application status enum", ApplicationUpdate, `{"status":"Accepted"}`, "status"},
		{"application update empty", ApplicationUpdate, `{}`, "properties"},
		{"malformed json", Login, `{"email":`, "valid JSON"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.schema, []byte(tc.doc))
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if !strings.Contains(verr.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", verr.Error(), tc.wantErr)
			}
		})
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	v := newValidator(t)
	err := v.Validate("nope", []byte(`{}`))
	var verr *Error
	if err == nil || errors.As(err, &verr) {
		t.Fatalf("expected plain error for unknown schema, got %v", err)
	}
}
