package auth

import (
	"crypto/subtle"
	"strings"
	"time"

	"jobboard/pkg/domain"
)

// DemoIDPrefix marks user ids that belong to the demo directory.
const DemoIDPrefix = "mock-"

// DemoEmailDomain is reserved for demo accounts.
const DemoEmailDomain = "demo.local"

// DemoPassword is shared by every demo account.
const DemoPassword = "demo1234"

// DemoDirectory resolves hard-coded demo accounts for local development.
// A nil *DemoDirectory behaves as an empty directory.
type DemoDirectory struct {
	users map[string]domain.User
	email map[string]string
}

// NewDemoDirectory returns the built-in demo accounts.
func NewDemoDirectory() *DemoDirectory {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []domain.User{
		{ID: DemoIDPrefix + "user", Email: "candidate@demo.local", FirstName: "Demo", LastName: "Candidate", Role: domain.RoleUser},
		{ID: DemoIDPrefix + "employer", Email: "employer@demo.local", FirstName: "Demo", LastName: "Employer", Role: domain.RoleEmployer},
		{ID: DemoIDPrefix + "admin", Email: "admin@demo.local", FirstName: "Demo", LastName: "Admin", Role: domain.RoleAdmin},
	}
	d := &DemoDirectory{
		users: make(map[string]domain.User, len(users)),
		email: make(map[string]string, len(users)),
	}
	for _, u := range users {
		u.SavedJobs = []string{}
		u.CreatedAt = created
		u.UpdatedAt = created
		d.users[u.ID] = u
		d.email[u.Email] = u.ID
	}
	return d
}

// IsDemoID reports whether id is in the demo namespace.
func IsDemoID(id string) bool {
	return strings.HasPrefix(id, DemoIDPrefix)
}

// Lookup returns the demo user with the given id.
func (d *DemoDirectory) Lookup(id string) (domain.User, bool) {
	if d == nil {
		return domain.User{}, false
	}
	u, ok := d.users[id]
	return u, ok
}

// Authenticate checks demo credentials.
func (d *DemoDirectory) Authenticate(email, password string) (domain.User, bool) {
	if d == nil {
		return domain.User{}, false
	}
	id, ok := d.email[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return domain.User{}, false
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(DemoPassword)) != 1 {
		return domain.User{}, false
	}
	return d.users[id], true
}
