package auth

import (
	"testing"

	"jobboard/pkg/domain"
)

func TestDemoDirectoryAuthenticate(t *testing.T) {
	d := NewDemoDirectory()
	u, ok := d.Authenticate(" Employer@demo.local ", DemoPassword)
	if !ok {
		t.Fatalf("expected demo employer to authenticate")
	}
	if u.Role != domain.RoleEmployer || !IsDemoID(u.ID) {
		t.Fatalf("unexpected demo user: %+v", u)
	}
	if _, ok := d.Authenticate("employer@demo.local", "wrong"); ok {
		t.Fatalf("wrong password must fail")
	}
	if _, ok := d.Lookup(u.ID); !ok {
		t.Fatalf("lookup by id failed")
	}
}

func TestNilDemoDirectoryIsEmpty(t *testing.T) {
	var d *DemoDirectory
	if _, ok := d.Lookup(DemoIDPrefix + "admin"); ok {
		t.Fatalf("nil directory must not resolve users")
	}
	if _, ok := d.Authenticate("admin@demo.local", DemoPassword); ok {
		t.Fatalf("nil directory must not authenticate")
	}
}
