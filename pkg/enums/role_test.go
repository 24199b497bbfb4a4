package enums

import "testing"

func TestParseRole(t *testing.T) {
	for _, role := range Roles() {
		parsed, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", role, err)
		}
		if parsed != role {
			t.Fatalf("expected %s, got %s", role, parsed)
		}
	}

	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestRoleIsValid(t *testing.T) {
	if !RoleOfficer.IsValid() {
		t.Fatal("officer should be valid")
	}
	if Role("root").IsValid() {
		t.Fatal("root should not be valid")
	}
}

func TestParseUserStatus(t *testing.T) {
	if _, err := ParseUserStatus("active"); err != nil {
		t.Fatalf("active should parse: %v", err)
	}
	if _, err := ParseUserStatus("disabled"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
