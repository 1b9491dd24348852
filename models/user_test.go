package models

import "testing"

func TestNormalizeRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"admin", "ADMIN", RoleAdmin},
		{"admin lowercase", " admin ", RoleAdmin},
		{"user", "USER", RoleUser},
		{"unknown", "superuser", RoleUser},
		{"empty", "", RoleUser},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeRole(tt.value); got != tt.want {
				t.Fatalf("NormalizeRole(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	t.Parallel()

	if !(User{Role: RoleAdmin}).IsAdmin() {
		t.Fatal("expected admin role to be recognised")
	}
	if (User{Role: RoleUser}).IsAdmin() {
		t.Fatal("expected user role not to be admin")
	}
}

func TestEntityBeforeCreateAssignsExtID(t *testing.T) {
	t.Parallel()

	entity := Entity{}
	if err := entity.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate returned error: %v", err)
	}
	if len(entity.ExtID) != 36 {
		t.Fatalf("expected uuid extid, got %q", entity.ExtID)
	}
	if !entity.Active {
		t.Fatal("expected new entity to be active")
	}

	preset := Entity{ExtID: "fixed"}
	if err := preset.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate returned error: %v", err)
	}
	if preset.ExtID != "fixed" {
		t.Fatalf("expected preset extid to be kept, got %q", preset.ExtID)
	}
}
