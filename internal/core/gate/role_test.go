package gate

import "testing"

func TestResolveActor(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  *Role
	}{
		{"child is monitored", []string{"child"}, rolePtr(RoleMonitored)},
		{"elderly is monitored", []string{"elderly"}, rolePtr(RoleMonitored)},
		{"guardian is monitoring", []string{"guardian"}, rolePtr(RoleMonitoring)},
		{"global user is monitoring", []string{"global_user"}, rolePtr(RoleMonitoring)},
		{"dependent role wins", []string{"guardian", "child"}, rolePtr(RoleMonitored)},
		{"case and whitespace insensitive", []string{" Guardian "}, rolePtr(RoleMonitoring)},
		{"unknown roles only", []string{"visitor"}, nil},
		{"empty list", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveActor(tt.roles)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ResolveActor(%v) = %+v, want nil", tt.roles, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ResolveActor(%v) = nil, want role %q", tt.roles, *tt.want)
			}
			if got.Role != *tt.want {
				t.Errorf("ResolveActor(%v).Role = %q, want %q", tt.roles, got.Role, *tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input  string
		want   Role
		wantOK bool
	}{
		{"monitoring", RoleMonitoring, true},
		{"MONITORED", RoleMonitored, true},
		{"guardian", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRole(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func rolePtr(r Role) *Role { return &r }
