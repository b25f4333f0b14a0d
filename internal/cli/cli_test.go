package cli

import "testing"

func TestParseOnOff(t *testing.T) {
	tests := []struct {
		arg     string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"ON", true, false},
		{"enabled", true, false},
		{"off", false, false},
		{"false", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		got, err := parseOnOff(tt.arg)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOnOff(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseOnOff(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}

func TestParseLocalID(t *testing.T) {
	if id, err := parseLocalID("42"); err != nil || id != 42 {
		t.Errorf("parseLocalID(42) = %d, %v", id, err)
	}
	for _, arg := range []string{"0", "-3", "abc", ""} {
		if _, err := parseLocalID(arg); err == nil {
			t.Errorf("parseLocalID(%q): expected error", arg)
		}
	}
}

func TestGateCmd_Subcommands(t *testing.T) {
	cmd := GateCmd()
	for _, name := range []string{"evaluate", "toggle", "refresh", "status"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("gate %s not registered (err %v)", name, err)
		}
	}
}
