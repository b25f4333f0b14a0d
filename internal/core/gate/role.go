package gate

import "strings"

// Raw role names issued by the session layer.
var (
	monitoredRoleNames  = map[string]bool{"child": true, "elderly": true}
	monitoringRoleNames = map[string]bool{"guardian": true, "global_user": true, "admin": true}
)

// ResolveActor classifies raw session role names into an Actor. It runs
// once at the session boundary; the gate itself never looks at raw names.
//
// A dependent role wins over any other: dependents never configure their
// own monitoring. Returns nil when no name is recognized.
func ResolveActor(roleNames []string) *Actor {
	monitoring := false
	for _, name := range roleNames {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if monitoredRoleNames[normalized] {
			return &Actor{Role: RoleMonitored}
		}
		if monitoringRoleNames[normalized] {
			monitoring = true
		}
	}
	if monitoring {
		return &Actor{Role: RoleMonitoring}
	}
	return nil
}

// ParseRole parses a role mode name ("monitoring" or "monitored").
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleMonitoring:
		return RoleMonitoring, true
	case RoleMonitored:
		return RoleMonitored, true
	default:
		return "", false
	}
}
