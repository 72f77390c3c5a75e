package middleware

import "testing"

func TestParseRouteInfo(t *testing.T) {
	tests := []struct {
		fullPath string
		method   string
		module   string
		action   string
	}{
		{"/api/v1/groups/:id/students", "POST", "Groups", "Create"},
		{"/api/v1/users/:id/status", "PUT", "Users", "Update"},
		{"/api/v1/groups/:id/students/:student_id", "DELETE", "Groups", "Delete"},
		{"/api/v1/audit-logs", "POST", "Audit Logs", "Create"},
		{"", "POST", "unknown", "Create"},
	}

	for _, tt := range tests {
		module, action := parseRouteInfo(tt.fullPath, tt.method)
		if module != tt.module {
			t.Errorf("parseRouteInfo(%q, %q) module = %q, expected %q", tt.fullPath, tt.method, module, tt.module)
		}
		if action != tt.action {
			t.Errorf("parseRouteInfo(%q, %q) action = %q, expected %q", tt.fullPath, tt.method, action, tt.action)
		}
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	body := `{"username":"alice","password":"hunter2"}`
	masked := maskSensitiveFields(body)
	if masked != `{"username":"alice","password":"***"}` {
		t.Errorf("maskSensitiveFields = %q, expected password masked", masked)
	}
}
