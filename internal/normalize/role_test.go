package normalize

import "testing"

func TestRoleClassification(t *testing.T) {
	tests := []struct {
		title  string
		family string
	}{
		{"Senior Product Manager", RoleProduct},
		{"Product Owner", RoleProduct},
		{"Group Product Manager", RoleProduct},
		{"Technical Program Manager", RoleTPMProgram},
		{"Program Manager, Infrastructure", RoleTPMProgram},
		{"Delivery Manager", RoleTPMProgram},
		{"Release Manager", RoleTPMProgram},
		{"Implementation Manager", RoleTPMProgram},
		{"Project Manager", RoleProject},
		{"PMO Analyst", RoleProject},
		{"Project Coordinator", RoleProject},
		{"Barista", RoleOther},
	}
	for _, tt := range tests {
		family, _ := Role(tt.title, "", 0.7)
		if family != tt.family {
			t.Errorf("Role(%q) = %s, want %s", tt.title, family, tt.family)
		}
	}
}

func TestRoleNegativeKeywordsWin(t *testing.T) {
	tests := []string{
		"Senior Software Engineer",
		"Product Security Engineer",
		"Sales Program Manager",
		"Account Executive, Enterprise",
		"Developer Productivity Manager",
		"Incident Response Program Manager",
	}
	for _, title := range tests {
		family, _ := Role(title, "", 0.7)
		if family != RoleOther {
			t.Errorf("Role(%q) = %s, want other (negative keyword)", title, family)
		}
	}
}

func TestRoleStrategicProjectLead(t *testing.T) {
	family, conf := Role("Strategic Project Lead", "", 0.7)
	if family != RoleTPMProgram {
		t.Errorf("family = %s, want tpm_program", family)
	}
	if conf != 0.7 {
		t.Errorf("confidence = %v, want 0.7", conf)
	}
}

func TestRoleNoMatch(t *testing.T) {
	family, conf := Role("Chief of Staff", "", 0.7)
	if family != RoleOther || conf != 0.5 {
		t.Errorf("got %s/%v, want other/0.5", family, conf)
	}
}

func TestRoleDescriptionContributes(t *testing.T) {
	family, _ := Role("Platform Lead", "You will be the technical program manager for our platform org", 0.7)
	if family != RoleTPMProgram {
		t.Errorf("family = %s, want tpm_program from description", family)
	}
}
