package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile is the user profile loaded from profiles/<name>.json.
// The on-disk shape is kept stable for compatibility with existing profile
// files; typed accessors project into it.
type Profile struct {
	Personal          Personal          `json:"personal" validate:"required"`
	Links             map[string]string `json:"links,omitempty"`
	WorkExperience    []WorkExperience  `json:"work_experience,omitempty"`
	Education         []Education       `json:"education,omitempty"`
	Demographics      Demographics      `json:"demographics,omitempty"`
	WorkAuthorization WorkAuthorization `json:"work_authorization,omitempty"`
	Files             ProfileFiles      `json:"files,omitempty"`
	CommonAnswers     map[string]string `json:"common_answers,omitempty"`
}

type Personal struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Address   string `json:"address"`
}

type WorkExperience struct {
	Company    string `json:"company"`
	Title      string `json:"title"`
	Location   string `json:"location"`
	StartMonth string `json:"start_month"`
	StartYear  string `json:"start_year"`
	EndMonth   string `json:"end_month"`
	EndYear    string `json:"end_year"`
	Current    bool   `json:"current"`
	Summary    string `json:"summary"`
}

type Education struct {
	School     string `json:"school"`
	Degree     string `json:"degree"`
	Discipline string `json:"discipline"`
	StartMonth string `json:"start_month"`
	StartYear  string `json:"start_year"`
	EndMonth   string `json:"end_month"`
	EndYear    string `json:"end_year"`
}

type Demographics struct {
	Gender     string `json:"gender"`
	Race       string `json:"race"`
	Veteran    string `json:"veteran"`
	Disability string `json:"disability"`
	Hispanic   string `json:"hispanic"`
}

type WorkAuthorization struct {
	AuthorizedUS      string `json:"authorized_us"`
	RequiresSponsor   string `json:"requires_sponsorship"`
	VisaStatus        string `json:"visa_status,omitempty"`
	SecurityClearance string `json:"security_clearance,omitempty"`
}

// ProfileFiles maps role families to resume/cover-letter files
type ProfileFiles struct {
	BasePath    string            `json:"base_path"`
	ByRole      map[string]string `json:"by_role,omitempty"`
	DefaultRole string            `json:"default_role,omitempty"`
}

// FullName returns "First Last"
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.Personal.FirstName + " " + p.Personal.LastName)
}

// ResumeForRole returns the resume path for a role family, falling back to
// the default role's file when no specific mapping exists.
func (p *Profile) ResumeForRole(role string) string {
	if path, ok := p.Files.ByRole[role]; ok {
		return p.Files.BasePath + path
	}
	if path, ok := p.Files.ByRole[p.Files.DefaultRole]; ok {
		return p.Files.BasePath + path
	}
	return ""
}

// GetByPath resolves a dotted path into the profile, e.g.
// "personal.email", "work_experience.0.company", "links.linkedin".
// Numeric segments index into list entries. Returns ("", false) when any
// segment is missing or out of range.
func (p *Profile) GetByPath(path string) (string, bool) {
	parts := strings.Split(path, ".")
	if len(parts) == 0 {
		return "", false
	}

	switch parts[0] {
	case "personal":
		if len(parts) != 2 {
			return "", false
		}
		return personalField(&p.Personal, parts[1])
	case "links":
		if len(parts) != 2 {
			return "", false
		}
		v, ok := p.Links[parts[1]]
		return v, ok && v != ""
	case "common_answers":
		if len(parts) != 2 {
			return "", false
		}
		v, ok := p.CommonAnswers[parts[1]]
		return v, ok && v != ""
	case "demographics":
		if len(parts) != 2 {
			return "", false
		}
		return demographicsField(&p.Demographics, parts[1])
	case "work_authorization":
		if len(parts) != 2 {
			return "", false
		}
		return workAuthField(&p.WorkAuthorization, parts[1])
	case "work_experience":
		if len(parts) != 3 {
			return "", false
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 0 || idx >= len(p.WorkExperience) {
			return "", false
		}
		return workExperienceField(&p.WorkExperience[idx], parts[2])
	case "education":
		if len(parts) != 3 {
			return "", false
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 0 || idx >= len(p.Education) {
			return "", false
		}
		return educationField(&p.Education[idx], parts[2])
	case "full_name":
		return p.FullName(), true
	}
	return "", false
}

func personalField(p *Personal, field string) (string, bool) {
	var v string
	switch field {
	case "first_name":
		v = p.FirstName
	case "last_name":
		v = p.LastName
	case "email":
		v = p.Email
	case "phone":
		v = p.Phone
	case "city":
		v = p.City
	case "state":
		v = p.State
	case "zip":
		v = p.Zip
	case "country":
		v = p.Country
	case "address":
		v = p.Address
	default:
		return "", false
	}
	return v, v != ""
}

func demographicsField(d *Demographics, field string) (string, bool) {
	var v string
	switch field {
	case "gender":
		v = d.Gender
	case "race":
		v = d.Race
	case "veteran":
		v = d.Veteran
	case "disability":
		v = d.Disability
	case "hispanic":
		v = d.Hispanic
	default:
		return "", false
	}
	return v, v != ""
}

func workAuthField(w *WorkAuthorization, field string) (string, bool) {
	var v string
	switch field {
	case "authorized_us":
		v = w.AuthorizedUS
	case "requires_sponsorship":
		v = w.RequiresSponsor
	case "visa_status":
		v = w.VisaStatus
	case "security_clearance":
		v = w.SecurityClearance
	default:
		return "", false
	}
	return v, v != ""
}

func workExperienceField(w *WorkExperience, field string) (string, bool) {
	var v string
	switch field {
	case "company":
		v = w.Company
	case "title":
		v = w.Title
	case "location":
		v = w.Location
	case "start_month":
		v = w.StartMonth
	case "start_year":
		v = w.StartYear
	case "end_month":
		v = w.EndMonth
	case "end_year":
		v = w.EndYear
	case "current":
		return fmt.Sprintf("%t", w.Current), true
	case "summary":
		v = w.Summary
	default:
		return "", false
	}
	return v, v != ""
}

func educationField(e *Education, field string) (string, bool) {
	var v string
	switch field {
	case "school":
		v = e.School
	case "degree":
		v = e.Degree
	case "discipline":
		v = e.Discipline
	case "start_month":
		v = e.StartMonth
	case "start_year":
		v = e.StartYear
	case "end_month":
		v = e.EndMonth
	case "end_year":
		v = e.EndYear
	default:
		return "", false
	}
	return v, v != ""
}
