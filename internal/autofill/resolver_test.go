package autofill

import (
	"context"
	"testing"

	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/models"
)

type fakeLearned struct {
	texts     map[string]string
	dropdowns map[string]string
	saved     []string
}

func newFakeLearned() *fakeLearned {
	return &fakeLearned{texts: map[string]string{}, dropdowns: map[string]string{}}
}

func (l *fakeLearned) GetText(q string) (string, bool)     { v, ok := l.texts[q]; return v, ok }
func (l *fakeLearned) GetDropdown(q string) (string, bool) { v, ok := l.dropdowns[q]; return v, ok }
func (l *fakeLearned) SaveText(q, a string) error {
	l.texts[q] = a
	l.saved = append(l.saved, q)
	return nil
}
func (l *fakeLearned) SaveDropdown(q, a string) error {
	l.dropdowns[q] = a
	l.saved = append(l.saved, q)
	return nil
}
func (l *fakeLearned) Counts() (int, int) { return len(l.texts), len(l.dropdowns) }

type fakeOracle struct {
	generateReply string
	chooseReply   string
	enabled       bool
	generateCalls int
	chooseCalls   int
}

func (o *fakeOracle) Generate(ctx context.Context, question, profileContext, kbContext string) (string, error) {
	o.generateCalls++
	return o.generateReply, nil
}

func (o *fakeOracle) ChooseOption(ctx context.Context, question string, options []string, profileContext string) (string, error) {
	o.chooseCalls++
	return o.chooseReply, nil
}

func (o *fakeOracle) VisionAnalyzeField(ctx context.Context, image []byte, prompt string) (string, error) {
	return "", nil
}

func (o *fakeOracle) Enabled() bool { return o.enabled }

func testProfile() *models.Profile {
	return &models.Profile{
		Personal: models.Personal{
			FirstName: "Jordan",
			LastName:  "Reeves",
			Email:     "jordan@example.com",
			Phone:     "9195551234",
			City:      "Raleigh",
			State:     "North Carolina",
			Country:   "United States",
		},
		Links: map[string]string{"linkedin": "https://linkedin.com/in/jordanreeves"},
		WorkExperience: []models.WorkExperience{
			{Company: "Acme Corp", Title: "Product Manager", StartMonth: "March", StartYear: "2020", Current: true},
			{Company: "Initech", Title: "Program Manager", StartMonth: "June", StartYear: "2016", EndMonth: "February", EndYear: "2020"},
		},
		Education: []models.Education{
			{School: "NC State University", Degree: "BS", Discipline: "Industrial Engineering", EndMonth: "May", EndYear: "2012"},
		},
		Demographics: models.Demographics{Gender: "Male"},
		WorkAuthorization: models.WorkAuthorization{
			AuthorizedUS:    "Yes",
			RequiresSponsor: "No",
		},
		CommonAnswers: map[string]string{"pronouns": "He/Him"},
	}
}

func newTestResolver(learned *fakeLearned, oracle *fakeOracle) *Resolver {
	var l *fakeLearned
	if learned != nil {
		l = learned
	} else {
		l = newFakeLearned()
	}
	r := NewResolver(testProfile(), l, oracle, "Decline to self-identify", common.GetLogger())
	if oracle == nil {
		r.oracle = nil
	}
	return r
}

func TestResolveLearnedWinsOverProfile(t *testing.T) {
	learned := newFakeLearned()
	learned.texts["Email"] = "other@example.com"
	r := newTestResolver(learned, nil)

	f := &models.FormField{Label: "Email", Type: models.FieldTypeText}
	r.Resolve(context.Background(), f)

	if f.Answer != "other@example.com" || f.Source != models.AnswerSourceLearned {
		t.Errorf("answer=%q source=%q, want learned answer first", f.Answer, f.Source)
	}
}

func TestResolveProfileByLabel(t *testing.T) {
	r := newTestResolver(nil, nil)

	f := &models.FormField{Label: "First Name", ElementID: "first_name", Type: models.FieldTypeText}
	r.Resolve(context.Background(), f)

	if f.Answer != "Jordan" || f.Source != models.AnswerSourceProfile || f.Confidence != 1.0 {
		t.Errorf("got answer=%q source=%q conf=%v", f.Answer, f.Source, f.Confidence)
	}
}

func TestResolveYesNoFromProfile(t *testing.T) {
	r := newTestResolver(nil, nil)

	f := &models.FormField{Label: "Will you now or in the future require sponsorship?", Type: models.FieldTypeSelect, Options: []string{"Yes", "No"}}
	r.Resolve(context.Background(), f)

	if f.Answer != "No" {
		t.Errorf("sponsorship answer = %q, want No", f.Answer)
	}
}

func TestResolveDemographicDecline(t *testing.T) {
	r := newTestResolver(nil, nil)

	// Profile has no veteran value, so the decline default applies
	f := &models.FormField{
		Label:   "Veteran Status",
		Type:    models.FieldTypeSelect,
		Options: []string{"I am a veteran", "I am not a veteran", "Decline to self-identify"},
	}
	r.Resolve(context.Background(), f)

	if f.Answer != "Decline to self-identify" {
		t.Errorf("veteran answer = %q, want the decline option", f.Answer)
	}
}

func TestResolvePronounsFromCommonAnswers(t *testing.T) {
	r := newTestResolver(nil, nil)

	f := &models.FormField{
		Label:   "Pronouns",
		Type:    models.FieldTypeSelect,
		Options: []string{"She/Her", "He/Him", "They/Them", "Prefer not to say"},
	}
	r.Resolve(context.Background(), f)

	if f.Answer != "He/Him" {
		t.Errorf("pronoun answer = %q, want He/Him", f.Answer)
	}
	if f.Source != models.AnswerSourceProfile {
		t.Errorf("source = %q, want profile", f.Source)
	}
}

func TestResolveSkipsCurrentRoleEndDate(t *testing.T) {
	r := newTestResolver(nil, nil)

	f := &models.FormField{Label: "End Date Month", ElementID: "end-date-month-0", Type: models.FieldTypeText}
	r.Resolve(context.Background(), f)
	if f.Status != models.FieldStatusSkipped {
		t.Errorf("current role end date: status = %q, want skipped", f.Status)
	}

	// The previous role has ended; its end date fills normally
	prev := &models.FormField{Label: "End Date Month", ElementID: "end-date-month-1", Type: models.FieldTypeText}
	r.Resolve(context.Background(), prev)
	if prev.Status == models.FieldStatusSkipped {
		t.Error("ended role end date should not be skipped")
	}
	if prev.Answer != "February" {
		t.Errorf("previous end month = %q, want February", prev.Answer)
	}
}

func TestResolveEducationEndDateNotSkipped(t *testing.T) {
	r := newTestResolver(nil, nil)

	f := &models.FormField{Label: "Education End Year", ElementID: "education-end-year-0", Type: models.FieldTypeText}
	r.Resolve(context.Background(), f)

	if f.Status == models.FieldStatusSkipped {
		t.Error("education end dates are never skipped")
	}
	if f.Answer != "2012" {
		t.Errorf("education end year = %q, want 2012", f.Answer)
	}
}

func TestResolveCountryFromOptions(t *testing.T) {
	r := newTestResolver(nil, nil)

	f := &models.FormField{
		Label:   "Country of residence",
		Type:    models.FieldTypeSelect,
		Options: []string{"Canada", "United States", "United Kingdom"},
	}
	r.Resolve(context.Background(), f)

	if f.Answer != "United States" {
		t.Errorf("country answer = %q, want United States", f.Answer)
	}
}

func TestResolveOracleForOpenQuestion(t *testing.T) {
	oracle := &fakeOracle{enabled: true, generateReply: "I admire the team's work on developer tools."}
	r := newTestResolver(nil, oracle)

	f := &models.FormField{Label: "Why do you want to work here?", Type: models.FieldTypeTextarea}
	r.Resolve(context.Background(), f)

	if f.Source != models.AnswerSourceAI || f.Answer == "" {
		t.Errorf("answer=%q source=%q, want oracle answer", f.Answer, f.Source)
	}
	if oracle.generateCalls != 1 {
		t.Errorf("generate calls = %d, want 1", oracle.generateCalls)
	}
}

func TestResolveUnanswerableNeedsInput(t *testing.T) {
	r := newTestResolver(nil, nil)

	f := &models.FormField{Label: "Describe your most unusual project", Type: models.FieldTypeTextarea}
	r.Resolve(context.Background(), f)

	if f.Status != models.FieldStatusNeedsInput || f.Source != models.AnswerSourceNone {
		t.Errorf("status=%q source=%q, want needs_input/none", f.Status, f.Source)
	}
}
