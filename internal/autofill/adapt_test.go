package autofill

import (
	"testing"

	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/models"
)

func TestAdaptAnswer(t *testing.T) {
	logger := common.GetLogger()
	tests := []struct {
		name   string
		field  models.FormField
		answer string
		want   string
	}{
		{
			name:   "month name against MM placeholder",
			field:  models.FormField{Placeholder: "MM"},
			answer: "September",
			want:   "09",
		},
		{
			name:   "month name against single M placeholder",
			field:  models.FormField{Placeholder: "M"},
			answer: "March",
			want:   "03",
		},
		{
			name:   "month name against maxlength two",
			field:  models.FormField{MaxLength: 2},
			answer: "December",
			want:   "12",
		},
		{
			name:   "month abbreviation against number input",
			field:  models.FormField{InputType: "number"},
			answer: "Sep",
			want:   "09",
		},
		{
			name:   "month name against tel input",
			field:  models.FormField{InputType: "tel"},
			answer: "May",
			want:   "05",
		},
		{
			name:   "month name against digits pattern",
			field:  models.FormField{Pattern: "[0-9]{2}"},
			answer: "September",
			want:   "09",
		},
		{
			name:   "year extracted for YYYY placeholder",
			field:  models.FormField{Placeholder: "YYYY"},
			answer: "June 2021",
			want:   "2021",
		},
		{
			name:   "two digit year for YY placeholder",
			field:  models.FormField{Placeholder: "YY"},
			answer: "2021",
			want:   "21",
		},
		{
			name:   "digits only pattern strips text",
			field:  models.FormField{Pattern: "[0-9]{5}"},
			answer: "zip 27601",
			want:   "27601",
		},
		{
			name:   "truncated to maxlength",
			field:  models.FormField{MaxLength: 5},
			answer: "overflowing",
			want:   "overf",
		},
		{
			name:   "unconstrained passes through",
			field:  models.FormField{},
			answer: "September",
			want:   "September",
		},
		{
			name:   "month name without short slot passes through",
			field:  models.FormField{Placeholder: "Month"},
			answer: "September",
			want:   "September",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adaptAnswer(&tt.field, tt.answer, logger)
			if got != tt.want {
				t.Errorf("adaptAnswer(%q) = %q, want %q", tt.answer, got, tt.want)
			}
		})
	}
}
