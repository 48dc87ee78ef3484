package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/models"
)

// Service renders cover letters to PDF in the configured output directory
type Service struct {
	config *common.DocsConfig
	logger arbor.ILogger
}

func NewService(config *common.DocsConfig, logger arbor.ILogger) *Service {
	return &Service{config: config, logger: logger}
}

// RenderCoverLetter writes a one-page letter for the given posting and
// returns the file path. Body paragraphs are separated by blank lines.
func (s *Service) RenderCoverLetter(profile *models.Profile, job *models.JobInfo, body string) (string, error) {
	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 25, 25)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, profile.FullName(), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	contact := profile.Personal.Email
	if profile.Personal.Phone != "" {
		contact += "  |  " + profile.Personal.Phone
	}
	if profile.Personal.City != "" {
		contact += "  |  " + profile.Personal.City + ", " + profile.Personal.State
	}
	pdf.CellFormat(0, 6, contact, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.CellFormat(0, 6, time.Now().Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	greeting := "Dear Hiring Team,"
	if job.Company != "" {
		greeting = fmt.Sprintf("Dear %s Hiring Team,", job.Company)
	}
	pdf.CellFormat(0, 6, greeting, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, para := range strings.Split(body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		pdf.MultiCell(0, 5.5, para, "", "L", false)
		pdf.Ln(3)
	}

	pdf.Ln(4)
	pdf.CellFormat(0, 6, "Sincerely,", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, profile.FullName(), "", 1, "L", false, 0, "")

	path := filepath.Join(s.config.OutputDir, letterFileName(profile, job))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write cover letter: %w", err)
	}

	s.logger.Info().Str("path", path).Str("company", job.Company).Msg("Cover letter rendered")
	return path, nil
}

func letterFileName(profile *models.Profile, job *models.JobInfo) string {
	name := slug(profile.Personal.LastName)
	company := slug(job.Company)
	if company == "" {
		company = "cover-letter"
	}
	return fmt.Sprintf("%s_%s_%s.pdf", name, company, time.Now().Format("20060102"))
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
