package email

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"glycoanalyzer/internal/application/report"
	"glycoanalyzer/internal/shared/config"
	"glycoanalyzer/internal/shared/services/markdown"
)

// ReportSender delivers a finalized analysis report to a practitioner.
type ReportSender interface {
	SendAnalysisReport(to string, projection report.Projection) error
}

type SMTPReportService struct {
	cfg      *config.EmailConfig
	dialer   *gomail.Dialer
	markdown markdown.Service
}

func NewSMTPReportService(cfg *config.EmailConfig, md markdown.Service) *SMTPReportService {
	return &SMTPReportService{
		cfg:      cfg,
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		markdown: md,
	}
}

func (s *SMTPReportService) SendAnalysisReport(to string, projection report.Projection) error {
	body := projection.Markdown(time.Now())

	htmlBody, err := s.markdown.ToHTMLSanitized(body)
	if err != nil {
		return fmt.Errorf("failed to render report body: %w", err)
	}

	subject := fmt.Sprintf("Rapport glycémique - %s", projection.FullName)

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.FromAddress, s.cfg.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	return nil
}

// NoopReportService is used when SMTP is not configured. Sending reports is
// an optional delivery channel, not part of the analysis flow.
type NoopReportService struct{}

func NewNoopReportService() *NoopReportService { return &NoopReportService{} }

func (*NoopReportService) SendAnalysisReport(string, report.Projection) error {
	return fmt.Errorf("email delivery is not configured")
}
