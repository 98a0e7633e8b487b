package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	texttemplate "text/template"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"

	gopkgmail "gopkg.in/gomail.v2"
)

type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	TMPLDir      string
}

// EmailSender renders the templates in TMPLDir (<name>.html plus <name>.txt)
// and delivers over SMTP.
type EmailSender struct {
	cfg Config
}

func NewEmailSender(cfg Config) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) OrderStatusChanged(_ context.Context, email string, o *models.Order) error {
	data := map[string]any{
		"OrderID":    o.ID.String(),
		"Status":     string(o.Status),
		"TrackingID": deref(o.TrackingID),
		"TotalCents": o.TotalCents,
	}
	return s.send(email, "Order "+o.ID.String()+": "+string(o.Status), "order_status", data)
}

func (s *EmailSender) SpecialOrderStatusChanged(_ context.Context, email string, so *models.SpecialOrder) error {
	data := map[string]any{
		"OrderID":    so.ID.String(),
		"Status":     string(so.Status),
		"TrackingID": deref(so.TrackingID),
		"PaymentURL": deref(so.PaymentURL),
	}
	if so.PriceCents != nil {
		data["PriceCents"] = *so.PriceCents
	}
	return s.send(email, "Custom order "+so.ID.String()+": "+string(so.Status), "special_order_status", data)
}

func (s *EmailSender) ReturnReviewed(_ context.Context, email string, req *models.ReturnRequest) error {
	data := map[string]any{
		"ReturnID":  req.ID.String(),
		"Status":    string(req.Status),
		"AdminNote": deref(req.AdminNote),
	}
	return s.send(email, "Return request "+req.ID.String()+": "+string(req.Status), "return_reviewed", data)
}

func (s *EmailSender) SignupOTP(_ context.Context, email, code string) error {
	return s.send(email, "Your verification code", "signup_otp", map[string]any{"Code": code})
}

func (s *EmailSender) send(to, subject, tmplName string, data map[string]any) error {
	htmlBody, err := s.renderHTML(tmplName, data)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	plainBody, err := s.renderPlain(tmplName, data)
	if err != nil {
		return fmt.Errorf("render plain: %w", err)
	}

	m := gopkgmail.NewMessage()
	m.SetHeader("From", s.cfg.SMTPFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	d := gopkgmail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPassword)
	d.SSL = true
	return d.DialAndSend(m)
}

func (s *EmailSender) renderHTML(tmplName string, data map[string]any) (string, error) {
	path := filepath.Join(s.cfg.TMPLDir, tmplName+".html")
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(tmplName).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailSender) renderPlain(tmplName string, data map[string]any) (string, error) {
	path := filepath.Join(s.cfg.TMPLDir, tmplName+".txt")
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	tmpl, err := texttemplate.New(tmplName).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
