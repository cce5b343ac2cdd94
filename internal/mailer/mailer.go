// Package mailer sends templated transactional email (OTP verification
// and password reset) over SMTP.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Mailer renders the embedded templates and delivers them through an
// SMTP dialer. Construct one with New and inject it where mail is sent;
// there is no package-level instance.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	tmpl   *template.Template
}

func New(host string, port int, user, pass, from string) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		tmpl:   tmpl,
	}, nil
}

// SendOTP mails a verification code.
func (m *Mailer) SendOTP(to, subject, otp string) error {
	return m.send(to, subject, "otp.html", map[string]string{"OTP": otp})
}

// SendReset mails a password-reset link.
func (m *Mailer) SendReset(to, subject, resetURL string) error {
	return m.send(to, subject, "reset.html", map[string]string{"URL": resetURL})
}

func (m *Mailer) send(to, subject, tmplName string, data map[string]string) error {
	var body bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&body, tmplName, data); err != nil {
		return fmt.Errorf("render %s: %w", tmplName, err)
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
