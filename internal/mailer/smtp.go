package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"time"

	mail "gopkg.in/mail.v2"
)

type smtpClient struct {
	fromEmail string
	dialer    *mail.Dialer
}

func NewSMTPClient(host string, port int, username, password, fromEmail string) (Client, error) {
	if host == "" {
		return nil, errors.New("smtp host is required")
	}

	return &smtpClient{
		fromEmail: fromEmail,
		dialer:    mail.NewDialer(host, port, username, password),
	}, nil
}

// Send renders the named template ("subject" and "body" blocks) and delivers
// it over SMTP, retrying transient failures. Returns the number of attempts
// used.
func (m *smtpClient) Send(templateFile, username, email string, data any) (int, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return -1, err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return -1, err
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return -1, err
	}

	message := mail.NewMessage()
	message.SetAddressHeader("From", m.fromEmail, FromName)
	message.SetAddressHeader("To", email, username)
	message.SetHeader("Subject", subject.String())
	message.SetBody("text/html", body.String())

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := m.dialer.DialAndSend(message); err != nil {
			lastErr = err
			time.Sleep(time.Second * time.Duration(i+1))
			continue
		}
		return i + 1, nil
	}

	return -1, fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
