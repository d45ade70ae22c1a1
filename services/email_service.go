package services

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"

	"github.com/Dosada05/rl-prono/config"
)

//go:embed templates/emails/*.html
var emailTemplates embed.FS

// InviteMailer отправляет приглашения в частные лиги.
type InviteMailer interface {
	SendPrivateLeagueInvite(to, leagueName, inviterName, inviteCode string) error
}

type EmailService struct {
	cfg       *config.Config
	templates *template.Template
	send      func(to []string, msg []byte) error
}

func NewEmailService(cfg *config.Config) (*EmailService, error) {
	t, err := template.ParseFS(emailTemplates, "templates/emails/*.html")
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга шаблонов писем: %w", err)
	}
	s := &EmailService{cfg: cfg, templates: t}
	s.send = s.deliver
	return s, nil
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")
	return s.send(to, msg)
}

func (s *EmailService) deliver(to []string, msg []byte) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	tlsconfig := &tls.Config{ServerName: s.cfg.SMTPHost}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Прямое TLS-соединение (обычно порт 465)
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("ошибка MAIL FROM: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("ошибка RCPT TO: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия DATA: %w", err)
	}
	return nil
}

func (s *EmailService) GenerateEmailBody(name string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", name, err)
	}
	return body.String(), nil
}

func (s *EmailService) SendPrivateLeagueInvite(to, leagueName, inviterName, inviteCode string) error {
	subject := fmt.Sprintf("%s invited you to %s", inviterName, leagueName)
	data := struct {
		LeagueName  string
		InviterName string
		InviteCode  string
		JoinLink    string
	}{
		LeagueName:  leagueName,
		InviterName: inviterName,
		InviteCode:  inviteCode,
		JoinLink:    fmt.Sprintf("%s/private-leagues/join?code=%s", s.cfg.PublicURL, url.QueryEscape(inviteCode)),
	}
	htmlBody, err := s.GenerateEmailBody("private_league_invite.html", data)
	if err != nil {
		return fmt.Errorf("ошибка генерации тела письма-приглашения: %w", err)
	}
	return s.SendEmail([]string{to}, subject, htmlBody)
}
