package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendPurchaseReceipt(toEmail string, quantity, bonus int) error
	SendWelcome(toEmail, firstName string, usesOwnKeys bool) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderName, clientURL string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		clientURL:   clientURL,
	}
}

func (s *emailService) newMessage(toEmail, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

func (s *emailService) SendPurchaseReceipt(toEmail string, quantity, bonus int) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thanks for your purchase!</h2>
			<p>%d credits have been added to your Gen8n account.</p>
			<p>Bonus credits: <strong>%d</strong></p>
			<p>Total credited: <strong>%d</strong></p>
			<a href="%s/dashboard" style="background-color: #FF6D5A; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Generate a workflow</a>
		</div>
	`, quantity, bonus, quantity+bonus, s.clientURL)

	if err := s.dialer.DialAndSend(s.newMessage(toEmail, "Your Gen8n credits are ready", body)); err != nil {
		return fmt.Errorf("send purchase receipt to %s: %w", toEmail, err)
	}
	return nil
}

func (s *emailService) SendWelcome(toEmail, firstName string, usesOwnKeys bool) error {
	name := firstName
	if name == "" {
		name = "there"
	}
	billing := "Your free welcome credits are waiting in your account."
	if usesOwnKeys {
		billing = "Generations will run on your own API keys."
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome to Gen8n, %s!</h2>
			<p>Describe an automation in plain language and we will build the n8n workflow for you.</p>
			<p>%s</p>
			<a href="%s/dashboard" style="background-color: #FF6D5A; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open your dashboard</a>
		</div>
	`, html.EscapeString(name), billing, s.clientURL)

	if err := s.dialer.DialAndSend(s.newMessage(toEmail, "Welcome to Gen8n", body)); err != nil {
		return fmt.Errorf("send welcome email to %s: %w", toEmail, err)
	}
	return nil
}
