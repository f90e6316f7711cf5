package services

import (
	"context"
	"fmt"
	"html"

	"ebanking/config"
	"ebanking/events"

	"gopkg.in/gomail.v2"
)

// OperationNotifier уведомляет клиента о записанной операции
type OperationNotifier interface {
	NotifyOperation(ctx context.Context, event events.OperationEvent) error
}

// NopNotifier ничего не отправляет
type NopNotifier struct{}

func (NopNotifier) NotifyOperation(context.Context, events.OperationEvent) error { return nil }

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService отправляет уведомления об операциях по SMTP
type EmailService struct {
	sender mailSender
	from   string
}

// NewEmailService создает EmailService или NopNotifier, если SMTP отключен
func NewEmailService(cfg *config.Config) OperationNotifier {
	if !cfg.SMTP.Enabled {
		return NopNotifier{}
	}
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)
	return &EmailService{sender: dialer, from: cfg.SMTP.From}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NotifyOperation отправляет уведомление об операции; клиентам без email ничего не шлется
func (s *EmailService) NotifyOperation(_ context.Context, event events.OperationEvent) error {
	if event.CustomerEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("%s on account %s", event.Type, event.AccountID)
	body := fmt.Sprintf(`
		<h2>Account operation</h2>
		<p>Dear %s,</p>
		<p>Account: %s</p>
		<p>Operation: %s</p>
		<p>Amount: %.2f</p>
		<p>Description: %s</p>
		<p>New balance: %.2f</p>
		<p>Date: %s</p>
	`,
		html.EscapeString(event.CustomerName),
		event.AccountID,
		event.Type,
		event.Amount,
		html.EscapeString(event.Description),
		event.Balance,
		event.OperationDate.Format("02.01.2006 15:04:05"),
	)

	return s.SendEmail(event.CustomerEmail, subject, body)
}
