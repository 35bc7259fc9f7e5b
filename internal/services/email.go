package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"gopkg.in/gomail.v2"

	"storefront/internal/config"
	"storefront/internal/models"
)

// Sender delivers a composed message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService sends order confirmations over SMTP. Without credentials it
// only logs what it would have sent.
type EmailService struct {
	sender Sender
	from   string
	logger *slog.Logger
}

// NewEmailService builds the service from SMTP settings.
func NewEmailService(cfg config.SMTPConfig, logger *slog.Logger) *EmailService {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled() {
		logger.Info("SMTP credentials not set, order mail disabled")
		return &EmailService{from: cfg.From, logger: logger}
	}
	return &EmailService{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:   cfg.From,
		logger: logger,
	}
}

// WithSender replaces the SMTP dialer.
func (es *EmailService) WithSender(s Sender) *EmailService {
	es.sender = s
	return es
}

// Enabled reports whether mail is actually delivered.
func (es *EmailService) Enabled() bool {
	return es.sender != nil
}

var orderTemplate = template.Must(template.New("order").Parse(`
<h2>Thank you for your order, {{.Name}}!</h2>
<p>We have received your order and are getting it ready.</p>
<table>
{{range .Items}}<tr><td>{{.Product.Title}}</td><td>x{{.Count}}</td><td>{{printf "%.2f" .Subtotal}} EGP</td></tr>
{{end}}</table>
<p><strong>Total: {{printf "%.2f" .Total}} EGP</strong></p>
<p>Shipping to: {{.Address.Details}}, {{.Address.City}} ({{.Address.Phone}})</p>
`))

// OrderConfirmation is the data rendered into the confirmation mail.
type OrderConfirmation struct {
	To      string
	Name    string
	Items   []models.CartItem
	Total   float64
	Address models.ShippingAddress
}

// SendOrderConfirmation mails a summary of the checked-out cart.
func (es *EmailService) SendOrderConfirmation(oc OrderConfirmation) error {
	if oc.To == "" {
		return fmt.Errorf("order confirmation: no recipient")
	}
	if !es.Enabled() {
		es.logger.Info("Order mail disabled, skipping confirmation",
			"to", oc.To, "items", len(oc.Items), "total", oc.Total)
		return nil
	}

	var body bytes.Buffer
	if err := orderTemplate.Execute(&body, oc); err != nil {
		return fmt.Errorf("rendering order mail: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", oc.To)
	m.SetHeader("Subject", "Order confirmation - FreshCart")
	m.SetBody("text/html", body.String())

	if err := es.sender.DialAndSend(m); err != nil {
		es.logger.Error("Order mail failed", "to", oc.To, "error", err)
		return fmt.Errorf("sending order mail: %w", err)
	}

	es.logger.Info("Order mail sent", "to", oc.To)
	return nil
}
