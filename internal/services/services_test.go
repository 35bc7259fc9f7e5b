package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"storefront/internal/config"
	"storefront/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

func TestVisitorService_ReusesPerToken(t *testing.T) {
	vs := NewVisitorService(time.Minute, discardLogger())
	defer vs.Close()

	a := vs.For("token-a")
	assert.Same(t, a, vs.For("token-a"))
	assert.NotSame(t, a, vs.For("token-b"))
	assert.Equal(t, 2, vs.Len())

	vs.Drop("token-a")
	assert.Equal(t, 1, vs.Len())
	assert.NotSame(t, a, vs.For("token-a"))
}

func TestVisitorService_AnonymousNotShared(t *testing.T) {
	vs := NewVisitorService(time.Minute, discardLogger())
	defer vs.Close()

	assert.NotSame(t, vs.For(""), vs.For(""))
	assert.Zero(t, vs.Len())
	vs.Drop("")
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func confirmation() OrderConfirmation {
	return OrderConfirmation{
		To:   "buyer@example.com",
		Name: "Buyer",
		Items: []models.CartItem{{
			Count:   2,
			Price:   150,
			Product: models.ProductRef{Product: models.Product{Title: "Jacket"}},
		}},
		Total:   300,
		Address: models.ShippingAddress{Details: "12 Nile St", Phone: "01012345678", City: "Cairo"},
	}
}

func TestEmailService_DisabledWithoutCredentials(t *testing.T) {
	es := NewEmailService(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, discardLogger())
	assert.False(t, es.Enabled())
	assert.NoError(t, es.SendOrderConfirmation(confirmation()))
}

func TestEmailService_SendsOrderConfirmation(t *testing.T) {
	sender := &fakeSender{}
	es := NewEmailService(config.SMTPConfig{
		Host: "smtp.example.com", Port: 587, User: "u", Pass: "p", From: "shop@example.com",
	}, discardLogger()).WithSender(sender)
	require.True(t, es.Enabled())

	require.NoError(t, es.SendOrderConfirmation(confirmation()))
	require.Len(t, sender.sent, 1)

	m := sender.sent[0]
	assert.Equal(t, []string{"buyer@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"shop@example.com"}, m.GetHeader("From"))

	var body bytes.Buffer
	_, err := m.WriteTo(&body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "Jacket")
	assert.Contains(t, body.String(), "300.00")
}

func TestEmailService_Errors(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	es := NewEmailService(config.SMTPConfig{User: "u", Pass: "p"}, discardLogger()).WithSender(sender)

	assert.ErrorContains(t, es.SendOrderConfirmation(confirmation()), "smtp down")

	oc := confirmation()
	oc.To = ""
	assert.Error(t, es.SendOrderConfirmation(oc))
}

func TestSecurityLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSecurityLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	sl.LogSecurityEvent(EventSignInFailed, "a@b.c", "10.0.0.1")
	sl.LogSecurityEvent(EventSignIn, "a@b.c", "10.0.0.1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "WARN", first["level"])
	assert.Equal(t, "security", first["component"])
	assert.Equal(t, "signin_failed", first["event"])
	assert.Equal(t, "10.0.0.1", first["ip"])
	assert.Equal(t, "INFO", second["level"])

	var nilLogger *SecurityLogger
	nilLogger.LogSecurityEvent(EventSignIn, "", "")
}
