package mailer

import (
	"fmt"
	"strings"

	"github.com/talkincode/gomarket/config"
	"github.com/talkincode/gomarket/internal/domain"
	"gopkg.in/gomail.v2"
)

// SmtpMailer sends checkout confirmation mails. Delivery failures are the
// caller's problem to log; checkout never blocks on mail.
type SmtpMailer struct {
	cfg config.MailConfig
}

func NewSmtpMailer(cfg config.MailConfig) *SmtpMailer {
	return &SmtpMailer{cfg: cfg}
}

func (m *SmtpMailer) SendOrderConfirmation(to string, orders []domain.Order) error {
	if to == "" {
		return nil
	}

	var sb strings.Builder
	var total float64
	sb.WriteString("Thank you for your purchase.\n\n")
	for _, order := range orders {
		sb.WriteString(fmt.Sprintf("order %d: quantity %d, price %.2f\n",
			order.ID, order.Quantity, order.Price))
		total += order.Price
	}
	sb.WriteString(fmt.Sprintf("\ntotal: %.2f\n", total))

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Order confirmation (%d items)", len(orders)))
	msg.SetBody("text/plain", sb.String())

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Passwd)
	return dialer.DialAndSend(msg)
}
