package email

import (
	"fmt"
	"log"
	"net/smtp"
)

// Service sends HTML email over SMTP. With no host configured it runs in
// log-only mode: the message that would have been sent is written to the log
// instead, which is the default for this build.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends the buyer-facing confirmation for one order.
func (s *Service) SendOrderConfirmation(to, orderNumber, buyerName string, total float64, lines []OrderLine) error {
	subject := fmt.Sprintf("Confirmación de Pedido #%s - TurismoPortal", orderNumber)
	body := BuildCustomerConfirmationBody(orderNumber, buyerName, total, lines)
	return s.send(to, subject, body)
}

// SendInternalNotification sends the staff copy of a new order to one
// configured internal address.
func (s *Service) SendInternalNotification(to, orderNumber, buyerName, buyerEmail string, total float64, lines []OrderLine) error {
	subject := fmt.Sprintf("Nuevo Pedido #%s", orderNumber)
	body := BuildInternalNotificationBody(orderNumber, buyerName, buyerEmail, total, lines)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	if s.host == "" {
		log.Printf("[Email] (log-only) To: %s Subject: %s\n%s", to, subject, body)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
