package emailsvc

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"facilitator_activity_tracker/internal/domain/email"

	"github.com/google/uuid"
)

// SMTPTransport delivers messages over a plain SMTP relay. Transport errors
// are returned to the caller so the queue's retry machinery re-attempts.
type SMTPTransport struct {
	addr     string
	host     string
	username string
	password string
	from     string
	fromName string
}

var _ email.Transport = (*SMTPTransport)(nil)

func NewSMTPTransport(host string, port int, username, password, fromEmail, fromName string) *SMTPTransport {
	return &SMTPTransport{
		addr:     fmt.Sprintf("%s:%d", host, port),
		host:     host,
		username: username,
		password: password,
		from:     fromEmail,
		fromName: fromName,
	}
}

func (t *SMTPTransport) Send(msg *email.Message) (string, error) {
	messageID := fmt.Sprintf("%s@%s", uuid.NewString(), t.host)

	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s <%s>\r\n", t.fromName, t.from)
	fmt.Fprintf(body, "To: %s <%s>\r\n", msg.Name, msg.To)
	fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(body, "Message-ID: <%s>\r\n", messageID)
	fmt.Fprintf(body, "Subject: %s\r\n", msg.Subject)
	fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	fmt.Fprint(body, "Content-Type: text/plain; charset=utf-8\r\n")
	fmt.Fprintf(body, "\r\n%s\r\n", msg.Body)

	var auth smtp.Auth
	if t.username != "" {
		auth = smtp.PlainAuth("", t.username, t.password, t.host)
	}

	if err := smtp.SendMail(t.addr, auth, t.from, []string{msg.To}, []byte(body.String())); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}
	return messageID, nil
}
