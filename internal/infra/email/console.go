// Package emailsvc provides delivery transports for outbound notifications.
package emailsvc

import (
	"fmt"
	"strings"
	"time"

	"facilitator_activity_tracker/internal/domain/email"
	"facilitator_activity_tracker/internal/infra/logger"

	"github.com/google/uuid"
)

// ConsoleTransport writes messages to the application log instead of sending
// them. It is the development default.
type ConsoleTransport struct {
	from       string
	subjPrefix string
}

var _ email.Transport = (*ConsoleTransport)(nil)

func NewConsoleTransport(fromEmail, fromName string) *ConsoleTransport {
	return &ConsoleTransport{
		from:       fmt.Sprintf("%s <%s>", fromName, fromEmail),
		subjPrefix: "[" + fromName + "] ",
	}
}

func (t *ConsoleTransport) Send(msg *email.Message) (string, error) {
	messageID := uuid.NewString()

	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s\r\n", t.from)
	fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(body, "Message-ID: <%s>\r\n", messageID)
	fmt.Fprintf(body, "Subject: %s\r\n", t.subjPrefix+msg.Subject)
	fmt.Fprintf(body, "To: %s <%s>\r\n", msg.Name, msg.To)
	fmt.Fprintf(body, "\r\n%s\r\n", msg.Body)

	logger.Log.Info(body.String())
	return messageID, nil
}
