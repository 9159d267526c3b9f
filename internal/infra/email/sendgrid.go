package emailsvc

import (
	"fmt"
	"net/http"

	"facilitator_activity_tracker/internal/domain/email"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridTransport delivers messages through the SendGrid API.
type SendgridTransport struct {
	key  string
	from *sgmail.Email
}

var _ email.Transport = (*SendgridTransport)(nil)

func NewSendgridTransport(apiKey, fromEmail, fromName string) *SendgridTransport {
	return &SendgridTransport{
		key:  apiKey,
		from: sgmail.NewEmail(fromName, fromEmail),
	}
}

func (t *SendgridTransport) Send(msg *email.Message) (string, error) {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.Name, msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(t.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))

	req := sendgrid.GetRequest(t.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return "", fmt.Errorf("sendgrid send failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("sendgrid send failed - status: %d - body: %s", res.StatusCode, res.Body)
	}

	messageID := ""
	if ids, ok := res.Headers["X-Message-Id"]; ok && len(ids) > 0 {
		messageID = ids[0]
	}
	return messageID, nil
}
