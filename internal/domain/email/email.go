package email

// Message is a single outbound email. Bodies are plain text; the dashboard
// and reminder templates do not need HTML.
type Message struct {
	To      string
	Name    string
	Subject string
	Body    string
}

// Transport is any service that can deliver a single message. A transient
// failure is reported as an error so the queue's retry machinery re-attempts;
// a successful send returns the provider's message id.
type Transport interface {
	Send(msg *Message) (messageID string, err error)
}
