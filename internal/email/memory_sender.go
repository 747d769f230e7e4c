package email

import "context"

// MemorySender is a Sender that keeps emails in memory. Only meant for tests.
type MemorySender struct {
	Emails []struct {
		From      Address
		Recipient Address
		Message   Message
	}
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, from, recipient Address, msg Message) error {
	s.Emails = append(s.Emails, struct {
		From      Address
		Recipient Address
		Message   Message
	}{
		From:      from,
		Recipient: recipient,
		Message:   msg,
	})
	return nil
}
