package email

import (
	"context"
	"fmt"
	"strings"
)

// TemplateElement is used by a renderer to identify the different parts of an email template.
type TemplateElement string

const (
	ElementSubject TemplateElement = "subject"
	ElementHTML    TemplateElement = "html"
	ElementText    TemplateElement = "text"
)

// Message is a fully rendered email message.
type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Renderer is responsible for rendering email templates.
type Renderer interface {
	Render(ctx context.Context, name string, element TemplateElement, data any) (string, error)
}

// Sender is responsible for actually delivering an email. Senders are
// fallible, failures are reported as opaque transport errors.
type Sender interface {
	Send(ctx context.Context, from, recipient Address, msg Message) error
}

// Service renders templated emails and hands them to a sender.
type Service struct {
	renderer Renderer
	sender   Sender
	from     Address
}

func NewService(renderer Renderer, sender Sender, from Address) *Service {
	return &Service{
		renderer: renderer,
		sender:   sender,
		from:     from,
	}
}

// Send renders the named template with the provided data and sends the
// result to the recipient.
func (s *Service) Send(ctx context.Context, name string, recipient Address, data any) error {
	var msg Message

	for _, target := range []struct {
		element TemplateElement
		out     *string
	}{
		{ElementSubject, &msg.Subject},
		{ElementHTML, &msg.HTMLBody},
		{ElementText, &msg.TextBody},
	} {
		out, err := s.renderer.Render(ctx, name, target.element, data)
		if err != nil {
			return fmt.Errorf("failed to render %s of email %q: %w", target.element, name, err)
		}

		*target.out = strings.TrimSpace(out)
	}

	if err := s.sender.Send(ctx, s.from, recipient, msg); err != nil {
		return fmt.Errorf("failed to send email %q: %w", name, err)
	}

	return nil
}
