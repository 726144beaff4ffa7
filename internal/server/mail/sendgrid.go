package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridNotifier delivers lifecycle emails through the SendGrid API.
type SendGridNotifier struct {
	client *sendgrid.Client
	from   string
}

// NewSendGridNotifier constructs a notifier sending from the given address.
func NewSendGridNotifier(apiKey, from string) *SendGridNotifier {
	return &SendGridNotifier{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (n *SendGridNotifier) send(ctx context.Context, email, name, subject, body string) error {
	from := sgmail.NewEmail("Task-It", n.from)
	to := sgmail.NewEmail(name, email)
	msg := sgmail.NewSingleEmail(from, subject, to, body, "")

	resp, err := n.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d", resp.StatusCode)
	}
	return nil
}

func (n *SendGridNotifier) SendWelcome(ctx context.Context, email, name string) error {
	body := fmt.Sprintf("Welcome to Task-It, %s.\nHow are things with you?", name)
	return n.send(ctx, email, name, "Welcome to Task-It", body)
}

func (n *SendGridNotifier) SendCancellation(ctx context.Context, email, name string) error {
	body := fmt.Sprintf("Sorry to see you go, %s :(\nHow can we be better?", name)
	return n.send(ctx, email, name, "Sorry to see you go", body)
}
