// Package mail sends plain text mail through the local MTA.
package mail

import (
	"context"
	"fmt"
	"os/user"

	gomail "github.com/wneessen/go-mail"
)

const (
	// Host and Port of the local MTA.
	Host = "localhost"
	Port = 25
)

// Message is a plain text mail.
type Message struct {
	From    string // defaults to <user>@localhost
	To      string
	Subject string
	Body    string
}

// Sender delivers built messages.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*gomail.Msg) error
}

// DefaultFrom is <login>@localhost.
func DefaultFrom() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}
	return u.Username + "@" + Host, nil
}

// Build turns m into a UTF-8 text/plain message.
func Build(m Message) (*gomail.Msg, error) {
	from := m.From
	if from == "" {
		var err error
		if from, err = DefaultFrom(); err != nil {
			return nil, err
		}
	}

	msg := gomail.NewMsg(gomail.WithCharset(gomail.CharsetUTF8))
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)
	return msg, nil
}

// NewLocalSender connects to the MTA on localhost:25 without TLS.
func NewLocalSender() (Sender, error) {
	c, err := gomail.NewClient(Host, gomail.WithPort(Port), gomail.WithTLSPolicy(gomail.NoTLS))
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return c, nil
}

// Send builds m and hands it to s.
func Send(ctx context.Context, s Sender, m Message) error {
	msg, err := Build(m)
	if err != nil {
		return err
	}
	if err := s.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
