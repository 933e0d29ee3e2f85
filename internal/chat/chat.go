// Package chat holds the per-visit conversation on the detail step.
package chat

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jask/pillrx/internal/logging"
)

// ErrEmptyMessageIgnored is returned for blank input. Nothing is appended.
var ErrEmptyMessageIgnored = errors.New("empty message ignored")

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Message struct {
	ID     string
	Sender Sender
	Text   string
	At     time.Time
}

// Responder produces the bot reply to a user message.
type Responder interface {
	Respond(ctx context.Context, subject, text string) (string, error)
}

// EchoResponder replies with the user's text unchanged.
type EchoResponder struct{}

func (EchoResponder) Respond(_ context.Context, _ string, text string) (string, error) {
	return text, nil
}

// Conversation is an append-only message list. OnAppend runs after every
// append; the view uses it to keep the latest message in sight.
type Conversation struct {
	Subject   string
	OnAppend  func(Message)
	responder Responder
	messages  []Message
	log       *logrus.Entry
	now       func() time.Time
}

func New(subject string, responder Responder, log *logrus.Entry) *Conversation {
	if responder == nil {
		responder = EchoResponder{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Conversation{
		Subject:   subject,
		responder: responder,
		log:       log.WithField("component", "chat"),
		now:       time.Now,
	}
}

// Send appends the user's message and then, synchronously, the reply.
// A responder failure keeps the user message and drops the reply.
func (c *Conversation) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessageIgnored
	}
	c.append(SenderUser, text)
	reply, err := c.responder.Respond(ctx, c.Subject, text)
	if err != nil {
		c.log.WithError(err).Warn("responder failed")
		return nil
	}
	c.append(SenderBot, reply)
	return nil
}

func (c *Conversation) Messages() []Message {
	return slices.Clone(c.messages)
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

func (c *Conversation) append(sender Sender, text string) {
	msg := Message{ID: uuid.NewString(), Sender: sender, Text: text, At: c.now().UTC()}
	c.messages = append(c.messages, msg)
	if c.OnAppend != nil {
		c.OnAppend(msg)
	}
}
