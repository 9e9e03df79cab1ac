// Package messaging carries outbound text between the conversation core and
// the transports.
package messaging

import (
	"context"
	"sync"
)

// Message is one outbound text addressed to a phone (or chat id).
type Message struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// Sender delivers a message. Implementations report delivery failures as errors.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, to, text string) error

func (f SenderFunc) Send(ctx context.Context, to, text string) error { return f(ctx, to, text) }

// Capture is a Sender that records messages instead of delivering them. The
// engine hands one to every turn and returns what it collected.
type Capture struct {
	mu       sync.Mutex
	messages []Message
}

func (c *Capture) Send(_ context.Context, to, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{To: to, Text: text})
	return nil
}

// Messages returns a copy of everything captured so far.
func (c *Capture) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of captured messages.
func (c *Capture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Split separates the direct reply to origin (the first message addressed to
// it) from side-channel notifications, which include any later messages to
// origin.
func Split(origin string, messages []Message) (reply string, outbox []Message) {
	replied := false
	for _, m := range messages {
		if m.To == "" || m.Text == "" {
			continue
		}
		if !replied && m.To == origin {
			reply = m.Text
			replied = true
			continue
		}
		outbox = append(outbox, m)
	}
	return reply, outbox
}
