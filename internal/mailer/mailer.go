// Package mailer defines the outbound mail sink and its SES implementation.
package mailer

import (
	"context"
	"fmt"
)

// Address is a named email address.
type Address struct {
	Name    string
	Address string
}

// Message is the envelope of one outbound email. EncryptionKeys carries the
// recipient's armored GPG public keys for transports that support encrypted
// delivery; transports without that capability ignore them.
type Message struct {
	From           Address
	To             Address
	Subject        string
	EncryptionKeys []string
}

// Content is the rendered body of one outbound email. MergeData holds the
// substitution values the templates were rendered with, for sinks that do
// their own templating or logging.
type Content struct {
	HTML      string
	Text      string
	MergeData map[string]any
}

// Sink delivers rendered messages. Implementations own delivery after Send
// returns; a nil error means the message was accepted by the transport, not
// that it reached an inbox.
type Sink interface {
	Send(ctx context.Context, msg Message, content Content) error
}

// DeliveryError wraps a transport failure.
type DeliveryError struct {
	Transport string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Transport, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Address)
}
