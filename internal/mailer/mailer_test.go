package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressString(t *testing.T) {
	assert.Equal(t, "Jo Doe <jo@example.com>",
		Address{Name: "Jo Doe", Address: "jo@example.com"}.String())
	assert.Equal(t, "jo@example.com",
		Address{Address: "jo@example.com"}.String())
}

func TestDeliveryErrorUnwrap(t *testing.T) {
	cause := errors.New("throttled")
	err := &DeliveryError{Transport: "ses", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ses")

	var de *DeliveryError
	assert.ErrorAs(t, error(err), &de)
}

func TestLogSinkNeverFails(t *testing.T) {
	err := LogSink{}.Send(context.Background(),
		Message{To: Address{Address: "jo@example.com"}, Subject: "Hi"},
		Content{Text: "hello"})
	assert.NoError(t, err)
}
