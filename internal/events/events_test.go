package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	payload, err := Encode(AccountCreated, AccountCreatedEvent{AccountID: "acc-1", AccountType: "SAVINGS"}, at)
	require.NoError(t, err)

	event, err := Decode(string(payload))
	require.NoError(t, err)
	assert.Equal(t, AccountCreated, event.Type)
	assert.True(t, at.Equal(event.Timestamp))

	data, ok := event.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "acc-1", data["accountId"])
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	_, err := Decode(42)
	assert.Error(t, err)

	_, err = Decode("{not json")
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), CustomerEventsStream, CustomerCreated, nil))
}
