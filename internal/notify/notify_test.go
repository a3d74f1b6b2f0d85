package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/delivro/freightbridge/internal/notify"
	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter records messages written.
type fakeWriter struct {
	msgs []skafka.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := notify.NewKafkaPublisherWithWriter(fw)

	event := notify.LegEvent{
		Type:           "pickup",
		Carrier:        "borealair",
		TrackingNumber: "871002345678",
		City:           "Yellowknife",
	}

	err := p.Publish(context.Background(), "871002345678", event)
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)

	assert.Equal(t, []byte("871002345678"), fw.msgs[0].Key)

	var got notify.LegEvent
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &got))
	assert.Equal(t, event, got)
}

func TestNop_Publish(t *testing.T) {
	p := notify.Nop{}
	assert.NoError(t, p.Publish(context.Background(), "k", "anything"))
	assert.NoError(t, p.Close())
}
