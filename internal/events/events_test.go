package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafka_PublishKeysByOrder(t *testing.T) {
	fw := &fakeWriter{}
	k := &Kafka{w: fw}
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	require.NoError(t, k.Publish(context.Background(), Event{Type: OrderPaid, OrderID: "o-1", Number: "PS-20261018-ABCDEF", Status: "paid", Total: "42.50", At: at}))
	require.Len(t, fw.msgs, 1)

	msg := fw.msgs[0]
	assert.Equal(t, "order-o-1", string(msg.Key))
	assert.Equal(t, OrderPaid, string(msg.Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "42.50", got.Total)
	assert.True(t, at.Equal(got.At))

	require.NoError(t, k.Close())
	assert.True(t, fw.closed)
}

func TestKafka_PublishError(t *testing.T) {
	k := &Kafka{w: &fakeWriter{err: errors.New("broker down")}}
	err := k.Publish(context.Background(), Event{Type: OrderPlaced})
	require.Error(t, err)
	assert.Contains(t, err.Error(), OrderPlaced)
}

// The real writer starts no goroutines until the first write, so building
// and closing one must not leak.
func TestNewKafka_CloseWithoutWrites(t *testing.T) {
	k := NewKafka([]string{"127.0.0.1:1"}, "storefront.orders")
	require.NoError(t, k.Close())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_ = r.Publish(context.Background(), Event{Type: OrderPlaced})
	_ = r.Publish(context.Background(), Event{Type: OrderPaid})
	assert.Equal(t, []string{OrderPlaced, OrderPaid}, r.Types())
	assert.Len(t, r.Events(), 2)
}
