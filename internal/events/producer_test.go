package events

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := &Recorder{}
	ctx := context.Background()
	require.NoError(t, r.PublishEvent(ctx, TopicOrders, "1", map[string]any{"type": "order_created"}))
	require.NoError(t, r.PublishEvent(ctx, TopicCart, "u", map[string]any{"type": "cart_item_added"}))

	assert.Len(t, r.Events(), 2)
	assert.Equal(t, []string{"order_created"}, r.Types(TopicOrders))

	r.Err = errors.New("down")
	assert.Error(t, r.PublishEvent(ctx, TopicOrders, "2", nil))
}

func TestNop(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Nop{}.PublishEvent(context.Background(), TopicOrders, "k", struct{}{}))
}

func TestProducer_MarshalError(t *testing.T) {
	t.Parallel()

	p := NewProducer([]string{"127.0.0.1:1"})
	t.Cleanup(func() { _ = p.Close() })

	err := p.PublishEvent(context.Background(), TopicOrders, "k", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json.Marshal")
}

func TestProducer_Kafka(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}

	p := NewProducer([]string{brokers})
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.PublishEvent(context.Background(), TopicOrders, "1", map[string]any{"type": "order_created", "orderID": 1}))
}
