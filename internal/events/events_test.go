package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *model.Order {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-2026-000007",
		Status:      model.OrderStatusProcessing,
		Pricing:     model.PricingResult{Total: 900},
		CreatedAt:   at,
		UpdatedAt:   at.Add(time.Hour),
	}
}

func TestEventConstructors(t *testing.T) {
	o := testOrder()

	placed := OrderPlaced(o)
	assert.Equal(t, TypeOrderPlaced, placed.Type)
	assert.Equal(t, o.ID.String(), placed.OrderID)
	assert.Equal(t, model.Money(900), placed.Total)
	assert.Equal(t, o.CreatedAt, placed.OccurredAt)
	_, err := ulid.Parse(placed.ID)
	assert.NoError(t, err)

	changed := StatusChanged(o, model.OrderStatusPending)
	assert.Equal(t, TypeOrderStatusChanged, changed.Type)
	assert.Equal(t, model.OrderStatusProcessing, changed.Status)
	assert.Equal(t, model.OrderStatusPending, changed.PreviousStatus)
	assert.Equal(t, o.UpdatedAt, changed.OccurredAt)
	assert.NotEqual(t, placed.ID, changed.ID)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	event := OrderPlaced(testOrder())

	mp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "orders", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "ORD-2026-000007", string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var decoded Event
		require.NoError(t, json.Unmarshal(value, &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.Equal(t, TypeOrderPlaced, decoded.Type)
		return nil
	})

	p := newKafkaPublisher(mp, "orders", zerolog.Nop())
	require.NoError(t, p.Publish(context.Background(), event))
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newKafkaPublisher(mp, "orders", zerolog.Nop())
	err := p.Publish(context.Background(), OrderPlaced(testOrder()))

	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher(zerolog.Nop())
	assert.NoError(t, p.Publish(context.Background(), OrderPlaced(testOrder())))
	assert.NoError(t, p.Close())
}
