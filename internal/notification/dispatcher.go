package notification

import (
	"context"

	"github.com/example/turismo-portal/internal/infrastructure/kafka"
)

// KafkaDispatcher publishes confirmations to the notification topic. The
// notifier worker (or its lambda twin) picks them up from there, so checkout
// never waits on email delivery.
type KafkaDispatcher struct {
	producer *kafka.Producer
}

func NewKafkaDispatcher(producer *kafka.Producer) *KafkaDispatcher {
	return &KafkaDispatcher{producer: producer}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, confirmation OrderConfirmation) error {
	return d.producer.Publish(ctx, confirmation.OrderNumber, confirmation)
}
