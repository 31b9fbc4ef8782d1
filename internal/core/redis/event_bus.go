package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type eventBus struct {
	client            *redis.Client
	enrollmentChannel string
	stepChannel       string
}

// NewEventBus creates the redis pub/sub bus carrying engine events to
// decoupled consumers such as the metrics subscriber.
func NewEventBus(client *redis.Client) ports.EventBus {
	return &eventBus{
		client:            client,
		enrollmentChannel: "automation:events:enrollment_created",
		stepChannel:       "automation:events:step_executed",
	}
}

func (b *eventBus) PublishEnrollmentCreated(ctx context.Context, event domain.EnrollmentCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.enrollmentChannel, payload).Err()
}

func (b *eventBus) PublishStepExecuted(ctx context.Context, event domain.StepExecutedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.stepChannel, payload).Err()
}

func (b *eventBus) SubscribeEnrollmentCreated(ctx context.Context) (<-chan domain.EnrollmentCreatedEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.enrollmentChannel)
	msgChan := make(chan domain.EnrollmentCreatedEvent)

	go func() {
		defer close(msgChan)
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			default:
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					continue
				}
				var event domain.EnrollmentCreatedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case msgChan <- event:
				case <-ctx.Done():
					pubsub.Close()
					return
				}
			}
		}
	}()

	return msgChan, nil
}

func (b *eventBus) SubscribeStepExecuted(ctx context.Context) (<-chan domain.StepExecutedEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.stepChannel)
	msgChan := make(chan domain.StepExecutedEvent)

	go func() {
		defer close(msgChan)
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			default:
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					continue
				}
				var event domain.StepExecutedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case msgChan <- event:
				case <-ctx.Done():
					pubsub.Close()
					return
				}
			}
		}
	}()

	return msgChan, nil
}
