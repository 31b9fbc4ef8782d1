package metrics

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
)

// Subscriber consumes engine events off the bus and feeds the collector.
type Subscriber struct {
	bus       ports.EventBus
	collector *Collector
	logger    hclog.Logger
}

func NewSubscriber(bus ports.EventBus, collector *Collector, logger hclog.Logger) *Subscriber {
	return &Subscriber{
		bus:       bus,
		collector: collector,
		logger:    logger.Named("metrics"),
	}
}

// Start runs the subscription loop until the context is cancelled. Call as a
// goroutine from main.
func (s *Subscriber) Start(ctx context.Context) error {
	enrollmentCh, err := s.bus.SubscribeEnrollmentCreated(ctx)
	if err != nil {
		return err
	}
	stepCh, err := s.bus.SubscribeStepExecuted(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("metrics subscriber started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-enrollmentCh:
			if !ok {
				return nil
			}
			s.collector.RecordEnrollment(string(event.TriggerType))
		case event, ok := <-stepCh:
			if !ok {
				return nil
			}
			s.collector.RecordStep(string(event.Kind), string(event.Status))
		}
	}
}
