package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/shop-booking-api/internal/events"
	"github.com/noah-isme/shop-booking-api/pkg/logger"
	"github.com/noah-isme/shop-booking-api/pkg/middleware/requestid"
)

// eventEmitter publishes domain events after a write has committed. Publish
// failures are logged and counted but never fail the request.
type eventEmitter struct {
	publisher events.Publisher
	metrics   *MetricsService
	logger    *zap.Logger
}

func newEventEmitter(publisher events.Publisher, metrics *MetricsService, log *zap.Logger) eventEmitter {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return eventEmitter{publisher: publisher, metrics: metrics, logger: log}
}

func (e eventEmitter) emit(ctx context.Context, eventType, aggregateID string, data interface{}) {
	evt, err := events.New(eventType, aggregateID, data)
	if err == nil {
		evt.RequestID = requestid.FromContext(ctx)
		err = e.publisher.Publish(ctx, evt)
	}
	if e.metrics != nil {
		e.metrics.RecordEvent(eventType, err == nil)
	}
	if err != nil {
		logger.WithRequest(ctx, e.logger).Warn("publish event failed", zap.String("type", eventType), zap.String("aggregate_id", aggregateID), zap.Error(err))
	}
}
