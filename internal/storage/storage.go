package storage

import (
	"context"
	"errors"

	"liquidityPool/internal/model"
)

// EventSink receives committed pool events.
type EventSink interface {
	PutEvents(ctx context.Context, events []model.PoolEvent) error
}

// MetricsSink receives aggregated window metrics.
type MetricsSink interface {
	UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error
}

// MultiSink delivers every batch to each sink in order.
type MultiSink []EventSink

func (m MultiSink) PutEvents(ctx context.Context, events []model.PoolEvent) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.PutEvents(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
