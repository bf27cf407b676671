package metrics

import (
	"context"

	"github.com/garyjia/procurement-hub/internal/application/dispatcher"
	"github.com/garyjia/procurement-hub/internal/domain/event"
)

// RecorderName is the subscription name of the metrics recorder
const RecorderName = "metrics-recorder"

// Subscribe counts lifecycle events published on d
func (m *Metrics) Subscribe(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeStatusChanged, RecorderName, func(ctx context.Context, evt *event.Event) error {
		m.transitions.WithLabelValues(
			evt.GetPayloadString(event.KeyTrigger),
			evt.GetPayloadString(event.KeyPreviousStatus),
			evt.GetPayloadString(event.KeyNewStatus),
		).Inc()
		return nil
	})

	d.Subscribe(event.TypeStepDecided, RecorderName, func(ctx context.Context, evt *event.Event) error {
		m.stepDecisions.WithLabelValues(evt.GetPayloadString(event.KeyDecision)).Inc()
		return nil
	})

	d.Subscribe(event.TypeRequestCreated, RecorderName, func(ctx context.Context, evt *event.Event) error {
		origin := "new"
		if evt.CorrelationID != evt.ID {
			origin = "returned"
		}
		m.requestsTotal.WithLabelValues(origin).Inc()
		return nil
	})
}
