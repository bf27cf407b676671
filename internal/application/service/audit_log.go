package service

import (
	"context"

	"github.com/garyjia/procurement-hub/internal/application/dispatcher"
	"github.com/garyjia/procurement-hub/internal/domain/event"
)

// AuditLogName is the subscription name of the audit logger
const AuditLogName = "audit-log"

// RegisterAuditLog writes every request event to logger
func RegisterAuditLog(d dispatcher.Dispatcher, logger Logger) {
	d.Subscribe(dispatcher.AnyType, AuditLogName, func(ctx context.Context, evt *event.Event) error {
		fields := []interface{}{
			"event_id", evt.ID,
			"event_type", evt.Type.String(),
			"request_id", evt.RequestID,
			"correlation_id", evt.CorrelationID,
		}
		for _, key := range []string{
			event.KeyActor, event.KeyPreviousStatus, event.KeyNewStatus,
			event.KeyTrigger, event.KeyDecision, event.KeyDerivedID,
		} {
			if v := evt.GetPayloadString(key); v != "" {
				fields = append(fields, key, v)
			}
		}
		if _, ok := evt.Payload[event.KeyStep]; ok {
			fields = append(fields, event.KeyStep, evt.GetPayloadInt(event.KeyStep))
		}
		logger.Info("Request event", fields...)
		return nil
	})
}
