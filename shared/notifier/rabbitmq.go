package notifier

import (
	"context"
	"courtside/infras/otel"
	"courtside/infras/rabbitmq"
	"courtside/shared/constant"
	"fmt"
)

type rabbitNotifier struct {
	client rabbitmq.Client
	prefix string
	otel   otel.Otel
}

func NewRabbitMQ(client rabbitmq.Client, prefix string, otel otel.Otel) Notifier {
	return &rabbitNotifier{client: client, prefix: prefix, otel: otel}
}

// RoutingKey is <channel>.<event type> so consumers can bind per facility or per event.
func RoutingKey(prefix string, event Event) string {
	return Channel(prefix, event.FacilityID) + "." + event.Type
}

func (n *rabbitNotifier) Publish(ctx context.Context, event Event) (err error) {
	ctx, scope := n.otel.NewScope(ctx, constant.OtelNotifierScopeName, constant.OtelNotifierScopeName+".rabbitmq.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := RoutingKey(n.prefix, event)
	scope.SetAttribute("routing_key", key)

	if err = n.client.Publish(ctx, rabbitmq.Message{ID: event.ID, Key: key, Value: event}); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
