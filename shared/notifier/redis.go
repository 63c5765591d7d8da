package notifier

import (
	"context"
	"courtside/infras/otel"
	"courtside/shared/constant"
	"encoding/json"
	"fmt"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type redisNotifier struct {
	client *goRedis.Client
	prefix string
	otel   otel.Otel
}

func NewRedis(client *goRedis.Client, prefix string, otel otel.Otel) Notifier {
	return &redisNotifier{client: client, prefix: prefix, otel: otel}
}

func (n *redisNotifier) Publish(ctx context.Context, event Event) (err error) {
	ctx, scope := n.otel.NewScope(ctx, constant.OtelNotifierScopeName, constant.OtelNotifierScopeName+".redis.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	channel := Channel(n.prefix, event.FacilityID)
	scope.SetAttribute("channel", channel)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err = n.client.Publish(ctx, channel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("failed to publish booking event")

		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
