package events

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewPublisher),
)

// NewPublisher Kafka si des brokers sont configurés, sinon journalisation
func NewPublisher(lc fx.Lifecycle, cfg *KafkaConfig, log *zap.Logger) Publisher {
	log = log.Named("events")

	var writer MessageWriter
	topic := ""
	if len(cfg.Brokers) > 0 {
		// le topic est porté par le writer kafka-go
		writer = NewKafkaWriter(cfg)
		fmt.Printf("[EVENTS] ✅ Publication Kafka sur %v (topic %s)\n", cfg.Brokers, cfg.Topic)
	} else {
		writer = NewLogWriter(log)
		topic = cfg.Topic
		fmt.Printf("[EVENTS] ⚠️  KAFKA_BROKERS vide - événements journalisés uniquement\n")
	}

	publisher := NewAsyncPublisher(writer, topic, log)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}
