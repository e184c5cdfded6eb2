package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaConfig brokers vides = publication journalisée uniquement
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Event message publié ; Key regroupe les événements d'une même entité sur une partition
type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Publisher interface utilisée par les services métier
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// MessageWriter sous-ensemble de *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	bufferSize   = 256
	writeTimeout = 10 * time.Second
)

// AsyncPublisher met les événements en file et les écrit depuis une goroutine dédiée.
// Un événement qui ne trouve pas de place dans la file est abandonné et journalisé.
type AsyncPublisher struct {
	writer MessageWriter
	topic  string
	log    *zap.Logger

	queue     chan kafka.Message
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewAsyncPublisher démarre la goroutine d'écriture
func NewAsyncPublisher(writer MessageWriter, topic string, log *zap.Logger) *AsyncPublisher {
	p := &AsyncPublisher{
		writer: writer,
		topic:  topic,
		log:    log,
		queue:  make(chan kafka.Message, bufferSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) Publish(ctx context.Context, events ...Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher fermé")
	}

	for _, ev := range events {
		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = time.Now().UTC()
		}
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("sérialisation événement %s: %w", ev.Type, err)
		}

		msg := kafka.Message{
			Key:   []byte(ev.Key),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(ev.Type)},
			},
		}
		if p.topic != "" {
			msg.Topic = p.topic
		}

		select {
		case p.queue <- msg:
		case <-ctx.Done():
			return ctx.Err()
		default:
			p.log.Warn("file d'événements pleine, événement abandonné",
				zap.String("type", ev.Type), zap.String("key", ev.Key))
		}
	}
	return nil
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.log.Error("publication événement échouée",
				zap.String("key", string(msg.Key)), zap.Error(err))
		}
		cancel()
	}
}

// Close vide la file puis ferme le writer
func (p *AsyncPublisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		<-p.done
		err = p.writer.Close()
	})
	return err
}

// NewKafkaWriter writer kafka-go pour les alertes mission
func NewKafkaWriter(cfg *KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            5,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// LogWriter remplace Kafka quand aucun broker n'est configuré
type LogWriter struct {
	log *zap.Logger
}

func NewLogWriter(log *zap.Logger) *LogWriter {
	return &LogWriter{log: log}
}

func (w *LogWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		w.log.Info("événement",
			zap.String("key", string(m.Key)),
			zap.ByteString("value", m.Value))
	}
	return nil
}

func (w *LogWriter) Close() error { return nil }
