package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/inventario-moda/pkg/config"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

// messageWriter es la parte de *kafka.Writer que se usa; los tests lo sustituyen.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica todos los eventos en un topic. La clave del mensaje es la clave del
// agregado (ubicación o solicitud), así los eventos de un mismo agregado conservan orden.
type KafkaPublisher struct {
	writer messageWriter
	source string
	log    *logger.Logger
	now    func() time.Time
}

// NewKafkaPublisher construye el writer. No abre conexiones hasta el primer envío.
func NewKafkaPublisher(brokers []string, topic, source string, log *logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
	return newKafkaPublisher(writer, source, log)
}

func newKafkaPublisher(w messageWriter, source string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, source: source, log: logger.OrNop(log), now: time.Now}
}

// Publish escribe el sobre con el tipo de evento en el header "event-type".
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	env, err := NewEnvelope(eventType, p.source, key, payload, p.now())
	if err != nil {
		return err
	}
	body, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("serializar sobre: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
			{Key: "event-id", Value: []byte(env.ID)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("escribir %s en kafka: %w", eventType, err)
	}
	p.log.Debug().Str("event_type", eventType).Str("event_id", env.ID).Msg("evento publicado")
	return nil
}

// Health no sondea el cluster: el writer reconecta solo en cada envío.
func (p *KafkaPublisher) Health(context.Context) map[string]string {
	return map[string]string{"status": "up", "broker": config.BrokerKafka}
}

// Close vacía el lote pendiente y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
