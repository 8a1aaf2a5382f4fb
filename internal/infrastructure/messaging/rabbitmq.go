package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/inventario-moda/pkg/config"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

// RabbitMQPublisher publica en un exchange topic; la routing key es el tipo de evento
// (stock.adjusted, transfer.status_changed, ...).
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	source   string
	log      *logger.Logger
	mu       sync.Mutex
	now      func() time.Time
}

// NewRabbitMQPublisher conecta, abre un canal y declara el exchange (topic, durable).
func NewRabbitMQPublisher(url, exchange, source string, log *logger.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar a RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("abrir canal: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declarar exchange %s: %w", exchange, err)
	}
	log = logger.OrNop(log)
	log.Info().Str("exchange", exchange).Msg("conectado a RabbitMQ")
	return &RabbitMQPublisher{conn: conn, channel: ch, exchange: exchange, source: source, log: log, now: time.Now}, nil
}

// Publish envía el evento como mensaje persistente; key viaja en el header "key".
func (p *RabbitMQPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	env, err := NewEnvelope(eventType, p.source, key, payload, p.now())
	if err != nil {
		return err
	}
	body, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("serializar sobre: %w", err)
	}

	// Un canal AMQP no admite publicaciones concurrentes intercaladas.
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		eventType,  // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.ID,
			Timestamp:    env.OccurredAt,
			Type:         eventType,
			AppId:        p.source,
			Headers:      amqp.Table{"key": key},
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publicar %s: %w", eventType, err)
	}
	p.log.Debug().Str("event_type", eventType).Str("event_id", env.ID).Msg("evento publicado")
	return nil
}

// Health informa si la conexión sigue abierta.
func (p *RabbitMQPublisher) Health(context.Context) map[string]string {
	status := map[string]string{"status": "up", "broker": config.BrokerRabbitMQ}
	if p.conn == nil || p.conn.IsClosed() {
		status["status"] = "down"
		status["error"] = "conexión cerrada"
	}
	return status
}

// Close cierra canal y conexión.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warn().Err(err).Msg("no se pudo cerrar el canal")
		}
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("cerrar conexión RabbitMQ: %w", err)
		}
	}
	p.log.Info().Msg("conexión RabbitMQ cerrada")
	return nil
}
