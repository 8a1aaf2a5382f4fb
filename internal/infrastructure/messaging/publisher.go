package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/pkg/config"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

// Publisher es un EventPublisher con ciclo de vida: se cierra al apagar el servicio.
type Publisher interface {
	ports.EventPublisher
	Health(ctx context.Context) map[string]string
	Close() error
}

// New construye el publicador del broker configurado. Con "none" los eventos solo se registran en el log.
func New(cfg config.MessagingConfig, source string, log *logger.Logger) (Publisher, error) {
	log = logger.OrNop(log)
	switch cfg.Broker {
	case config.BrokerRabbitMQ:
		return NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, source, log)
	case config.BrokerKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, source, log), nil
	case config.BrokerNone, "":
		return NewLogPublisher(source, log), nil
	}
	return nil, fmt.Errorf("broker de mensajería desconocido: %q", cfg.Broker)
}

// LogPublisher registra los eventos en el log en vez de enviarlos (desarrollo, tests).
type LogPublisher struct {
	source string
	log    *logger.Logger
	now    func() time.Time
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(source string, log *logger.Logger) *LogPublisher {
	return &LogPublisher{source: source, log: logger.OrNop(log), now: time.Now}
}

// Publish arma el sobre y lo deja en el log a nivel debug.
func (p *LogPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	env, err := NewEnvelope(eventType, p.source, key, payload, p.now())
	if err != nil {
		return err
	}
	p.log.Debug().
		Str("event_type", env.Type).
		Str("event_id", env.ID).
		Str("key", env.Key).
		RawJSON("data", env.Data).
		Msg("evento (sin broker)")
	return nil
}

// Health siempre responde "up".
func (p *LogPublisher) Health(context.Context) map[string]string {
	return map[string]string{"status": "up", "broker": config.BrokerNone}
}

// Close no hace nada.
func (p *LogPublisher) Close() error { return nil }
