package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/consumer"
	"github.com/carbonpledge-labs/token-economy-engine/internal/config"
)

var errPublishNacked = errors.New("broker did not acknowledge the message")

// RabbitPublisher publishes change events to a durable topic exchange with
// publisher confirms enabled. The connection is re-established lazily after
// the broker drops it.
type RabbitPublisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

var _ consumer.EventPublisher = (*RabbitPublisher)(nil)

func NewRabbitPublisher(cfg *config.QueueConfig) *RabbitPublisher {
	return &RabbitPublisher{
		url:      cfg.AmqpURL(),
		exchange: cfg.Exchange,
	}
}

func (p *RabbitPublisher) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.connect()
}

// connect must be called with mu held.
func (p *RabbitPublisher) connect() error {
	if p.channel != nil && !p.channel.IsClosed() {
		return nil
	}
	p.closeLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close() //nolint:errcheck
		return fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		conn.Close() //nolint:errcheck
		return fmt.Errorf("failed to declare exchange %s: %w", p.exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close() //nolint:errcheck
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	p.conn = conn
	p.channel = ch
	log.Info().Str("exchange", p.exchange).Msg("Connected to rabbitmq")
	return nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev *consumer.ChangeEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	p.mu.Lock()
	if err := p.connect(); err != nil {
		p.mu.Unlock()
		return err
	}
	confirmation, err := p.channel.PublishWithDeferredConfirmWithContext(ctx,
		p.exchange,
		ev.RoutingKey(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    strconv.FormatUint(ev.Seq, 10),
			Timestamp:    ev.Timestamp,
			Type:         ev.Type,
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish change %d: %w", ev.Seq, err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return errPublishNacked
	}
	return nil
}

func (p *RabbitPublisher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closeLocked()
}

func (p *RabbitPublisher) closeLocked() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	p.channel = nil
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}
