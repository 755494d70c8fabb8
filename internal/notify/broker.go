package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 3 * time.Second

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Broker publishes booking events to a RabbitMQ topic exchange under the
// routing key "booking.<type>".
type Broker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	pub      publisher
	exchange string
	mu       sync.Mutex
}

func DialBroker(url, exchange string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Broker{conn: conn, ch: ch, pub: ch, exchange: exchange}, nil
}

func RoutingKey(t Type) string {
	return "booking." + string(t)
}

func (b *Broker) Notify(ctx context.Context, n Notification) {
	if b == nil || b.pub == nil {
		return
	}
	logger := log.Ctx(ctx).With().
		Int64("booking_id", n.BookingID).
		Str("notification_type", string(n.Type)).
		Logger()

	body, err := json.Marshal(n)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode booking event")
		return
	}

	pubCtx, cancel := detached(ctx, publishTimeout)
	defer cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	err = b.pub.PublishWithContext(pubCtx, b.exchange, RoutingKey(n.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    n.OccurredAt,
		Body:         body,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to publish booking event")
	}
}

func (b *Broker) Close() error {
	if b == nil {
		return nil
	}
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
