package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Publisher is the part of *amqp.Channel the broker dispatcher needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPDispatcher forwards parameter updates and follow-ups to a topic
// exchange. Actors listening on the broker pick them up.
type AMQPDispatcher struct {
	ch       Publisher
	exchange string
	logger   *zap.Logger
}

func NewAMQPDispatcher(ch Publisher, exchange string, logger *zap.Logger) *AMQPDispatcher {
	return &AMQPDispatcher{
		ch:       ch,
		exchange: exchange,
		logger:   logger,
	}
}

// DeclareExchange declares the durable topic exchange the dispatcher publishes to.
func DeclareExchange(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // delete when unused
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
}

func snakeCase(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// ParametersRoutingKey is the routing key of a parameter update for actor.
func ParametersRoutingKey(actor string) string {
	return actor + ".parameters.update"
}

// CommandRoutingKey is the routing key of a function call on actor.
func CommandRoutingKey(actor, function string) string {
	return actor + ".commands." + snakeCase(function)
}

func (d *AMQPDispatcher) UpdateParameters(ctx context.Context, actorName string, params types.ParameterMap) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	return d.publish(ctx, ParametersRoutingKey(actorName), "update_parameters", body)
}

func (d *AMQPDispatcher) FunctionExecute(ctx context.Context, req types.FunctionRequest) error {
	body, err := json.Marshal(req.Parameters)
	if err != nil {
		return fmt.Errorf("failed to encode follow-up parameters: %w", err)
	}
	return d.publish(ctx, CommandRoutingKey(req.ActorName, req.Function), req.Function, body)
}

func (d *AMQPDispatcher) publish(ctx context.Context, key, name string, body []byte) error {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := d.ch.PublishWithContext(
		ctx,
		d.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			Body:         body,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Headers: amqp.Table{
				"x-event-name": name,
				"x-request-id": requestID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	d.logger.Debug("Published",
		zap.String("exchange", d.exchange),
		zap.String("routing_key", key),
		zap.String("request_id", requestID))
	return nil
}

// Connection bundles an AMQP connection with its channel.
type Connection struct {
	*amqp.Connection
	*amqp.Channel
}

func (c *Connection) Close() error {
	if c.Channel != nil {
		if err := c.Channel.Close(); err != nil {
			return err
		}
	}
	return c.Connection.Close()
}

// Dial connects to the broker and declares exchange.
func Dial(url, exchange string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := DeclareExchange(ch, exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &Connection{conn, ch}, nil
}
