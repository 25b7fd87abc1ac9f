package events

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/internal/utils"
)

const (
	// Exchange names
	ExchangeMailagent  = "mailagent"
	ExchangeDeadLetter = "mailagent-dead-letter"

	// queues
	QueueMailagentEvents = "mailagent-events"
	DLQMailagentEvents   = QueueMailagentEvents + "-dlq"

	// routing keys
	RoutingKeyDeadLetter       = "dead-letter"
	RoutingKeyAllEvents        = "mailagent.#"
	RoutingKeyEmailSent        = "mailagent.email.sent"
	RoutingKeyCommandCompleted = "mailagent.command.completed"

	DefaultMessageTTL     = 240 * time.Hour // after TTL message moves to DLQ
	DefaultPublishTimeout = 5 * time.Second
)

type PublisherConfig struct {
	MessageTTL     time.Duration
	PublishTimeout time.Duration
}

// RabbitMQPublisher publishes each event once and waits for the broker confirm.
type RabbitMQPublisher struct {
	connection     *amqp091.Connection
	publishChannel *amqp091.Channel
	publishMutex   sync.Mutex
	logger         logger.Logger
	confirms       chan amqp091.Confirmation
	config         PublisherConfig
}

func NewRabbitMQPublisher(rabbitmqURL string, logger logger.Logger, config *PublisherConfig) (*RabbitMQPublisher, error) {
	if config == nil {
		config = &PublisherConfig{
			MessageTTL:     DefaultMessageTTL,
			PublishTimeout: DefaultPublishTimeout,
		}
	}

	connection, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to connect to RabbitMQ")
	}

	publisher := &RabbitMQPublisher{
		connection: connection,
		logger:     logger,
		config:     *config,
	}

	if err = publisher.setupExchangesAndQueues(); err != nil {
		connection.Close()
		return nil, errors.Wrap(err, "Failed to setup exchanges and queues")
	}

	if err = publisher.setupPublishChannel(); err != nil {
		connection.Close()
		return nil, errors.Wrap(err, "Failed to setup publish channel")
	}

	return publisher, nil
}

func (r *RabbitMQPublisher) PublishEmailSent(ctx context.Context, event dto.EmailSent) error {
	return r.publishEvent(ctx, event, RoutingKeyEmailSent)
}

func (r *RabbitMQPublisher) PublishCommandCompleted(ctx context.Context, event dto.CommandCompleted) error {
	return r.publishEvent(ctx, event, RoutingKeyCommandCompleted)
}

func (r *RabbitMQPublisher) setupPublishChannel() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open publish channel")
	}

	// Enable publisher confirms
	err = channel.Confirm(false)
	if err != nil {
		channel.Close()
		return errors.Wrap(err, "Failed to enable publisher confirms")
	}

	r.confirms = channel.NotifyPublish(make(chan amqp091.Confirmation, 1))
	r.publishChannel = channel
	return nil
}

func (r *RabbitMQPublisher) setupExchangesAndQueues() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open channel for exchange/queue setup")
	}
	defer channel.Close()

	err = channel.ExchangeDeclare(
		ExchangeDeadLetter,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return errors.Wrap(err, "Failed to declare dead letter exchange")
	}

	err = channel.ExchangeDeclare(
		ExchangeMailagent,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "Failed to declare mailagent exchange")
	}

	// First declare the DLQ
	_, err = channel.QueueDeclare(DLQMailagentEvents, true, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "Failed to declare DLQ %s", DLQMailagentEvents)
	}
	err = channel.QueueBind(DLQMailagentEvents, RoutingKeyDeadLetter, ExchangeDeadLetter, false, nil)
	if err != nil {
		return errors.Wrapf(err, "Failed to bind DLQ %s to exchange", DLQMailagentEvents)
	}

	args := amqp091.Table{
		"x-dead-letter-exchange":    ExchangeDeadLetter,
		"x-dead-letter-routing-key": RoutingKeyDeadLetter,
		"x-message-ttl":             r.config.MessageTTL.Milliseconds(),
	}
	_, err = channel.QueueDeclare(QueueMailagentEvents, true, false, false, false, args)
	if err != nil {
		return errors.Wrapf(err, "Failed to declare queue %s", QueueMailagentEvents)
	}
	err = channel.QueueBind(QueueMailagentEvents, RoutingKeyAllEvents, ExchangeMailagent, false, nil)
	if err != nil {
		return errors.Wrapf(err, "Failed to bind queue %s to exchange %s", QueueMailagentEvents, ExchangeMailagent)
	}

	return nil
}

func (r *RabbitMQPublisher) publishEvent(ctx context.Context, message interface{}, routingKey string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.PublishEvent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("routingKey", routingKey)

	event := newEvent(ctx, span, message)
	tracing.LogObjectAsJson(span, "event", event)

	if err := r.publishWithConfirm(ctx, event, routingKey); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func newEvent(ctx context.Context, span opentracing.Span, message interface{}) dto.Event {
	tracingData := tracing.ExtractTextMapCarrier(span.Context())

	messageType := reflect.TypeOf(message)
	if messageType.Kind() == reflect.Ptr {
		messageType = messageType.Elem()
	}

	return dto.Event{
		Event: dto.EventDetails{
			Id:        "event_" + gonanoid.Must(21),
			EventType: messageType.Name(),
			Data:      message,
		},
		Metadata: dto.EventMetadata{
			UberTraceId: tracingData["uber-trace-id"],
			AppSource:   utils.GetAppSourceFromContext(ctx),
			RequestId:   utils.GetRequestIDFromContext(ctx),
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func (r *RabbitMQPublisher) publishWithConfirm(ctx context.Context, message interface{}, routingKey string) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	// Check context cancellation
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if r.publishChannel == nil || r.publishChannel.IsClosed() {
		return errors.New("publish channel is closed")
	}

	jsonBody, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal message")
	}

	deliveryTag := r.publishChannel.GetNextPublishSeqNo()
	err = r.publishChannel.PublishWithContext(
		ctx,
		ExchangeMailagent,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			Body:         jsonBody,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return errors.Wrap(err, "Failed to publish message")
	}

	return awaitConfirm(ctx, r.confirms, deliveryTag, r.config.PublishTimeout)
}

// awaitConfirm waits for the confirm of deliveryTag. Confirms for earlier tags
// arrive late after a timed-out publish and are discarded.
func awaitConfirm(ctx context.Context, confirms <-chan amqp091.Confirmation, deliveryTag uint64, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case confirm, ok := <-confirms:
			if !ok {
				return errors.New("publish channel closed while waiting for confirmation")
			}
			if confirm.DeliveryTag < deliveryTag {
				continue
			}
			if !confirm.Ack {
				return errors.New("Message was not confirmed by server")
			}
			return nil
		case <-timer.C:
			return errors.New("Publish confirmation timeout")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close gracefully shuts down the publisher
func (r *RabbitMQPublisher) Close() error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	var err error
	if r.publishChannel != nil {
		err = r.publishChannel.Close()
		if err != nil {
			r.logger.Errorf("Error closing publish channel: %v", err)
		}
	}

	if r.connection != nil {
		if closeErr := r.connection.Close(); closeErr != nil {
			r.logger.Errorf("Error closing connection: %v", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}

	return err
}
