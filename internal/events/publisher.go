// Package events publishes detected-outperformer events to RabbitMQ so
// downstream consumers (dashboards, alerting) can react without polling the
// history store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/creator-intel/outperformer-scanner-go/internal/config"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

// DetectedEvent is the wire form of one detected outperformer.
type DetectedEvent struct {
	ID             uuid.UUID `json:"id"`
	ScanID         uuid.UUID `json:"scan_id"`
	VideoID        string    `json:"video_id"`
	Title          string    `json:"title"`
	ChannelName    string    `json:"channel_name"`
	Category       string    `json:"category"`
	Views          int64     `json:"views"`
	Subscribers    int64     `json:"subscribers"`
	Ratio          float64   `json:"ratio"`
	VelocityScore  float64   `json:"velocity_score"`
	Classification string    `json:"classification"`
	IsNoise        bool      `json:"is_noise"`
	NoiseType      string    `json:"noise_type,omitempty"`
	URL            string    `json:"url"`
	DetectedAt     time.Time `json:"detected_at"`
}

// confirmTimeout bounds how long a publish waits for broker acknowledgement.
const confirmTimeout = 5 * time.Second

// confirmWaiter is the broker-acknowledgement half of a deferred confirm.
// Satisfied by *amqp.DeferredConfirmation; tests substitute a fake.
type confirmWaiter interface {
	WaitContext(ctx context.Context) (bool, error)
}

// awaitConfirm blocks until the broker acks or nacks the publish, the timeout
// elapses, or the context is cancelled.
func awaitConfirm(ctx context.Context, confirm confirmWaiter, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	acked, err := confirm.WaitContext(waitCtx)
	if err != nil {
		return fmt.Errorf("waiting for publish confirmation: %w", err)
	}
	if !acked {
		return fmt.Errorf("message was not acknowledged by broker")
	}
	return nil
}

// Publisher publishes detection events to a topic exchange with publisher
// confirms.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	log     *zap.Logger
	mu      sync.RWMutex
}

// NewPublisher connects to RabbitMQ and declares the exchange, queue, and
// binding.
func NewPublisher(cfg *config.RabbitMQConfig) (*Publisher, error) {
	p := &Publisher{
		config: cfg,
		log:    logger.Named("events"),
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Publisher) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		p.config.User, p.config.Password, p.config.Host, p.config.Port)

	conn, err := amqp.Dial(connURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.config.Exchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		p.config.Queue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		amqp.Table{
			"x-message-ttl": 86400000, // 24 hours
			"x-max-length":  100000,
		},
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(
		p.config.Queue,
		p.config.RoutingKey,
		p.config.Exchange,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	p.conn = conn
	p.channel = ch

	p.log.Info("connected to RabbitMQ",
		zap.String("exchange", p.config.Exchange),
		zap.String("queue", p.config.Queue),
	)

	return nil
}

// PublishDetection publishes one outperformer as a detection event and waits
// for broker acknowledgement.
func (p *Publisher) PublishDetection(ctx context.Context, op *model.Outperformer, scanID uuid.UUID) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	event := DetectedEvent{
		ID:             uuid.New(),
		ScanID:         scanID,
		VideoID:        op.Video.VideoID,
		Title:          op.Video.Title,
		ChannelName:    op.Channel.Name,
		Category:       op.Channel.Category,
		Views:          op.Video.Views,
		Subscribers:    op.Channel.Subscribers,
		Ratio:          op.Ratio,
		VelocityScore:  op.VelocityScore,
		Classification: op.Classification,
		IsNoise:        op.IsNoise,
		NoiseType:      op.NoiseType,
		URL:            op.URL(),
		DetectedAt:     time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Deferred confirms are per-publish. A NotifyPublish listener per call
	// would pile up abandoned listeners on the shared channel and stall the
	// library's confirm fan-out after the first few publishes.
	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		p.config.Exchange,
		p.config.RoutingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    event.ID.String(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	if err := awaitConfirm(ctx, confirm, confirmTimeout); err != nil {
		return err
	}

	p.log.Debug("published detection event",
		zap.String("event_id", event.ID.String()),
		zap.String("video_id", event.VideoID),
		zap.String("routing_key", p.config.RoutingKey),
	)

	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing publisher: %v", errs)
	}
	return nil
}

// IsHealthy reports whether the underlying connection is open.
func (p *Publisher) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.conn != nil && !p.conn.IsClosed()
}
