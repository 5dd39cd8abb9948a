// Package notify delivers verification codes to account owners.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/logging"
)

// Notifier sends a verification code to an email address.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// VerificationEmail is the message consumed by the mail worker.
type VerificationEmail struct {
	Email    string    `json:"email"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// RabbitNotifier enqueues verification emails on a durable queue. The
// actual SMTP delivery happens in the mail worker.
type RabbitNotifier struct {
	ch    Channel
	queue string
	now   func() time.Time
}

func NewRabbitNotifier(ch Channel, queue string) *RabbitNotifier {
	return &RabbitNotifier{ch: ch, queue: queue, now: time.Now}
}

func (n *RabbitNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	body, err := json.Marshal(VerificationEmail{Email: email, Code: code, IssuedAt: n.now().UTC()})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotificationUnavailable, err)
	}

	err = n.ch.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("publish: %w", err)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotificationUnavailable, err)
	}
	return nil
}

// Connection owns the AMQP connection and channel backing a RabbitNotifier.
type Connection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to RabbitMQ and declares the durable queue.
func Dial(url, queue string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	return &Connection{conn: conn, ch: ch}, nil
}

func (c *Connection) Channel() *amqp.Channel { return c.ch }

func (c *Connection) Close() error {
	if err := c.ch.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}

// LogNotifier writes codes to the log. Development only.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{log: l.With("module", "notify")}
}

func (n *LogNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	n.log.Info(ctx, "verification code issued", "email", email, "code", code)
	return nil
}
