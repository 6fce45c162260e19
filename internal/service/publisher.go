// Package service holds the pieces between handlers and repositories that
// talk to Redis and RabbitMQ.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
	"github.com/iliyamo/messestand-kalkulator/internal/pricing"
	"github.com/iliyamo/messestand-kalkulator/internal/queue"
)

// publishTimeout bounds one publish, including dial.
const publishTimeout = 3 * time.Second

// EventPublisher sends domain events to RabbitMQ.  A publisher without URL
// does nothing, which is how the server runs when RABBITMQ_URL is unset.
// Failures are logged and never reach the caller: the write that caused
// the event has already been committed.
type EventPublisher struct {
	url  string
	log  *zap.Logger
	send func(ctx context.Context, url string, body []byte) error
	now  func() time.Time
}

// NewEventPublisher returns a publisher for the broker at url.
func NewEventPublisher(url string, log *zap.Logger) *EventPublisher {
	return &EventPublisher{url: url, log: log, send: publishAMQP, now: time.Now}
}

// Enabled reports whether events go anywhere.
func (p *EventPublisher) Enabled() bool { return p != nil && p.url != "" }

// UserRegistered announces a new account.
func (p *EventPublisher) UserRegistered(ctx context.Context, userID uint64, username string) {
	p.publish(ctx, queue.ProjectEvent{Type: queue.EventUserRegistered, UserID: userID, Username: username})
}

// ProjectSaved announces a created (created=true) or updated project with
// its current grand total.
func (p *EventPublisher) ProjectSaved(ctx context.Context, pr *model.Project, created bool) {
	typ := queue.EventProjectUpdated
	if created {
		typ = queue.EventProjectCreated
	}
	p.publish(ctx, queue.ProjectEvent{
		Type:        typ,
		UserID:      pr.UserID,
		ProjectID:   pr.ID,
		Projektname: pr.Projektname,
		Gesamt:      pricing.Calculate(pr.Data).Gesamt,
	})
}

// ProjectDeleted announces a removed project.
func (p *EventPublisher) ProjectDeleted(ctx context.Context, userID, projectID uint64) {
	p.publish(ctx, queue.ProjectEvent{Type: queue.EventProjectDeleted, UserID: userID, ProjectID: projectID})
}

func (p *EventPublisher) publish(ctx context.Context, ev queue.ProjectEvent) {
	if !p.Enabled() {
		return
	}
	ev.OccurredAt = p.now().UTC().Format(time.RFC3339)
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("event marshal failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	// outlives the request context
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.send(ctx, p.url, body); err != nil {
		p.log.Warn("event publish failed", zap.String("type", ev.Type), zap.Error(err))
	}
}

// publishAMQP dials, declares the durable queue and publishes one
// persistent message on the default exchange.
func publishAMQP(ctx context.Context, url string, body []byte) error {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(publishTimeout)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.QueueName, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",              // default exchange
		queue.QueueName, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
