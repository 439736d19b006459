package mailer

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue is the durable RabbitMQ queue carrying EmailJob messages from the
// API and the outbox worker to the email worker.
type Queue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	name string
}

func NewQueue(url, name string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Queue{conn: conn, ch: ch, name: name}, nil
}

func (q *Queue) Close() {
	if q == nil {
		return
	}
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		_ = q.conn.Close()
	}
}

// Publish enqueues one job as a persistent JSON message, so a broker restart
// does not lose queued mail.
func (q *Queue) Publish(ctx context.Context, job EmailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.ch.PublishWithContext(ctx,
		"",     // default exchange
		q.name, // routing key = queue
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Consume opens a manual-ack delivery stream with the given prefetch, for
// fair dispatch across worker replicas.
func (q *Queue) Consume(prefetch int) (<-chan amqp.Delivery, error) {
	if err := q.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return q.ch.Consume(q.name, "", false, false, false, false, nil)
}
