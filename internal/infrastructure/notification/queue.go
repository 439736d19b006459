package notification

import (
	"context"

	"user-service/pkg/mailer"
)

// QueueSender publishes delivery requests as email jobs on RabbitMQ; the
// email worker consumes the queue and sends through Mailgun.
type QueueSender struct {
	Queue *mailer.Queue
}

func NewQueueSender(q *mailer.Queue) *QueueSender {
	return &QueueSender{Queue: q}
}

func (s *QueueSender) Deliver(ctx context.Context, address, subject, payload string) error {
	return s.Queue.Publish(ctx, mailer.EmailJob{
		To:      address,
		Subject: subject,
		Text:    payload,
	})
}
