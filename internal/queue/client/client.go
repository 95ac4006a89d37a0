package client

import "context"

// QueueClient is a common interface for queue clients regardless of the
// underlying broker (RabbitMQ in production, in-memory fakes in tests).
type QueueClient interface {
	SendMessage(ctx context.Context, messageBody string) error
	GetQueueName() string
	Ping() error
	Stop() error
}

func NewQueueClient(url, user, password, queueName string) (QueueClient, error) {
	return NewRabbitMqClient(url, user, password, queueName)
}
