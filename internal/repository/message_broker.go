package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

const messageChannelPrefix = "messages:"

// MessageChannel returns the pub/sub channel carrying new messages of a complaint.
func MessageChannel(complaintID string) string {
	return messageChannelPrefix + complaintID
}

// MessageBroker fans new chat messages out over Redis pub/sub.
type MessageBroker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewMessageBroker constructs a Redis pub/sub broker.
func NewMessageBroker(client *redis.Client, logger *zap.Logger) *MessageBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageBroker{client: client, logger: logger}
}

// Publish sends message to the channel of its complaint.
func (b *MessageBroker) Publish(ctx context.Context, message *models.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := b.client.Publish(ctx, MessageChannel(message.ComplaintID), payload).Err(); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Subscribe streams messages posted to complaintID until ctx is cancelled.
// The returned channel is closed when the subscription ends.
func (b *MessageBroker) Subscribe(ctx context.Context, complaintID string) (<-chan models.Message, error) {
	sub := b.client.Subscribe(ctx, MessageChannel(complaintID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", complaintID, err)
	}

	out := make(chan models.Message)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var message models.Message
				if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
					b.logger.Warn("dropping malformed chat payload", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- message:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
