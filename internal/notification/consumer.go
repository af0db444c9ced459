package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"kasap-service/internal/producer"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrInvalidMessage = errors.New("invalid email message")

const (
	sendAttempts = 3
	retryBackoff = 2 * time.Second
)

type Sender interface {
	SendEmail(n Email) error
}

// KafkaEmailConsumer drains the email topic. Offsets are committed after a
// message is delivered, dropped as malformed, or out of retries.
type KafkaEmailConsumer struct {
	reader *kafka.Reader
	sender Sender
	log    *zap.Logger
}

func NewKafkaEmailConsumer(brokers []string, groupID, topic string, sender Sender, log *zap.Logger) *KafkaEmailConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        time.Second,
		StartOffset:    kafka.FirstOffset,
		SessionTimeout: 30 * time.Second,
	})
	return &KafkaEmailConsumer{reader: r, sender: sender, log: log.With(zap.String("topic", topic))}
}

// Run blocks until ctx is cancelled or the reader is closed.
func (c *KafkaEmailConsumer) Run(ctx context.Context) error {
	c.log.Info("email consumer started")
	for {
		m, err := c.reader.FetchMessage(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			c.log.Error("fetch message", zap.Error(err))
			continue
		}

		c.deliver(ctx, m)
		if err := c.reader.CommitMessages(ctx, m); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn("commit offset", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

func (c *KafkaEmailConsumer) deliver(ctx context.Context, m kafka.Message) {
	log := c.log.With(zap.ByteString("key", m.Key), zap.Int64("offset", m.Offset))
	for attempt := 1; ; attempt++ {
		err := Handle(m.Value, c.sender)
		if err == nil {
			log.Info("email sent")
			return
		}
		if errors.Is(err, ErrInvalidMessage) {
			log.Warn("dropping malformed email message", zap.Error(err))
			return
		}
		if attempt == sendAttempts {
			log.Error("giving up on email", zap.Int("attempts", attempt), zap.Error(err))
			return
		}
		log.Warn("email send failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
}

// Handle decodes one queued message and hands it to sender.
func Handle(value []byte, sender Sender) error {
	var em producer.EmailMessage
	if err := json.Unmarshal(value, &em); err != nil {
		return errors.Join(ErrInvalidMessage, err)
	}
	if em.To == "" || em.Template == "" {
		return ErrInvalidMessage
	}
	return sender.SendEmail(Email{To: em.To, Subject: em.Subject, Template: em.Template, Data: em.Data})
}

func (c *KafkaEmailConsumer) Close() error { return c.reader.Close() }
