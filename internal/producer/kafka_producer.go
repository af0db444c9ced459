package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	writeTimeout = 5 * time.Second
	batchTimeout = 10 * time.Millisecond
)

var ErrInvalidEmail = errors.New("email message needs a recipient and a template")

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
	}
}

// writeJSON marshals v and writes it as a single keyed message.
func writeJSON(ctx context.Context, w *kafka.Writer, key string, v any, headers ...kafka.Header) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", w.Topic, err)
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	})
}

// EmailMessage is consumed by cmd/notifier. Template names a pair of files
// <template>.html and <template>.txt in the notifier's template directory.
type EmailMessage struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

type EmailProducer struct {
	writer *kafka.Writer
}

func NewEmailProducer(brokers []string, topic string) *EmailProducer {
	return &EmailProducer{writer: newWriter(brokers, topic)}
}

// SendEmail queues msg; key keeps one user's mails ordered.
func (p *EmailProducer) SendEmail(ctx context.Context, key string, msg EmailMessage) error {
	if strings.TrimSpace(msg.To) == "" || strings.TrimSpace(msg.Template) == "" {
		return ErrInvalidEmail
	}
	return writeJSON(ctx, p.writer, key, msg, kafka.Header{Key: "template", Value: []byte(msg.Template)})
}

func (p *EmailProducer) Close() error {
	return p.writer.Close()
}
