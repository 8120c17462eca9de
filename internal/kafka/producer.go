package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// События чата, публикуемые для внешних потребителей.
const (
	EventChatStarted   = "chat.started"
	EventStatusChanged = "chat.status_changed"
	EventMessage       = "chat.message"
	EventChatExtended  = "chat.extended"
)

// ChatEventProducer — интерфейс для отправки событий чата (подменяется моком в тестах).
type ChatEventProducer interface {
	ProduceChatEvent(ctx context.Context, event string, payload map[string]interface{})
}

// Producer пишет события чатов в топик Kafka (best-effort, не блокирует API).
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer создаёт продюсер. Если brokers или topic пустые — методы no-op.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// ProduceChatEvent отправляет событие чата. payload обычно содержит chat_id,
// client_id, status, assigned_operator.
func (p *Producer) ProduceChatEvent(ctx context.Context, event string, payload map[string]interface{}) {
	if p.writer == nil {
		return
	}
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("kafka: marshal chat event: %v", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: body}); err != nil {
		log.Printf("kafka: write chat event: %v", err)
	}
}

// Close закрывает writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
