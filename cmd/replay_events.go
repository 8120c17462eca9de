package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/config"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/database"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/kafka"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
	"github.com/spf13/cobra"
)

var replayEventsCmd = &cobra.Command{
	Use:   "replay-events",
	Short: "Re-emit every chat as a chat.status_changed event to Kafka (for new downstream consumers)",
	RunE:  runReplayEvents,
}

func init() {
	rootCmd.AddCommand(replayEventsCmd)
}

func runReplayEvents(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopicChat == "" {
		return fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC_CHAT must be set")
	}
	conn, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	var chats []model.Chat
	if err := conn.Find(&chats).Error; err != nil {
		return fmt.Errorf("list chats: %w", err)
	}
	log.Printf("replay-events: found %d chats", len(chats))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicChat)
	defer producer.Close()
	for i := range chats {
		ch := &chats[i]
		producer.ProduceChatEvent(ctx, kafka.EventStatusChanged, map[string]interface{}{
			"chat_id":           ch.ID,
			"client_id":         ch.ClientID,
			"status":            string(ch.Status),
			"assigned_operator": ch.AssignedOperator,
		})
		if (i+1)%50 == 0 || i == len(chats)-1 {
			log.Printf("replay-events: sent %d/%d", i+1, len(chats))
		}
	}
	log.Printf("replay-events: done, sent %d events", len(chats))
	return nil
}
