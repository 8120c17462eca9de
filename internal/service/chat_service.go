package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/errs"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/kafka"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/lifecycle"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatSummary — строка списка чатов: чат плюс идентичность клиента,
// число сообщений и остаток SLA.
type ChatSummary struct {
	model.Chat
	ClientName   string              `json:"clientName,omitempty"`
	Email        string              `json:"email,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	IPAddress    string              `json:"ipAddress,omitempty"`
	MessageCount int64               `json:"messageCount"`
	Remaining    lifecycle.Remaining `json:"remaining"`
}

// StartChatResult — ответ startChat: идентификаторы для клиентского виджета.
type StartChatResult struct {
	ChatID    uint64 `json:"chatId"`
	ClientID  uint64 `json:"clientId"`
	SessionID string `json:"sessionId"`
}

// ChatServicer — интерфейс чат-сервиса для хендлеров (Dependency Inversion).
type ChatServicer interface {
	StartChat(ctx context.Context, ip, name, email, phone string) (*StartChatResult, error)
	SendMessage(ctx context.Context, chatID uint64, sender model.SenderType, senderName, text string) (*model.Message, error)
	Messages(ctx context.Context, chatID uint64) ([]model.Message, error)
	List(ctx context.Context, statuses []model.ChatStatus, operator string) ([]ChatSummary, error)
	ClosedChats(ctx context.Context) ([]ChatSummary, error)
	Clients(ctx context.Context) ([]model.Client, error)
	Accept(ctx context.Context, chatID uint64, operator string) (*model.Chat, error)
	Close(ctx context.Context, chatID uint64, reason model.CloseReason) (*model.Chat, error)
	Postpone(ctx context.Context, chatID uint64, resumeAt time.Time) (*model.Chat, error)
	Escalate(ctx context.Context, chatID uint64) (*model.Chat, error)
	Extend(ctx context.Context, chatID uint64) (*model.Chat, error)
}

type ChatService struct {
	db       *gorm.DB
	producer kafka.ChatEventProducer
	sla      time.Duration
	now      func() time.Time
}

func NewChatService(db *gorm.DB, producer kafka.ChatEventProducer, sla time.Duration) *ChatService {
	return &ChatService{db: db, producer: producer, sla: sla, now: time.Now}
}

// StartChat регистрирует клиента по IP (upsert) и возвращает его открытый
// чат в статусе waiting/active либо создаёт новый — дубликаты обращений
// одного клиента не плодятся.
func (s *ChatService) StartChat(ctx context.Context, ip, name, email, phone string) (*StartChatResult, error) {
	now := s.now()
	client := model.Client{
		IPAddress: ip,
		Name:      name,
		Email:     email,
		Phone:     phone,
		LastSeen:  now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone", "last_seen"}),
	}).Create(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		// При конфликте Postgres не возвращает id — дочитываем запись.
		if err := s.db.WithContext(ctx).Where("ip_address = ?", ip).First(&client).Error; err != nil {
			return nil, err
		}
	}

	var chat model.Chat
	err = s.db.WithContext(ctx).
		Where("client_id = ? AND status IN ?", client.ID,
			[]model.ChatStatus{model.ChatStatusWaiting, model.ChatStatusActive}).
		Order("created_at DESC").
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		chat = model.Chat{
			SessionID: uuid.NewString(),
			ClientID:  client.ID,
			Status:    model.ChatStatusWaiting,
		}
		if err := s.db.WithContext(ctx).Create(&chat).Error; err != nil {
			return nil, err
		}
		s.producer.ProduceChatEvent(ctx, kafka.EventChatStarted, map[string]interface{}{
			"chat_id":   chat.ID,
			"client_id": client.ID,
			"status":    string(chat.Status),
		})
	} else if err != nil {
		return nil, err
	}

	return &StartChatResult{ChatID: chat.ID, ClientID: client.ID, SessionID: chat.SessionID}, nil
}

// SendMessage добавляет сообщение и обновляет updated_at чата.
func (s *ChatService) SendMessage(ctx context.Context, chatID uint64, sender model.SenderType, senderName, text string) (*model.Message, error) {
	if _, err := s.get(ctx, chatID); err != nil {
		return nil, err
	}
	msg := model.Message{
		ChatID:     chatID,
		SenderType: sender,
		SenderName: senderName,
		Text:       text,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", s.now()).Error; err != nil {
		return nil, err
	}
	s.producer.ProduceChatEvent(ctx, kafka.EventMessage, map[string]interface{}{
		"chat_id":     chatID,
		"message_id":  msg.ID,
		"sender_type": string(sender),
	})
	return &msg, nil
}

// Messages — сообщения чата в порядке создания.
func (s *ChatService) Messages(ctx context.Context, chatID uint64) ([]model.Message, error) {
	var msgs []model.Message
	if err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// List — чаты с данными клиента и счётчиком сообщений, свежие сверху.
// statuses и operator сужают выборку; пустые значения — без фильтра.
func (s *ChatService) List(ctx context.Context, statuses []model.ChatStatus, operator string) ([]ChatSummary, error) {
	tx := s.db.WithContext(ctx).Model(&model.Chat{}).
		Select(`chats.*,
			clients.name AS client_name,
			clients.email AS email,
			clients.phone AS phone,
			clients.ip_address AS ip_address,
			(SELECT COUNT(*) FROM messages WHERE messages.chat_id = chats.id) AS message_count`).
		Joins("JOIN clients ON clients.id = chats.client_id").
		Order("chats.updated_at DESC")
	if len(statuses) > 0 {
		tx = tx.Where("chats.status IN ?", statuses)
	}
	if operator != "" {
		tx = tx.Where("chats.assigned_operator = ?", operator)
	}
	var items []ChatSummary
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	now := s.now()
	for i := range items {
		items[i].Remaining = lifecycle.TimeRemaining(&items[i].Chat, now)
	}
	return items, nil
}

// ClosedChats — закрытые чаты для проверки ОКК.
func (s *ChatService) ClosedChats(ctx context.Context) ([]ChatSummary, error) {
	return s.List(ctx, []model.ChatStatus{model.ChatStatusClosed}, "")
}

// Clients — реестр клиентов, последние активные сверху.
func (s *ChatService) Clients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := s.db.WithContext(ctx).Order("last_seen DESC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Accept переводит чат в active: waiting назначается оператору, отложенный
// возвращается в работу досрочно. Лимит активных чатов считается по базе и
// применяется здесь как бизнес-правило, а не подсказка интерфейса; счётчик и
// смена статуса идут в одной транзакции под блокировкой строки чата, иначе
// два одновременных принятия обходят лимит или перехватывают один чат.
func (s *ChatService) Accept(ctx context.Context, chatID uint64, operator string) (*model.Chat, error) {
	var chat model.Chat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&chat, chatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrChatNotFound
			}
			return err
		}
		var active int64
		if err := tx.Model(&model.Chat{}).
			Where("assigned_operator = ? AND status = ?", operator, model.ChatStatusActive).
			Count(&active).Error; err != nil {
			return err
		}
		if err := lifecycle.Activate(&chat, operator, int(active), s.sla, s.now()); err != nil {
			return err
		}
		return tx.Save(&chat).Error
	})
	if err != nil {
		return nil, err
	}
	s.producer.ProduceChatEvent(ctx, kafka.EventStatusChanged, map[string]interface{}{
		"chat_id":           chat.ID,
		"status":            string(chat.Status),
		"assigned_operator": chat.AssignedOperator,
	})
	return &chat, nil
}

func (s *ChatService) Close(ctx context.Context, chatID uint64, reason model.CloseReason) (*model.Chat, error) {
	chat, err := s.get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Close(chat, reason, s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, chat)
}

func (s *ChatService) Postpone(ctx context.Context, chatID uint64, resumeAt time.Time) (*model.Chat, error) {
	chat, err := s.get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Postpone(chat, resumeAt, s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, chat)
}

func (s *ChatService) Escalate(ctx context.Context, chatID uint64) (*model.Chat, error) {
	chat, err := s.get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Escalate(chat); err != nil {
		return nil, err
	}
	return s.save(ctx, chat)
}

// Extend применяет разовое 15-минутное продление просроченного дедлайна.
func (s *ChatService) Extend(ctx context.Context, chatID uint64) (*model.Chat, error) {
	chat, err := s.get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Extend(chat, s.now()); err != nil {
		return nil, err
	}
	chat, err = s.save(ctx, chat)
	if err != nil {
		return nil, err
	}
	s.producer.ProduceChatEvent(ctx, kafka.EventChatExtended, map[string]interface{}{
		"chat_id":  chat.ID,
		"deadline": chat.ExtensionDeadline,
	})
	return chat, nil
}

// ResumeDue возвращает в работу отложенные чаты, у которых наступил
// resume_at. Вызывается планировщиком.
func (s *ChatService) ResumeDue(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Chat{}).
		Where("status = ? AND resume_at IS NOT NULL AND resume_at <= ?", model.ChatStatusPostponed, now).
		Updates(map[string]interface{}{
			"status":    model.ChatStatusActive,
			"resume_at": nil,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (s *ChatService) get(ctx context.Context, chatID uint64) (*model.Chat, error) {
	var chat model.Chat
	if err := s.db.WithContext(ctx).First(&chat, chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (s *ChatService) save(ctx context.Context, chat *model.Chat) (*model.Chat, error) {
	if err := s.db.WithContext(ctx).Save(chat).Error; err != nil {
		return nil, err
	}
	s.producer.ProduceChatEvent(ctx, kafka.EventStatusChanged, map[string]interface{}{
		"chat_id":           chat.ID,
		"status":            string(chat.Status),
		"assigned_operator": chat.AssignedOperator,
	})
	return chat, nil
}
