package model

import (
	"time"

	"github.com/lib/pq"
)

type ChatStatus string

const (
	ChatStatusWaiting   ChatStatus = "waiting"
	ChatStatusActive    ChatStatus = "active"
	ChatStatusPostponed ChatStatus = "postponed"
	ChatStatusEscalated ChatStatus = "escalated"
	ChatStatusClosed    ChatStatus = "closed"
)

// CloseReason — причина закрытия чата оператором.
type CloseReason string

const (
	CloseReasonResolved   CloseReason = "resolved"
	CloseReasonNoResponse CloseReason = "no_response"
	CloseReasonSpam       CloseReason = "spam"
	CloseReasonDuplicate  CloseReason = "duplicate"
	CloseReasonOther      CloseReason = "other"
)

func (r CloseReason) Valid() bool {
	switch r {
	case CloseReasonResolved, CloseReasonNoResponse, CloseReasonSpam, CloseReasonDuplicate, CloseReasonOther:
		return true
	}
	return false
}

// Chat — обращение клиента и его жизненный цикл.
type Chat struct {
	ID                uint64      `gorm:"primaryKey" json:"id"`
	SessionID         string      `gorm:"type:varchar(64);uniqueIndex;not null" json:"sessionId"`
	ClientID          uint64      `gorm:"index;not null" json:"clientId"`
	Status            ChatStatus  `gorm:"type:varchar(32);index;not null" json:"status"`
	AssignedOperator  string      `gorm:"type:varchar(128);index" json:"assignedOperator,omitempty"`
	AssignedAt        *time.Time  `json:"assignedAt,omitempty"`
	Deadline          *time.Time  `json:"deadline,omitempty"`
	ExtensionUsed     bool        `json:"extensionRequested"`
	ExtensionDeadline *time.Time  `json:"extensionDeadline,omitempty"`
	CloseReason       CloseReason `gorm:"type:varchar(32)" json:"closeReason,omitempty"`
	ResumeAt          *time.Time  `gorm:"index" json:"resumeAt,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
}

type SenderType string

const (
	SenderClient   SenderType = "client"
	SenderOperator SenderType = "operator"
)

// Message неизменяемо после создания; порядок внутри чата — по created_at.
type Message struct {
	ID         uint64     `gorm:"primaryKey" json:"id"`
	ChatID     uint64     `gorm:"index;not null" json:"chatId"`
	SenderType SenderType `gorm:"type:varchar(16);not null" json:"senderType"`
	SenderName string     `gorm:"type:varchar(128)" json:"senderName,omitempty"`
	Text       string     `gorm:"column:message_text;type:text;not null" json:"text"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type Role string

const (
	RoleOperator     Role = "operator"
	RoleOKK          Role = "okk"
	RoleAdmin        Role = "admin"
	RoleEditor       Role = "editor"
	RoleJiraOperator Role = "jira_operator"
)

// OperatorStatus — текущий live-статус сотрудника на смене.
type OperatorStatus string

const (
	OperatorOnline   OperatorStatus = "online"
	OperatorBreak    OperatorStatus = "break"
	OperatorLunch    OperatorStatus = "lunch"
	OperatorTraining OperatorStatus = "training"
	OperatorDND      OperatorStatus = "dnd"
	OperatorInactive OperatorStatus = "inactive"
	OperatorOffline  OperatorStatus = "offline"
)

// Employee — сотрудник поддержки. Пароль хранится открытым текстом (демо-режим).
type Employee struct {
	ID       uint64         `gorm:"primaryKey" json:"id"`
	Name     string         `gorm:"type:varchar(128);not null" json:"name"`
	Username string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Password string         `gorm:"type:varchar(128);not null" json:"-"`
	Roles    pq.StringArray `gorm:"type:text[]" json:"roles"`
	Status   OperatorStatus `gorm:"type:varchar(32);index" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasRole — true, если сотруднику назначена роль role.
func (e *Employee) HasRole(role Role) bool {
	for _, r := range e.Roles {
		if Role(r) == role {
			return true
		}
	}
	return false
}

// Client — запись реестра клиентов, ключ — контактный IP.
type Client struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	IPAddress string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"ipAddress"`
	Name      string    `gorm:"type:varchar(128)" json:"name,omitempty"`
	Email     string    `gorm:"type:varchar(128)" json:"email,omitempty"`
	Phone     string    `gorm:"type:varchar(32)" json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

// KnowledgeArticle — статья базы знаний.
type KnowledgeArticle struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Category  string    `gorm:"type:varchar(64);index" json:"category,omitempty"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content,omitempty"`
	Author    string    `gorm:"type:varchar(128)" json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JiraTemplate — шаблон задания для jira-операторов.
type JiraTemplate struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Priority    string    `gorm:"type:varchar(32)" json:"priority,omitempty"`
	Author      string    `gorm:"type:varchar(128)" json:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Shift — смена сотрудника в графике.
type Shift struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	EmployeeID uint64    `gorm:"index;not null" json:"employeeId"`
	Date       string    `gorm:"type:varchar(16);index;not null" json:"date"`
	StartTime  string    `gorm:"type:varchar(8);not null" json:"startTime"`
	EndTime    string    `gorm:"type:varchar(8);not null" json:"endTime"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Rating — оценка ОКК по закрытому чату. Запись только добавляется, путь
// редактирования отсутствует; архивирование — отдельный флаг.
type Rating struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	ChatID       uint64    `gorm:"index;not null" json:"chatId"`
	OperatorName string    `gorm:"type:varchar(128);index" json:"operatorName"`
	Category     string    `gorm:"type:varchar(64)" json:"category,omitempty"`
	Score        int       `json:"score"`
	Comment      string    `gorm:"type:text" json:"comment,omitempty"`
	RatedBy      string    `gorm:"type:varchar(128)" json:"ratedBy"`
	Archived     bool      `gorm:"index" json:"archived"`
	CreatedAt    time.Time `json:"createdAt"`
}
