package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/access"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
)

func (a *API) list(c *gin.Context) {
	if a.requireAccess(c, access.SectionChats) == nil {
		return
	}
	var statuses []model.ChatStatus
	if v := c.Query("status"); v != "" {
		statuses = append(statuses, model.ChatStatus(v))
	}
	items, err := a.chats.List(c.Request.Context(), statuses, c.Query("operator"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": items})
}

// messages доступен и клиентскому виджету, токен не требуется.
func (a *API) messages(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Query("chatId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId required"})
		return
	}
	msgs, err := a.chats.Messages(c.Request.Context(), chatID)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (a *API) clients(c *gin.Context) {
	if a.requireAccess(c, access.SectionClients) == nil {
		return
	}
	items, err := a.chats.Clients(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": items})
}

func (a *API) closedChats(c *gin.Context) {
	if a.requireAccess(c, access.SectionQCRatings) == nil {
		return
	}
	items, err := a.chats.ClosedChats(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": items})
}

type startChatRequest struct {
	Action    string `json:"action"`
	IPAddress string `json:"ipAddress" binding:"required"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (a *API) startChat(c *gin.Context) {
	var req startChatRequest
	if !a.bind(c, &req) {
		return
	}
	res, err := a.chats.StartChat(c.Request.Context(), req.IPAddress, req.Name, req.Email, req.Phone)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type sendMessageRequest struct {
	Action     string `json:"action"`
	ChatID     uint64 `json:"chatId" binding:"required"`
	SenderType string `json:"senderType" binding:"required"`
	SenderName string `json:"senderName"`
	Message    string `json:"message" binding:"required"`
}

func (a *API) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !a.bind(c, &req) {
		return
	}
	sender := model.SenderType(req.SenderType)
	if sender != model.SenderClient && sender != model.SenderOperator {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid senderType"})
		return
	}
	msg, err := a.chats.SendMessage(c.Request.Context(), req.ChatID, sender, req.SenderName, req.Message)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messageId": msg.ID, "createdAt": msg.CreatedAt})
}

type updateStatusRequest struct {
	Action           string `json:"action"`
	ChatID           uint64 `json:"chatId" binding:"required"`
	Status           string `json:"status" binding:"required"`
	AssignedOperator string `json:"assignedOperator"`
	Reason           string `json:"reason"`
	Date             string `json:"date"`
	Time             string `json:"time"`
}

// updateStatus — единая точка переходов жизненного цикла: целевой статус
// выбирает операцию. active принимает waiting-чат либо досрочно возвращает
// отложенный; closed, postponed и escalated — по названию.
func (a *API) updateStatus(c *gin.Context) {
	claims := a.requireAccess(c, access.SectionChats)
	if claims == nil {
		return
	}
	var req updateStatusRequest
	if !a.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	switch model.ChatStatus(req.Status) {
	case model.ChatStatusActive:
		operator := req.AssignedOperator
		if operator == "" {
			operator = claims.Name
		}
		chat, err := a.chats.Accept(ctx, req.ChatID, operator)
		if err != nil {
			a.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
	case model.ChatStatusClosed:
		chat, err := a.chats.Close(ctx, req.ChatID, model.CloseReason(req.Reason))
		if err != nil {
			a.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
	case model.ChatStatusPostponed:
		resumeAt, err := parseResumeAt(req.Date, req.Time)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date/time"})
			return
		}
		chat, err := a.chats.Postpone(ctx, req.ChatID, resumeAt)
		if err != nil {
			a.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
	case model.ChatStatusEscalated:
		chat, err := a.chats.Escalate(ctx, req.ChatID)
		if err != nil {
			a.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
	}
}

type extendChatRequest struct {
	Action string `json:"action"`
	ChatID uint64 `json:"chatId" binding:"required"`
}

func (a *API) extendChat(c *gin.Context) {
	if a.requireAccess(c, access.SectionChats) == nil {
		return
	}
	var req extendChatRequest
	if !a.bind(c, &req) {
		return
	}
	chat, err := a.chats.Extend(c.Request.Context(), req.ChatID)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chat": chat})
}

// parseResumeAt собирает момент возврата из полей date ("2006-01-02")
// и time ("15:04") формы откладывания.
func parseResumeAt(date, tm string) (time.Time, error) {
	if tm == "" {
		tm = "00:00"
	}
	return time.ParseInLocation("2006-01-02 15:04", date+" "+tm, time.Local)
}
