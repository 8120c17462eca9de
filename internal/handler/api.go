// Package handler реализует протокол старого бэкенда: один эндпоинт,
// дискриминатор action в query (GET) или в JSON-теле (POST/PUT).
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/access"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/auth"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/errs"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/service"
)

const authHeader = "X-Auth-Token"

type API struct {
	chats     service.ChatServicer
	employees service.EmployeeServicer
	knowledge service.KnowledgeServicer
	ratings   service.RatingServicer
	tokens    *auth.JWTManager
}

func NewAPI(chats service.ChatServicer, employees service.EmployeeServicer, knowledge service.KnowledgeServicer, ratings service.RatingServicer, tokens *auth.JWTManager) *API {
	return &API{
		chats:     chats,
		employees: employees,
		knowledge: knowledge,
		ratings:   ratings,
		tokens:    tokens,
	}
}

// Get обслуживает все читающие действия (?action=...).
func (a *API) Get(c *gin.Context) {
	switch c.Query("action") {
	case "", "list":
		a.list(c)
	case "messages":
		a.messages(c)
	case "clients":
		a.clients(c)
	case "employees":
		a.listEmployees(c)
	case "knowledge":
		a.listKnowledge(c)
	case "shifts":
		a.listShifts(c)
	case "jiraTemplates":
		a.listTemplates(c)
	case "closedChats":
		a.closedChats(c)
	case "qcArchive":
		a.qcArchive(c)
	case "ratings":
		a.listRatings(c)
	case "login":
		a.login(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

// Post обслуживает создающие действия ({"action": ...}).
func (a *API) Post(c *gin.Context) {
	switch a.action(c) {
	case "startChat":
		a.startChat(c)
	case "sendMessage":
		a.sendMessage(c)
	case "createKnowledge":
		a.createKnowledge(c)
	case "createShift":
		a.createShift(c)
	case "createJiraTemplate":
		a.createTemplate(c)
	case "deleteJiraTemplate":
		a.deleteTemplate(c)
	case "createRating":
		a.createRating(c)
	case "archiveQcRating":
		a.archiveRating(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

// Put обслуживает изменяющие действия.
func (a *API) Put(c *gin.Context) {
	switch a.action(c) {
	case "updateStatus":
		a.updateStatus(c)
	case "updateOperatorStatus":
		a.updateOperatorStatus(c)
	case "extendChat":
		a.extendChat(c)
	case "updateKnowledge":
		a.updateKnowledge(c)
	case "updateShift":
		a.updateShift(c)
	case "updateJiraTemplate":
		a.updateTemplate(c)
	case "addEmployeeRole":
		a.addRole(c)
	case "removeEmployeeRole":
		a.removeRole(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

func (a *API) action(c *gin.Context) string {
	var probe struct {
		Action string `json:"action"`
	}
	// Тело читается с кэшированием: per-action структуры биндятся повторно.
	if err := c.ShouldBindBodyWith(&probe, binding.JSON); err != nil {
		return ""
	}
	return probe.Action
}

func (a *API) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindBodyWith(req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return false
	}
	return true
}

// identity возвращает удостоверение сотрудника из X-Auth-Token, либо nil.
func (a *API) identity(c *gin.Context) *auth.Claims {
	token := c.GetHeader(authHeader)
	if token == "" {
		return nil
	}
	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}
	return claims
}

// requireAccess — серверная проверка матрицы доступа для раздела section.
func (a *API) requireAccess(c *gin.Context, section access.Section) *auth.Claims {
	claims := a.identity(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}
	if !access.HasAccess(claims.Roles, section) {
		c.JSON(http.StatusForbidden, gin.H{"error": errs.ErrAccessDenied.Error()})
		return nil
	}
	return claims
}

// requireEmployee — достаточно любого действующего сотрудника.
func (a *API) requireEmployee(c *gin.Context) *auth.Claims {
	claims := a.identity(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}
	return claims
}

func (a *API) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrChatNotFound),
		errors.Is(err, errs.ErrEmployeeNotFound),
		errors.Is(err, errs.ErrArticleNotFound),
		errors.Is(err, errs.ErrTemplateNotFound),
		errors.Is(err, errs.ErrShiftNotFound),
		errors.Is(err, errs.ErrRatingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrOperatorBusy),
		errors.Is(err, errs.ErrExtensionUsed),
		errors.Is(err, errs.ErrNotExpired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidCloseReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
