package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/auth"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/errs"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Фейки сервисов записывают вызовы и возвращают заранее заданные значения.

type fakeChatService struct {
	startResult *service.StartChatResult
	chat        *model.Chat
	messages    []model.Message
	list        []service.ChatSummary
	clients     []model.Client
	err         error

	acceptedOperator string
	closedReason     model.CloseReason
	postponedAt      time.Time
	listStatuses     []model.ChatStatus
	listOperator     string
}

func (f *fakeChatService) StartChat(ctx context.Context, ip, name, email, phone string) (*service.StartChatResult, error) {
	return f.startResult, f.err
}

func (f *fakeChatService) SendMessage(ctx context.Context, chatID uint64, sender model.SenderType, senderName, text string) (*model.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Message{ID: 99, ChatID: chatID, SenderType: sender, SenderName: senderName, Text: text}, nil
}

func (f *fakeChatService) Messages(ctx context.Context, chatID uint64) ([]model.Message, error) {
	return f.messages, f.err
}

func (f *fakeChatService) List(ctx context.Context, statuses []model.ChatStatus, operator string) ([]service.ChatSummary, error) {
	f.listStatuses = statuses
	f.listOperator = operator
	return f.list, f.err
}

func (f *fakeChatService) ClosedChats(ctx context.Context) ([]service.ChatSummary, error) {
	return f.list, f.err
}

func (f *fakeChatService) Clients(ctx context.Context) ([]model.Client, error) {
	return f.clients, f.err
}

func (f *fakeChatService) Accept(ctx context.Context, chatID uint64, operator string) (*model.Chat, error) {
	f.acceptedOperator = operator
	return f.chat, f.err
}

func (f *fakeChatService) Close(ctx context.Context, chatID uint64, reason model.CloseReason) (*model.Chat, error) {
	f.closedReason = reason
	return f.chat, f.err
}

func (f *fakeChatService) Postpone(ctx context.Context, chatID uint64, resumeAt time.Time) (*model.Chat, error) {
	f.postponedAt = resumeAt
	return f.chat, f.err
}

func (f *fakeChatService) Escalate(ctx context.Context, chatID uint64) (*model.Chat, error) {
	return f.chat, f.err
}

func (f *fakeChatService) Extend(ctx context.Context, chatID uint64) (*model.Chat, error) {
	return f.chat, f.err
}

type fakeEmployeeService struct {
	employee *model.Employee
	shifts   []model.Shift
	err      error

	addedRole model.Role
}

func (f *fakeEmployeeService) Login(ctx context.Context, username, password string) (*model.Employee, error) {
	return f.employee, f.err
}

func (f *fakeEmployeeService) Employees(ctx context.Context) ([]model.Employee, error) {
	if f.employee == nil {
		return nil, f.err
	}
	return []model.Employee{*f.employee}, f.err
}

func (f *fakeEmployeeService) UpdateStatus(ctx context.Context, employeeID uint64, status model.OperatorStatus) (*model.Employee, error) {
	return f.employee, f.err
}

func (f *fakeEmployeeService) AddRole(ctx context.Context, employeeID uint64, role model.Role) (*model.Employee, error) {
	f.addedRole = role
	return f.employee, f.err
}

func (f *fakeEmployeeService) RemoveRole(ctx context.Context, employeeID uint64, role model.Role) (*model.Employee, error) {
	return f.employee, f.err
}

func (f *fakeEmployeeService) Shifts(ctx context.Context) ([]model.Shift, error) {
	return f.shifts, f.err
}

func (f *fakeEmployeeService) CreateShift(ctx context.Context, shift *model.Shift) error {
	return f.err
}

func (f *fakeEmployeeService) UpdateShift(ctx context.Context, shiftID uint64, changes map[string]interface{}) (*model.Shift, error) {
	return &model.Shift{ID: shiftID}, f.err
}

type fakeKnowledgeService struct {
	articles  []model.KnowledgeArticle
	templates []model.JiraTemplate
	err       error
}

func (f *fakeKnowledgeService) Articles(ctx context.Context) ([]model.KnowledgeArticle, error) {
	return f.articles, f.err
}

func (f *fakeKnowledgeService) CreateArticle(ctx context.Context, a *model.KnowledgeArticle) error {
	a.ID = 1
	return f.err
}

func (f *fakeKnowledgeService) UpdateArticle(ctx context.Context, id uint64, changes map[string]interface{}) (*model.KnowledgeArticle, error) {
	return &model.KnowledgeArticle{ID: id}, f.err
}

func (f *fakeKnowledgeService) Templates(ctx context.Context) ([]model.JiraTemplate, error) {
	return f.templates, f.err
}

func (f *fakeKnowledgeService) CreateTemplate(ctx context.Context, tpl *model.JiraTemplate) error {
	tpl.ID = 1
	return f.err
}

func (f *fakeKnowledgeService) UpdateTemplate(ctx context.Context, id uint64, changes map[string]interface{}) (*model.JiraTemplate, error) {
	return &model.JiraTemplate{ID: id}, f.err
}

func (f *fakeKnowledgeService) DeleteTemplate(ctx context.Context, id uint64) error {
	return f.err
}

type fakeRatingService struct {
	ratings []model.Rating
	err     error
}

func (f *fakeRatingService) Create(ctx context.Context, r *model.Rating) error {
	r.ID = 1
	return f.err
}

func (f *fakeRatingService) Ratings(ctx context.Context, operator string) ([]model.Rating, error) {
	return f.ratings, f.err
}

func (f *fakeRatingService) Archive(ctx context.Context, ratingID uint64) (*model.Rating, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Rating{ID: ratingID, Archived: true}, nil
}

func (f *fakeRatingService) QCArchive(ctx context.Context) ([]model.Rating, error) {
	return f.ratings, f.err
}

type testEnv struct {
	chats     *fakeChatService
	employees *fakeEmployeeService
	knowledge *fakeKnowledgeService
	ratings   *fakeRatingService
	tokens    *auth.JWTManager
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		chats:     &fakeChatService{},
		employees: &fakeEmployeeService{},
		knowledge: &fakeKnowledgeService{},
		ratings:   &fakeRatingService{},
		tokens:    auth.NewJWTManager("test-secret", time.Hour),
	}
	api := NewAPI(env.chats, env.employees, env.knowledge, env.ratings, env.tokens)
	r := gin.New()
	r.GET("/api/chat", api.Get)
	r.POST("/api/chat", api.Post)
	r.PUT("/api/chat", api.Put)
	env.router = r
	return env
}

func (e *testEnv) token(t *testing.T, name string, roles ...string) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(1, name, roles)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	t.Run("success returns token and sections", func(t *testing.T) {
		env := newTestEnv(t)
		env.employees.employee = &model.Employee{ID: 1, Name: "Анна", Username: "anna", Roles: []string{"operator"}}

		w := env.request(t, http.MethodGet, "/api/chat?action=login&username=anna&password=pw", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Success  bool     `json:"success"`
			Token    string   `json:"token"`
			Sections []string `json:"sections"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.Success)
		assert.NotEmpty(t, res.Token)
		assert.Contains(t, res.Sections, "chats")
		assert.NotContains(t, res.Sections, "employeeManagement")

		claims, err := env.tokens.ValidateToken(res.Token)
		require.NoError(t, err)
		assert.Equal(t, "Анна", claims.Name)
	})

	t.Run("bad credentials", func(t *testing.T) {
		env := newTestEnv(t)
		env.employees.err = errs.ErrInvalidCredentials

		w := env.request(t, http.MethodGet, "/api/chat?action=login&username=anna&password=no", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("missing credentials", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(t, http.MethodGet, "/api/chat?action=login", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStartChat(t *testing.T) {
	env := newTestEnv(t)
	env.chats.startResult = &service.StartChatResult{ChatID: 5, ClientID: 3, SessionID: "s-1"}

	w := env.request(t, http.MethodPost, "/api/chat", "", map[string]interface{}{
		"action":    "startChat",
		"ipAddress": "10.0.0.5",
		"name":      "Иван",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"chatId":5`)

	t.Run("ipAddress required", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/chat", "", map[string]interface{}{
			"action": "startChat",
			"name":   "Иван",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodPost, "/api/chat", "", map[string]interface{}{
		"action":     "sendMessage",
		"chatId":     5,
		"senderType": "client",
		"message":    "Здравствуйте, нужна помощь",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"messageId":99`)

	t.Run("invalid sender type", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/chat", "", map[string]interface{}{
			"action":     "sendMessage",
			"chatId":     5,
			"senderType": "bot",
			"message":    "hi",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("accept uses operator from token when body omits it", func(t *testing.T) {
		env := newTestEnv(t)
		env.chats.chat = &model.Chat{ID: 5, Status: model.ChatStatusActive, AssignedOperator: "Анна"}

		w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), map[string]interface{}{
			"action": "updateStatus",
			"chatId": 5,
			"status": "active",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Анна", env.chats.acceptedOperator)
	})

	t.Run("active status also resumes a postponed chat", func(t *testing.T) {
		env := newTestEnv(t)
		deadline := time.Now().Add(10 * time.Minute)
		env.chats.chat = &model.Chat{
			ID:               5,
			Status:           model.ChatStatusActive,
			AssignedOperator: "Анна",
			Deadline:         &deadline,
		}

		w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), map[string]interface{}{
			"action": "updateStatus",
			"chatId": 5,
			"status": "active",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"active"`)
	})

	t.Run("operator at capacity", func(t *testing.T) {
		env := newTestEnv(t)
		env.chats.err = errs.ErrOperatorBusy

		w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), map[string]interface{}{
			"action": "updateStatus",
			"chatId": 5,
			"status": "active",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("close passes reason through", func(t *testing.T) {
		env := newTestEnv(t)
		env.chats.chat = &model.Chat{ID: 5, Status: model.ChatStatusClosed}

		w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), map[string]interface{}{
			"action": "updateStatus",
			"chatId": 5,
			"status": "closed",
			"reason": "resolved",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.CloseReasonResolved, env.chats.closedReason)
	})

	t.Run("postpone parses date and time", func(t *testing.T) {
		env := newTestEnv(t)
		env.chats.chat = &model.Chat{ID: 5, Status: model.ChatStatusPostponed}

		w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), map[string]interface{}{
			"action": "updateStatus",
			"chatId": 5,
			"status": "postponed",
			"date":   "2025-03-11",
			"time":   "09:30",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 9, env.chats.postponedAt.Hour())
		assert.Equal(t, 30, env.chats.postponedAt.Minute())
	})

	t.Run("invalid transition surfaces as conflict", func(t *testing.T) {
		env := newTestEnv(t)
		env.chats.err = errs.ErrInvalidTransition

		w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), map[string]interface{}{
			"action": "updateStatus",
			"chatId": 5,
			"status": "escalated",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), map[string]interface{}{
			"action": "updateStatus",
			"chatId": 5,
			"status": "paused",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExtendChat(t *testing.T) {
	env := newTestEnv(t)
	env.chats.chat = &model.Chat{ID: 5, Status: model.ChatStatusActive, ExtensionUsed: true}

	w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), map[string]interface{}{
		"action": "extendChat",
		"chatId": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("not expired yet", func(t *testing.T) {
		env := newTestEnv(t)
		env.chats.err = errs.ErrNotExpired
		w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), map[string]interface{}{
			"action": "extendChat",
			"chatId": 5,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAccessEnforcement(t *testing.T) {
	t.Run("list requires a token", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(t, http.MethodGet, "/api/chat?action=list", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("messages is public for the client widget", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(t, http.MethodGet, "/api/chat?action=messages&chatId=5", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("list passes filters through", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(t, http.MethodGet, "/api/chat?action=list&status=active&operator=Анна", env.token(t, "Анна", "operator"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []model.ChatStatus{model.ChatStatusActive}, env.chats.listStatuses)
		assert.Equal(t, "Анна", env.chats.listOperator)
	})

	t.Run("qc archive closed to operators", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(t, http.MethodGet, "/api/chat?action=qcArchive", env.token(t, "Анна", "operator"), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), errs.ErrAccessDenied.Error())

		w = env.request(t, http.MethodGet, "/api/chat?action=qcArchive", env.token(t, "Ольга", "okk"), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("role management is admin-only", func(t *testing.T) {
		env := newTestEnv(t)
		env.employees.employee = &model.Employee{ID: 2}
		body := map[string]interface{}{
			"action":     "addEmployeeRole",
			"employeeId": 2,
			"role":       "okk",
		}
		w := env.request(t, http.MethodPut, "/api/chat", env.token(t, "Анна", "operator"), body)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.request(t, http.MethodPut, "/api/chat", env.token(t, "Борис", "admin"), body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.RoleOKK, env.employees.addedRole)
	})

	t.Run("knowledge edit gated, read open to staff", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(t, http.MethodGet, "/api/chat?action=knowledge", env.token(t, "Анна", "operator"), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := map[string]interface{}{"action": "createKnowledge", "title": "FAQ"}
		w = env.request(t, http.MethodPost, "/api/chat", env.token(t, "Анна", "operator"), body)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.request(t, http.MethodPost, "/api/chat", env.token(t, "Елена", "editor"), body)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestJiraTemplates(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "Юра", "jira_operator")

	w := env.request(t, http.MethodPost, "/api/chat", token, map[string]interface{}{
		"action": "createJiraTemplate",
		"title":  "Возврат товара",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	t.Run("delete missing template", func(t *testing.T) {
		env := newTestEnv(t)
		env.knowledge.err = errs.ErrTemplateNotFound
		w := env.request(t, http.MethodPost, "/api/chat", env.token(t, "Юра", "jira_operator"), map[string]interface{}{
			"action": "deleteJiraTemplate",
			"id":     77,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRatings(t *testing.T) {
	t.Run("okk creates rating for closed chat", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(t, http.MethodPost, "/api/chat", env.token(t, "Ольга", "okk"), map[string]interface{}{
			"action": "createRating",
			"chatId": 5,
			"score":  95,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("rating an open chat conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		env.ratings.err = errs.ErrInvalidTransition
		w := env.request(t, http.MethodPost, "/api/chat", env.token(t, "Ольга", "okk"), map[string]interface{}{
			"action": "createRating",
			"chatId": 5,
			"score":  95,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUnknownAction(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/api/chat?action=dropTables", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/chat", "", map[string]interface{}{"action": "dropTables"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
