// Package syncer — Go-клиент протокола поддержки и интервальные опросчики
// для дашбордов. Сервер — единственный источник истины: клиент ничего не
// патчит локально, мутации это fire-and-forget триггеры, состояние
// обновляется только результатами опроса.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pr-poehali-dev/client-support-chat-2/internal/lifecycle"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
)

// Client ходит на единый эндпоинт /api/chat.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SetToken сохраняет токен сотрудника, полученный при Login.
func (c *Client) SetToken(token string) { c.token = token }

// ChatSummary повторяет ответ list сервера.
type ChatSummary struct {
	model.Chat
	ClientName   string              `json:"clientName,omitempty"`
	Email        string              `json:"email,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	IPAddress    string              `json:"ipAddress,omitempty"`
	MessageCount int64               `json:"messageCount"`
	Remaining    lifecycle.Remaining `json:"remaining"`
}

// LoginResult — ответ действия login.
type LoginResult struct {
	Success  bool            `json:"success"`
	Employee *model.Employee `json:"employee,omitempty"`
	Token    string          `json:"token,omitempty"`
	Sections []string        `json:"sections,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// StartChatResult — ответ действия startChat.
type StartChatResult struct {
	ChatID    uint64 `json:"chatId"`
	ClientID  uint64 `json:"clientId"`
	SessionID string `json:"sessionId"`
}

func (c *Client) get(ctx context.Context, action string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("action", action)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, action string, body map[string]interface{}, out interface{}) error {
	if body == nil {
		body = map[string]interface{}{}
	}
	body["action"] = action
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/chat", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login запрашивает вход сотрудника и запоминает выданный токен.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	params := url.Values{}
	params.Set("username", username)
	params.Set("password", password)
	var res LoginResult
	if err := c.get(ctx, "login", params, &res); err != nil {
		return nil, err
	}
	if res.Token != "" {
		c.SetToken(res.Token)
	}
	return &res, nil
}

func (c *Client) StartChat(ctx context.Context, ip, name, email, phone string) (*StartChatResult, error) {
	var res StartChatResult
	err := c.send(ctx, http.MethodPost, "startChat", map[string]interface{}{
		"ipAddress": ip,
		"name":      name,
		"email":     email,
		"phone":     phone,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID uint64, sender model.SenderType, senderName, text string) error {
	return c.send(ctx, http.MethodPost, "sendMessage", map[string]interface{}{
		"chatId":     chatID,
		"senderType": string(sender),
		"senderName": senderName,
		"message":    text,
	}, nil)
}

func (c *Client) Chats(ctx context.Context) ([]ChatSummary, error) {
	var res struct {
		Chats []ChatSummary `json:"chats"`
	}
	if err := c.get(ctx, "list", nil, &res); err != nil {
		return nil, err
	}
	return res.Chats, nil
}

func (c *Client) Messages(ctx context.Context, chatID uint64) ([]model.Message, error) {
	params := url.Values{}
	params.Set("chatId", fmt.Sprintf("%d", chatID))
	var res struct {
		Messages []model.Message `json:"messages"`
	}
	if err := c.get(ctx, "messages", params, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (c *Client) Clients(ctx context.Context) ([]model.Client, error) {
	var res struct {
		Clients []model.Client `json:"clients"`
	}
	if err := c.get(ctx, "clients", nil, &res); err != nil {
		return nil, err
	}
	return res.Clients, nil
}

func (c *Client) Employees(ctx context.Context) ([]model.Employee, error) {
	var res struct {
		Employees []model.Employee `json:"employees"`
	}
	if err := c.get(ctx, "employees", nil, &res); err != nil {
		return nil, err
	}
	return res.Employees, nil
}

func (c *Client) Knowledge(ctx context.Context) ([]model.KnowledgeArticle, error) {
	var res struct {
		Knowledge []model.KnowledgeArticle `json:"knowledge"`
	}
	if err := c.get(ctx, "knowledge", nil, &res); err != nil {
		return nil, err
	}
	return res.Knowledge, nil
}

func (c *Client) Shifts(ctx context.Context) ([]model.Shift, error) {
	var res struct {
		Shifts []model.Shift `json:"shifts"`
	}
	if err := c.get(ctx, "shifts", nil, &res); err != nil {
		return nil, err
	}
	return res.Shifts, nil
}

func (c *Client) JiraTemplates(ctx context.Context) ([]model.JiraTemplate, error) {
	var res struct {
		JiraTemplates []model.JiraTemplate `json:"jiraTemplates"`
	}
	if err := c.get(ctx, "jiraTemplates", nil, &res); err != nil {
		return nil, err
	}
	return res.JiraTemplates, nil
}

func (c *Client) ClosedChats(ctx context.Context) ([]ChatSummary, error) {
	var res struct {
		Chats []ChatSummary `json:"chats"`
	}
	if err := c.get(ctx, "closedChats", nil, &res); err != nil {
		return nil, err
	}
	return res.Chats, nil
}

func (c *Client) Ratings(ctx context.Context, operator string) ([]model.Rating, error) {
	params := url.Values{}
	if operator != "" {
		params.Set("operator", operator)
	}
	var res struct {
		Ratings []model.Rating `json:"ratings"`
	}
	if err := c.get(ctx, "ratings", params, &res); err != nil {
		return nil, err
	}
	return res.Ratings, nil
}

func (c *Client) QCArchive(ctx context.Context) ([]model.Rating, error) {
	var res struct {
		QCArchive []model.Rating `json:"qcArchive"`
	}
	if err := c.get(ctx, "qcArchive", nil, &res); err != nil {
		return nil, err
	}
	return res.QCArchive, nil
}

// AcceptChat и остальные мутации — триггеры без локального патча состояния.
func (c *Client) AcceptChat(ctx context.Context, chatID uint64, operator string) error {
	return c.send(ctx, http.MethodPut, "updateStatus", map[string]interface{}{
		"chatId":           chatID,
		"status":           string(model.ChatStatusActive),
		"assignedOperator": operator,
	}, nil)
}

func (c *Client) CloseChat(ctx context.Context, chatID uint64, reason model.CloseReason) error {
	return c.send(ctx, http.MethodPut, "updateStatus", map[string]interface{}{
		"chatId": chatID,
		"status": string(model.ChatStatusClosed),
		"reason": string(reason),
	}, nil)
}

func (c *Client) PostponeChat(ctx context.Context, chatID uint64, date, tm string) error {
	return c.send(ctx, http.MethodPut, "updateStatus", map[string]interface{}{
		"chatId": chatID,
		"status": string(model.ChatStatusPostponed),
		"date":   date,
		"time":   tm,
	}, nil)
}

func (c *Client) EscalateChat(ctx context.Context, chatID uint64) error {
	return c.send(ctx, http.MethodPut, "updateStatus", map[string]interface{}{
		"chatId": chatID,
		"status": string(model.ChatStatusEscalated),
	}, nil)
}

func (c *Client) ExtendChat(ctx context.Context, chatID uint64) error {
	return c.send(ctx, http.MethodPut, "extendChat", map[string]interface{}{
		"chatId": chatID,
	}, nil)
}

func (c *Client) UpdateOperatorStatus(ctx context.Context, employeeID uint64, status model.OperatorStatus) error {
	return c.send(ctx, http.MethodPut, "updateOperatorStatus", map[string]interface{}{
		"employeeId": employeeID,
		"status":     string(status),
	}, nil)
}
