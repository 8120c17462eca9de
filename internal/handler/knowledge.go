package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/access"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
)

func (a *API) listKnowledge(c *gin.Context) {
	if a.requireAccess(c, access.SectionKnowledge) == nil {
		return
	}
	items, err := a.knowledge.Articles(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"knowledge": items})
}

type createKnowledgeRequest struct {
	Action   string `json:"action"`
	Category string `json:"category"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
}

func (a *API) createKnowledge(c *gin.Context) {
	claims := a.requireAccess(c, access.SectionKnowledgeEdit)
	if claims == nil {
		return
	}
	var req createKnowledgeRequest
	if !a.bind(c, &req) {
		return
	}
	article := &model.KnowledgeArticle{
		Category: req.Category,
		Title:    req.Title,
		Content:  req.Content,
		Author:   claims.Name,
	}
	if err := a.knowledge.CreateArticle(c.Request.Context(), article); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

type updateKnowledgeRequest struct {
	Action   string  `json:"action"`
	ID       uint64  `json:"id" binding:"required"`
	Category *string `json:"category,omitempty"`
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
}

func (a *API) updateKnowledge(c *gin.Context) {
	if a.requireAccess(c, access.SectionKnowledgeEdit) == nil {
		return
	}
	var req updateKnowledgeRequest
	if !a.bind(c, &req) {
		return
	}
	changes := make(map[string]interface{})
	if req.Category != nil {
		changes["category"] = *req.Category
	}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Content != nil {
		changes["content"] = *req.Content
	}
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}
	article, err := a.knowledge.UpdateArticle(c.Request.Context(), req.ID, changes)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (a *API) listTemplates(c *gin.Context) {
	if a.requireAccess(c, access.SectionJiraTemplates) == nil {
		return
	}
	items, err := a.knowledge.Templates(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jiraTemplates": items})
}

type createTemplateRequest struct {
	Action      string `json:"action"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (a *API) createTemplate(c *gin.Context) {
	claims := a.requireAccess(c, access.SectionJiraTemplates)
	if claims == nil {
		return
	}
	var req createTemplateRequest
	if !a.bind(c, &req) {
		return
	}
	tpl := &model.JiraTemplate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Author:      claims.Name,
	}
	if err := a.knowledge.CreateTemplate(c.Request.Context(), tpl); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

type updateTemplateRequest struct {
	Action      string  `json:"action"`
	ID          uint64  `json:"id" binding:"required"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

func (a *API) updateTemplate(c *gin.Context) {
	if a.requireAccess(c, access.SectionJiraTemplates) == nil {
		return
	}
	var req updateTemplateRequest
	if !a.bind(c, &req) {
		return
	}
	changes := make(map[string]interface{})
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Priority != nil {
		changes["priority"] = *req.Priority
	}
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}
	tpl, err := a.knowledge.UpdateTemplate(c.Request.Context(), req.ID, changes)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

type deleteTemplateRequest struct {
	Action string `json:"action"`
	ID     uint64 `json:"id" binding:"required"`
}

func (a *API) deleteTemplate(c *gin.Context) {
	if a.requireAccess(c, access.SectionJiraTemplates) == nil {
		return
	}
	var req deleteTemplateRequest
	if !a.bind(c, &req) {
		return
	}
	if err := a.knowledge.DeleteTemplate(c.Request.Context(), req.ID); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
