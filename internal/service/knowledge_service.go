package service

import (
	"context"
	"errors"

	"github.com/pr-poehali-dev/client-support-chat-2/internal/errs"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
	"gorm.io/gorm"
)

// KnowledgeServicer — база знаний и шаблоны Jira.
type KnowledgeServicer interface {
	Articles(ctx context.Context) ([]model.KnowledgeArticle, error)
	CreateArticle(ctx context.Context, a *model.KnowledgeArticle) error
	UpdateArticle(ctx context.Context, id uint64, changes map[string]interface{}) (*model.KnowledgeArticle, error)
	Templates(ctx context.Context) ([]model.JiraTemplate, error)
	CreateTemplate(ctx context.Context, t *model.JiraTemplate) error
	UpdateTemplate(ctx context.Context, id uint64, changes map[string]interface{}) (*model.JiraTemplate, error)
	DeleteTemplate(ctx context.Context, id uint64) error
}

type KnowledgeService struct {
	db *gorm.DB
}

func NewKnowledgeService(db *gorm.DB) *KnowledgeService {
	return &KnowledgeService{db: db}
}

func (s *KnowledgeService) Articles(ctx context.Context) ([]model.KnowledgeArticle, error) {
	var items []model.KnowledgeArticle
	if err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *KnowledgeService) CreateArticle(ctx context.Context, a *model.KnowledgeArticle) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *KnowledgeService) UpdateArticle(ctx context.Context, id uint64, changes map[string]interface{}) (*model.KnowledgeArticle, error) {
	var a model.KnowledgeArticle
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrArticleNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&a).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *KnowledgeService) Templates(ctx context.Context) ([]model.JiraTemplate, error) {
	var items []model.JiraTemplate
	if err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *KnowledgeService) CreateTemplate(ctx context.Context, t *model.JiraTemplate) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *KnowledgeService) UpdateTemplate(ctx context.Context, id uint64, changes map[string]interface{}) (*model.JiraTemplate, error) {
	var t model.JiraTemplate
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTemplateNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&t).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *KnowledgeService) DeleteTemplate(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&model.JiraTemplate{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrTemplateNotFound
	}
	return nil
}
