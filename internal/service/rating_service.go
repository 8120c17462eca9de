package service

import (
	"context"
	"errors"

	"github.com/pr-poehali-dev/client-support-chat-2/internal/errs"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
	"gorm.io/gorm"
)

// RatingServicer — оценки ОКК по закрытым чатам и их архив.
type RatingServicer interface {
	Create(ctx context.Context, r *model.Rating) error
	Ratings(ctx context.Context, operator string) ([]model.Rating, error)
	Archive(ctx context.Context, ratingID uint64) (*model.Rating, error)
	QCArchive(ctx context.Context) ([]model.Rating, error)
}

type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// Create сохраняет оценку. Чат должен существовать и быть закрыт —
// действующие чаты ОКК не оценивает.
func (s *RatingService) Create(ctx context.Context, r *model.Rating) error {
	var chat model.Chat
	if err := s.db.WithContext(ctx).First(&chat, r.ChatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrChatNotFound
		}
		return err
	}
	if chat.Status != model.ChatStatusClosed {
		return errs.ErrInvalidTransition
	}
	if r.OperatorName == "" {
		r.OperatorName = chat.AssignedOperator
	}
	return s.db.WithContext(ctx).Create(r).Error
}

// Ratings — активные (неархивированные) оценки; operator сужает выборку.
func (s *RatingService) Ratings(ctx context.Context, operator string) ([]model.Rating, error) {
	tx := s.db.WithContext(ctx).Where("archived = ?", false)
	if operator != "" {
		tx = tx.Where("operator_name = ?", operator)
	}
	var items []model.Rating
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Archive переносит оценку в архив ОКК. Сама запись не редактируется.
func (s *RatingService) Archive(ctx context.Context, ratingID uint64) (*model.Rating, error) {
	var r model.Rating
	if err := s.db.WithContext(ctx).First(&r, ratingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRatingNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&r).Update("archived", true).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RatingService) QCArchive(ctx context.Context) ([]model.Rating, error) {
	var items []model.Rating
	if err := s.db.WithContext(ctx).
		Where("archived = ?", true).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
