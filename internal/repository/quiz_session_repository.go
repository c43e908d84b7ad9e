package repository

import (
	"context"
	"errors"
	"study_assistant_backend/internal/model"

	"gorm.io/gorm"
)

type QuizSessionRepository struct {
	DB *gorm.DB
}

func NewQuizSessionRepository(db *gorm.DB) *QuizSessionRepository {
	return &QuizSessionRepository{DB: db}
}

func (r *QuizSessionRepository) Create(ctx context.Context, session *model.QuizSession) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

// Update 保存会话字段，不级联答案
func (r *QuizSessionRepository) Update(ctx context.Context, session *model.QuizSession) error {
	return r.DB.WithContext(ctx).Omit("Answers").Save(session).Error
}

func (r *QuizSessionRepository) AddAnswer(ctx context.Context, answer *model.QuizAnswer) error {
	return r.DB.WithContext(ctx).Create(answer).Error
}

func (r *QuizSessionRepository) FindByIDAndUserID(ctx context.Context, sessionID string, userID uint) (*model.QuizSession, error) {
	var session model.QuizSession
	err := r.DB.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByUser 按开始时间升序返回最近 limit 条会话（limit<=0 表示全部）
func (r *QuizSessionRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.QuizSession, error) {
	var sessions []model.QuizSession
	q := r.DB.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

func (r *QuizSessionRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&model.QuizSession{}).Unscoped().Select("id").Where("user_id = ?", userID)
		if err := tx.Unscoped().Where("session_id IN (?)", sub).Delete(&model.QuizAnswer{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("user_id = ?", userID).Delete(&model.QuizSession{}).Error
	})
}
