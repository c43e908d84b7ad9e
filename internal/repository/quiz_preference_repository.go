package repository

import (
	"context"
	"errors"
	"study_assistant_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizPreferenceRepository struct {
	DB *gorm.DB
}

func NewQuizPreferenceRepository(db *gorm.DB) *QuizPreferenceRepository {
	return &QuizPreferenceRepository{DB: db}
}

// FindByUserID 不存在时返回 (nil, nil)
func (r *QuizPreferenceRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserQuizPreferences, error) {
	var prefs model.UserQuizPreferences
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// CreateIfAbsent 用户已有记录时不写入也不报错，prefs.ID 不保证被回填
func (r *QuizPreferenceRepository) CreateIfAbsent(ctx context.Context, prefs *model.UserQuizPreferences) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(prefs).Error
}

func (r *QuizPreferenceRepository) Save(ctx context.Context, prefs *model.UserQuizPreferences) error {
	return r.DB.WithContext(ctx).Save(prefs).Error
}

// DeleteByUserID 物理删除，重复调用不报错
func (r *QuizPreferenceRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&model.UserQuizPreferences{}).Error
}
