package service

import (
	"context"
	"fmt"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/repository"
	"study_assistant_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// PreferenceService 用户测验偏好存储，首次读取时惰性创建默认值
type PreferenceService struct {
	PreferenceRepo *repository.QuizPreferenceRepository
	Cache          repository.PerformanceCache
	now            func() time.Time
}

func NewPreferenceService(preferenceRepo *repository.QuizPreferenceRepository, cache repository.PerformanceCache) *PreferenceService {
	return &PreferenceService{
		PreferenceRepo: preferenceRepo,
		Cache:          cache,
		now:            time.Now,
	}
}

func (s *PreferenceService) GetPreferences(ctx context.Context, userID uint) (*model.UserQuizPreferences, error) {
	prefs, err := s.PreferenceRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load quiz preferences: %w", err)
	}
	if prefs != nil {
		return prefs, nil
	}

	defaults := model.DefaultQuizPreferences(userID)
	defaults.LastUpdated = s.now()
	if err := s.PreferenceRepo.CreateIfAbsent(ctx, defaults); err != nil {
		return nil, fmt.Errorf("create default quiz preferences: %w", err)
	}
	// 并发首次访问时只有一个请求真正写入，统一以库中记录为准
	prefs, err = s.PreferenceRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load quiz preferences: %w", err)
	}
	if prefs == nil {
		return nil, fmt.Errorf("load quiz preferences: user %d missing after create", userID)
	}
	logger.Log.Debug("Default quiz preferences ready", zap.Uint("user_id", userID))
	return prefs, nil
}

// UpdatePreferences 合并非 nil 字段并刷新 LastUpdated，不做取值范围校验
func (s *PreferenceService) UpdatePreferences(ctx context.Context, userID uint, update model.UserQuizPreferencesUpdate) (*model.UserQuizPreferences, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	update.ApplyTo(prefs)
	prefs.LastUpdated = s.now()

	if err := s.PreferenceRepo.Save(ctx, prefs); err != nil {
		return nil, fmt.Errorf("save quiz preferences: %w", err)
	}
	return prefs, nil
}

// ClearUserData 删除偏好与缓存的表现指标，可重复调用
func (s *PreferenceService) ClearUserData(ctx context.Context, userID uint) error {
	if err := s.PreferenceRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete quiz preferences: %w", err)
	}
	if err := s.Cache.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cached performance: %w", err)
	}
	logger.Log.Info("Cleared quiz personalization data", zap.Uint("user_id", userID))
	return nil
}
