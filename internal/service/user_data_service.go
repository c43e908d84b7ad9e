package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/repository"
	"study_assistant_backend/internal/util"
	"study_assistant_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// UserDataService 用户测验数据的导出与删除
type UserDataService struct {
	Preferences *PreferenceService
	Sessions    *QuizSessionService
	QuizRepo    *repository.QuizRepository
	SessionRepo *repository.QuizSessionRepository
	States      *QuizStateRegistry
	Storage     *StorageService
	now         func() time.Time
}

func NewUserDataService(
	preferences *PreferenceService,
	sessions *QuizSessionService,
	quizRepo *repository.QuizRepository,
	sessionRepo *repository.QuizSessionRepository,
	states *QuizStateRegistry,
	storage *StorageService,
) *UserDataService {
	return &UserDataService{
		Preferences: preferences,
		Sessions:    sessions,
		QuizRepo:    quizRepo,
		SessionRepo: sessionRepo,
		States:      states,
		Storage:     storage,
		now:         time.Now,
	}
}

func exportDir(userID uint) string {
	return path.Join(util.ExportPrefix, strconv.FormatUint(uint64(userID), 10))
}

// Export 导出偏好、表现指标与完整会话历史为 JSON 并上传
func (s *UserDataService) Export(ctx context.Context, userID uint) (*model.UserDataExportResult, error) {
	prefs, err := s.Preferences.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.SessionRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("load quiz history: %w", err)
	}

	exportedAt := s.now()
	doc := model.UserDataExport{
		UserID:      userID,
		ExportedAt:  exportedAt,
		Preferences: prefs,
		Performance: s.Sessions.Analyzer.Analyze(ctx, userID, sessions),
		Sessions:    sessions,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	objectName := path.Join(exportDir(userID), exportedAt.UTC().Format(util.ExportTimeFormat)+".json")
	url, err := s.Storage.Upload(ctx, objectName, bytes.NewReader(data), int64(len(data)), util.MimeJSON)
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	logger.Log.Info("Exported user quiz data",
		zap.Uint("user_id", userID),
		zap.String("object", objectName),
		zap.Int("sessions", len(sessions)),
	)
	return &model.UserDataExportResult{
		URL:        url,
		ObjectName: objectName,
		Sessions:   len(sessions),
		ExportedAt: exportedAt,
	}, nil
}

// Erase 删除用户的偏好、缓存、会话、测验与导出文件，并重置状态机。可重复调用
func (s *UserDataService) Erase(ctx context.Context, userID uint) error {
	// 生成中的请求会在删除之后写入测验与会话
	if err := s.States.ResetIfIdle(userID); err != nil {
		return err
	}
	if err := s.Preferences.ClearUserData(ctx, userID); err != nil {
		return err
	}
	if err := s.SessionRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete quiz sessions: %w", err)
	}
	if err := s.QuizRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete quizzes: %w", err)
	}
	if err := s.Storage.DeletePrefix(ctx, exportDir(userID)); err != nil {
		logger.Log.Warn("Failed to delete user exports", zap.Uint("user_id", userID), zap.Error(err))
	}
	logger.Log.Info("Erased user quiz data", zap.Uint("user_id", userID))
	return nil
}
