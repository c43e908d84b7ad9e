package service

import (
	"context"
	"fmt"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/util"
	"study_assistant_backend/pkg/logger"
	"study_assistant_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	adaptiveMinSessions = 3
	maxFocusAreas       = 10

	timeLimitStep = 5
	timeLimitMin  = 5
	timeLimitMax  = 60

	excellentScore = 90.0
	goodScore      = 75.0
)

// PersonalizationService 根据偏好与历史表现调整测验生成参数
type PersonalizationService struct {
	Preferences *PreferenceService
	Analyzer    *PerformanceAnalyzer
}

func NewPersonalizationService(preferences *PreferenceService, analyzer *PerformanceAnalyzer) *PersonalizationService {
	return &PersonalizationService{
		Preferences: preferences,
		Analyzer:    analyzer,
	}
}

// PersonalizeQuizRequest 返回新的请求对象，base 及其切片、指针均不会被修改
func (s *PersonalizationService) PersonalizeQuizRequest(ctx context.Context, userID uint, base *model.QuizGenerationRequest, sessions []model.QuizSession) (*model.QuizGenerationRequest, error) {
	ctx, span := tracing.Tracer.Start(ctx, "PersonalizationService.PersonalizeQuizRequest")
	defer span.End()
	span.SetAttributes(attribute.Int("user_id", int(userID)), attribute.Int("sessions", len(sessions)))

	prefs, err := s.Preferences.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics := s.Analyzer.Analyze(ctx, userID, sessions)

	out := cloneGenerationRequest(base)

	switch {
	case prefs.AdaptiveDifficulty && len(sessions) >= adaptiveMinSessions:
		d := metrics.PreferredDifficulty
		out.Difficulty = &d
	case prefs.PreferredDifficulty != model.DifficultyAdaptive:
		d := prefs.PreferredDifficulty
		out.Difficulty = &d
	}

	if len(out.QuestionTypes) == 0 {
		out.QuestionTypes = append([]model.QuestionType(nil), prefs.PreferredQuestionTypes...)
	}

	if out.QuestionCount == nil {
		n := prefs.PreferredQuestionCount
		out.QuestionCount = &n
	}

	if out.TimeLimit == nil && prefs.PreferredTimeLimit != nil {
		limit := *prefs.PreferredTimeLimit
		out.TimeLimit = &limit
	}

	if topics := mergeUnique(out.FocusTopics, prefs.FocusAreas); len(topics) > 0 {
		out.FocusTopics = topics
	}
	if len(metrics.WeakTopics) > 0 {
		out.FocusTopics = mergeUnique(out.FocusTopics, metrics.WeakTopics)
	}

	return out, nil
}

func (s *PersonalizationService) GetQuizRecommendations(ctx context.Context, userID uint, sessions []model.QuizSession) (*model.QuizRecommendations, error) {
	prefs, err := s.Preferences.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics := s.Analyzer.Analyze(ctx, userID, sessions)

	return &model.QuizRecommendations{
		RecommendedDifficulty:    metrics.PreferredDifficulty,
		RecommendedTopics:        mergeUnique(metrics.WeakTopics, prefs.FocusAreas),
		RecommendedQuestionTypes: append([]model.QuestionType{}, prefs.PreferredQuestionTypes...),
		ImprovementAreas:         append([]string{}, metrics.WeakTopics...),
		MotivationalMessage:      motivationalMessage(metrics),
	}, nil
}

func motivationalMessage(m model.PerformanceMetrics) string {
	var opening string
	switch m.RecentPerformanceTrend {
	case model.TrendImproving:
		opening = "You're on an upward streak, your recent scores keep climbing! "
	case model.TrendDeclining:
		opening = "Recent quizzes have been tougher, and that's part of learning. "
	default:
		opening = "You're keeping a steady pace. "
	}

	var closing string
	switch {
	case m.AverageScore >= excellentScore:
		closing = "Your results are outstanding, try a harder challenge next."
	case m.AverageScore >= goodScore:
		closing = "Solid work, a bit more practice will take you to mastery."
	default:
		closing = "Focus on your improvement areas and the gains will follow."
	}
	return opening + closing
}

// UpdatePreferencesFromQuizCompletion feedback 为 nil 时不做任何修改。
// 存储难度为 adaptive 时跳过难度阶梯调整。
func (s *PersonalizationService) UpdatePreferencesFromQuizCompletion(ctx context.Context, userID uint, session *model.QuizSession, feedback *model.QuizFeedback) (*model.UserQuizPreferences, error) {
	if feedback == nil {
		return nil, nil
	}
	if !feedback.Valid() {
		return nil, fmt.Errorf("%w: difficulty=%q time=%q", util.ErrInvalidFeedback, feedback.DifficultyRating, feedback.TimeRating)
	}

	prefs, err := s.Preferences.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	var update model.UserQuizPreferencesUpdate

	if d, ok := adjustDifficulty(prefs.PreferredDifficulty, feedback.DifficultyRating); ok {
		update.PreferredDifficulty = &d
	}

	if prefs.PreferredTimeLimit != nil {
		if limit, ok := adjustTimeLimit(*prefs.PreferredTimeLimit, feedback.TimeRating); ok {
			update.PreferredTimeLimit = &limit
		}
	}

	if len(feedback.TopicInterest) > 0 {
		areas := mergeUnique(prefs.FocusAreas, feedback.TopicInterest)
		if len(areas) > maxFocusAreas {
			areas = areas[len(areas)-maxFocusAreas:]
		}
		update.FocusAreas = &areas
	}

	updated, err := s.Preferences.UpdatePreferences(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	sessionID := ""
	if session != nil {
		sessionID = session.ID
	}
	logger.Log.Info("Applied quiz feedback to preferences",
		zap.Uint("user_id", userID),
		zap.String("session_id", sessionID),
		zap.String("difficulty", string(updated.PreferredDifficulty)),
		zap.Int("focus_areas", len(updated.FocusAreas)),
	)
	return updated, nil
}

func adjustDifficulty(current model.Difficulty, rating model.DifficultyRating) (model.Difficulty, bool) {
	if current == model.DifficultyAdaptive {
		return current, false
	}

	idx := -1
	for i, d := range model.DifficultyLadder {
		if d == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return current, false
	}

	switch rating {
	case model.RatingTooEasy:
		if idx < len(model.DifficultyLadder)-1 {
			return model.DifficultyLadder[idx+1], true
		}
	case model.RatingTooHard:
		if idx > 0 {
			return model.DifficultyLadder[idx-1], true
		}
	}
	return current, false
}

func adjustTimeLimit(current int, rating model.TimeRating) (int, bool) {
	switch rating {
	case model.TimeTooFast:
		return min(current+timeLimitStep, timeLimitMax), true
	case model.TimeTooSlow:
		return max(current-timeLimitStep, timeLimitMin), true
	}
	return current, false
}

func cloneGenerationRequest(base *model.QuizGenerationRequest) *model.QuizGenerationRequest {
	out := &model.QuizGenerationRequest{}
	if base == nil {
		return out
	}
	*out = *base

	if base.Difficulty != nil {
		d := *base.Difficulty
		out.Difficulty = &d
	}
	if base.QuestionCount != nil {
		n := *base.QuestionCount
		out.QuestionCount = &n
	}
	if base.TimeLimit != nil {
		limit := *base.TimeLimit
		out.TimeLimit = &limit
	}
	if base.QuestionTypes != nil {
		out.QuestionTypes = append([]model.QuestionType(nil), base.QuestionTypes...)
	}
	if base.FocusTopics != nil {
		out.FocusTopics = append([]string(nil), base.FocusTopics...)
	}
	return out
}

// mergeUnique 保留首次出现的顺序去重，返回新切片
func mergeUnique(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
