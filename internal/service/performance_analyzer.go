package service

import (
	"context"
	"sort"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/repository"
	"study_assistant_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

const (
	hardScoreThreshold = 85.0
	easyScoreThreshold = 65.0

	trendMinSessions = 6
	trendWindow      = 5
	trendDelta       = 5.0

	topicMinAnswers     = 3
	weakTopicAccuracy   = 60.0
	strongTopicAccuracy = 80.0
)

// DifficultyForScore 平均分 >=85 为 hard，<65 为 easy，其余 medium
func DifficultyForScore(avg float64) model.Difficulty {
	switch {
	case avg >= hardScoreThreshold:
		return model.DifficultyHard
	case avg < easyScoreThreshold:
		return model.DifficultyEasy
	default:
		return model.DifficultyMedium
	}
}

// AnalyzePerformance 只统计已完成的会话，输入不会被修改
func AnalyzePerformance(sessions []model.QuizSession) model.PerformanceMetrics {
	completed := make([]*model.QuizSession, 0, len(sessions))
	for i := range sessions {
		if sessions[i].Status == model.SessionCompleted {
			completed = append(completed, &sessions[i])
		}
	}

	metrics := model.PerformanceMetrics{
		StrongTopics:           []string{},
		WeakTopics:             []string{},
		PreferredDifficulty:    DifficultyForScore(0),
		RecentPerformanceTrend: model.TrendStable,
		CompletedSessions:      len(completed),
		AnalyzedAt:             time.Now(),
	}
	if len(completed) == 0 {
		return metrics
	}

	var totalScore float64
	var totalTime, totalAnswers int
	for _, s := range completed {
		totalScore += s.PercentageOrZero()
		totalTime += s.TimeSpent
		totalAnswers += len(s.Answers)
	}

	metrics.AverageScore = totalScore / float64(len(completed))
	if totalAnswers > 0 {
		metrics.AverageTimePerQuestion = float64(totalTime) / float64(totalAnswers)
	}
	metrics.PreferredDifficulty = DifficultyForScore(metrics.AverageScore)
	metrics.RecentPerformanceTrend = performanceTrend(completed)
	metrics.StrongTopics, metrics.WeakTopics = topicStrengths(completed)

	return metrics
}

func performanceTrend(completed []*model.QuizSession) model.PerformanceTrend {
	n := len(completed)
	if n < trendMinSessions {
		return model.TrendStable
	}

	recent := completed[n-trendWindow:]
	start := n - 2*trendWindow
	if start < 0 {
		start = 0
	}
	previous := completed[start : n-trendWindow]

	diff := meanPercentage(recent) - meanPercentage(previous)
	switch {
	case diff > trendDelta:
		return model.TrendImproving
	case diff < -trendDelta:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func meanPercentage(sessions []*model.QuizSession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sessions {
		sum += s.PercentageOrZero()
	}
	return sum / float64(len(sessions))
}

// topicStrengths 需要答题记录带有 Topic，否则返回空列表
func topicStrengths(completed []*model.QuizSession) (strong, weak []string) {
	type tally struct{ correct, total int }
	byTopic := make(map[string]*tally)
	for _, s := range completed {
		for _, a := range s.Answers {
			if a.Topic == "" {
				continue
			}
			t, ok := byTopic[a.Topic]
			if !ok {
				t = &tally{}
				byTopic[a.Topic] = t
			}
			t.total++
			if a.IsCorrect {
				t.correct++
			}
		}
	}

	strong, weak = []string{}, []string{}
	for topic, t := range byTopic {
		if t.total < topicMinAnswers {
			continue
		}
		accuracy := float64(t.correct) / float64(t.total) * 100
		switch {
		case accuracy < weakTopicAccuracy:
			weak = append(weak, topic)
		case accuracy >= strongTopicAccuracy:
			strong = append(strong, topic)
		}
	}
	sort.Strings(strong)
	sort.Strings(weak)
	return strong, weak
}

type PerformanceAnalyzer struct {
	Cache repository.PerformanceCache
}

func NewPerformanceAnalyzer(cache repository.PerformanceCache) *PerformanceAnalyzer {
	return &PerformanceAnalyzer{Cache: cache}
}

// Analyze 计算指标并覆盖写入该用户的缓存
func (a *PerformanceAnalyzer) Analyze(ctx context.Context, userID uint, sessions []model.QuizSession) model.PerformanceMetrics {
	metrics := AnalyzePerformance(sessions)
	if err := a.Cache.Set(ctx, userID, metrics); err != nil {
		logger.Log.Warn("Failed to cache performance metrics", zap.Uint("user_id", userID), zap.Error(err))
	}
	return metrics
}

func (a *PerformanceAnalyzer) Cached(ctx context.Context, userID uint) (*model.PerformanceMetrics, bool) {
	m, ok, err := a.Cache.Get(ctx, userID)
	if err != nil {
		logger.Log.Warn("Failed to read cached performance metrics", zap.Uint("user_id", userID), zap.Error(err))
		return nil, false
	}
	return m, ok
}
