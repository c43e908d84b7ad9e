package model

import (
	"time"
)

type PerformanceTrend string

const (
	TrendImproving PerformanceTrend = "improving"
	TrendDeclining PerformanceTrend = "declining"
	TrendStable    PerformanceTrend = "stable"
)

// PerformanceMetrics 由会话历史推导的表现指标，仅缓存不持久化
type PerformanceMetrics struct {
	AverageScore           float64          `json:"averageScore"`
	AverageTimePerQuestion float64          `json:"averageTimePerQuestion"`
	StrongTopics           []string         `json:"strongTopics"`
	WeakTopics             []string         `json:"weakTopics"`
	PreferredDifficulty    Difficulty       `json:"preferredDifficulty"`
	RecentPerformanceTrend PerformanceTrend `json:"recentPerformanceTrend"`
	CompletedSessions      int              `json:"completedSessions"`
	AnalyzedAt             time.Time        `json:"analyzedAt"`
}

type QuizRecommendations struct {
	RecommendedDifficulty    Difficulty     `json:"recommendedDifficulty"`
	RecommendedTopics        []string       `json:"recommendedTopics"`
	RecommendedQuestionTypes []QuestionType `json:"recommendedQuestionTypes"`
	ImprovementAreas         []string       `json:"improvementAreas"`
	MotivationalMessage      string         `json:"motivationalMessage"`
}

type DifficultyRating string

const (
	RatingTooEasy   DifficultyRating = "too_easy"
	RatingTooHard   DifficultyRating = "too_hard"
	RatingJustRight DifficultyRating = "just_right"
)

type TimeRating string

const (
	TimeTooFast   TimeRating = "too_fast"
	TimeTooSlow   TimeRating = "too_slow"
	TimeJustRight TimeRating = "just_right"
)

// QuizFeedback 用户完成测验后的主观反馈
type QuizFeedback struct {
	DifficultyRating DifficultyRating `json:"difficultyRating,omitempty"`
	TimeRating       TimeRating       `json:"timeRating,omitempty"`
	TopicInterest    []string         `json:"topicInterest,omitempty"`
}

func (f *QuizFeedback) Valid() bool {
	switch f.DifficultyRating {
	case "", RatingTooEasy, RatingTooHard, RatingJustRight:
	default:
		return false
	}
	switch f.TimeRating {
	case "", TimeTooFast, TimeTooSlow, TimeJustRight:
	default:
		return false
	}
	return true
}
