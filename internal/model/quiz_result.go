package model

import (
	"time"
)

type TopicScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// QuizResult 测验完成后的成绩，由会话计算得出，不单独持久化
type QuizResult struct {
	SessionID      string                `json:"sessionId"`
	QuizID         string                `json:"quizId"`
	Score          int                   `json:"score"`
	TotalQuestions int                   `json:"totalQuestions"`
	Percentage     float64               `json:"percentage"`
	TimeSpent      int                   `json:"timeSpent"`
	TopicBreakdown map[string]TopicScore `json:"topicBreakdown,omitempty"`
	CompletedAt    time.Time             `json:"completedAt"`
}

// QuizCompletion 完成测验后的汇总：成绩、更新后的偏好与最新表现
type QuizCompletion struct {
	Result      *QuizResult          `json:"result"`
	Preferences *UserQuizPreferences `json:"preferences,omitempty"`
	Performance PerformanceMetrics   `json:"performance"`
	State       QuizStateView        `json:"state"`
}
