package model

import (
	"time"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// QuizSession 一次测验作答记录
// swagger:model QuizSession
type QuizSession struct {
	UUIDBase
	UserID         uint          `gorm:"index;not null" json:"userId"`
	QuizID         string        `gorm:"type:varchar(36);index" json:"quizId"`
	Status         SessionStatus `gorm:"size:16;index;default:'in_progress'" json:"status"`
	Score          int           `gorm:"default:0" json:"score"`
	TotalQuestions int           `gorm:"default:0" json:"totalQuestions"`
	Percentage     *float64      `json:"percentage,omitempty"`
	TimeSpent      int           `gorm:"default:0" json:"timeSpent"` // 秒
	Answers        []QuizAnswer  `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"answers"`
	StartedAt      time.Time     `gorm:"index" json:"startedAt"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// PercentageOrZero 缺失的百分比按 0 计算
func (s *QuizSession) PercentageOrZero() float64 {
	if s.Percentage == nil {
		return 0
	}
	return *s.Percentage
}

type QuizAnswer struct {
	BaseModel
	SessionID  string `gorm:"type:varchar(36);index;not null" json:"sessionId"`
	QuestionID string `gorm:"size:64;not null" json:"questionId"`
	Topic      string `gorm:"size:255" json:"topic,omitempty"`
	Answer     string `gorm:"type:text" json:"answer"`
	IsCorrect  bool   `json:"isCorrect"`
	TimeSpent  int    `gorm:"default:0" json:"timeSpent"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}

// AnswerSubmission 提交单题答案的请求
type AnswerSubmission struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"timeSpent" binding:"min=0"`
}
