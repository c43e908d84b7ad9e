package model

import (
	"time"
)

const DefaultQuestionCount = 10

// UserQuizPreferences 用户测验偏好，每个用户一条
// swagger:model UserQuizPreferences
type UserQuizPreferences struct {
	BaseModel
	UserID                 uint           `gorm:"uniqueIndex;not null" json:"userId"`
	PreferredDifficulty    Difficulty     `gorm:"size:16;default:'medium'" json:"preferredDifficulty"`
	PreferredQuestionTypes []QuestionType `gorm:"serializer:json;type:text" json:"preferredQuestionTypes"`
	PreferredQuestionCount int            `gorm:"default:10" json:"preferredQuestionCount"`
	PreferredTimeLimit     *int           `json:"preferredTimeLimit,omitempty"` // 分钟
	FocusAreas             []string       `gorm:"serializer:json;type:text" json:"focusAreas"`
	AdaptiveDifficulty     bool           `json:"adaptiveDifficulty"`
	ShowExplanations       bool           `json:"showExplanations"`
	AllowReview            bool           `json:"allowReview"`
	LastUpdated            time.Time      `json:"lastUpdated"`
}

func (UserQuizPreferences) TableName() string {
	return "user_quiz_preferences"
}

func DefaultQuizPreferences(userID uint) *UserQuizPreferences {
	return &UserQuizPreferences{
		UserID:                 userID,
		PreferredDifficulty:    DifficultyMedium,
		PreferredQuestionTypes: []QuestionType{QuestionMultipleChoice, QuestionTrueFalse},
		PreferredQuestionCount: DefaultQuestionCount,
		FocusAreas:             []string{},
		AdaptiveDifficulty:     true,
		ShowExplanations:       true,
		AllowReview:            true,
		LastUpdated:            time.Now(),
	}
}

// UserQuizPreferencesUpdate 偏好的部分更新，nil 字段保持不变
type UserQuizPreferencesUpdate struct {
	PreferredDifficulty    *Difficulty     `json:"preferredDifficulty,omitempty"`
	PreferredQuestionTypes *[]QuestionType `json:"preferredQuestionTypes,omitempty"`
	PreferredQuestionCount *int            `json:"preferredQuestionCount,omitempty"`
	PreferredTimeLimit     *int            `json:"preferredTimeLimit,omitempty"`
	FocusAreas             *[]string       `json:"focusAreas,omitempty"`
	AdaptiveDifficulty     *bool           `json:"adaptiveDifficulty,omitempty"`
	ShowExplanations       *bool           `json:"showExplanations,omitempty"`
	AllowReview            *bool           `json:"allowReview,omitempty"`
}

func (u *UserQuizPreferencesUpdate) ApplyTo(p *UserQuizPreferences) {
	if u.PreferredDifficulty != nil {
		p.PreferredDifficulty = *u.PreferredDifficulty
	}
	if u.PreferredQuestionTypes != nil {
		p.PreferredQuestionTypes = append([]QuestionType(nil), (*u.PreferredQuestionTypes)...)
	}
	if u.PreferredQuestionCount != nil {
		p.PreferredQuestionCount = *u.PreferredQuestionCount
	}
	if u.PreferredTimeLimit != nil {
		v := *u.PreferredTimeLimit
		p.PreferredTimeLimit = &v
	}
	if u.FocusAreas != nil {
		p.FocusAreas = append([]string{}, (*u.FocusAreas)...)
	}
	if u.AdaptiveDifficulty != nil {
		p.AdaptiveDifficulty = *u.AdaptiveDifficulty
	}
	if u.ShowExplanations != nil {
		p.ShowExplanations = *u.ShowExplanations
	}
	if u.AllowReview != nil {
		p.AllowReview = *u.AllowReview
	}
}
