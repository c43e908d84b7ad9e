package model

// AllModels 需要自动迁移的表
func AllModels() []interface{} {
	return []interface{}{
		&UserQuizPreferences{},
		&Quiz{},
		&QuizSession{},
		&QuizAnswer{},
	}
}
