package model

import (
	"time"
)

// UserDataExport 用户测验数据导出包
type UserDataExport struct {
	UserID      uint                 `json:"userId"`
	ExportedAt  time.Time            `json:"exportedAt"`
	Preferences *UserQuizPreferences `json:"preferences"`
	Performance PerformanceMetrics   `json:"performance"`
	Sessions    []QuizSession        `json:"sessions"`
}

type UserDataExportResult struct {
	URL        string    `json:"url"`
	ObjectName string    `json:"objectName"`
	Sessions   int       `json:"sessions"`
	ExportedAt time.Time `json:"exportedAt"`
}
