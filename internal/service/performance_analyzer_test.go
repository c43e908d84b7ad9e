package service

import (
	"context"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedSession(pct float64) model.QuizSession {
	p := pct
	return model.QuizSession{Status: model.SessionCompleted, Percentage: &p}
}

func completedSessions(pcts ...float64) []model.QuizSession {
	out := make([]model.QuizSession, 0, len(pcts))
	for _, p := range pcts {
		out = append(out, completedSession(p))
	}
	return out
}

func TestAnalyzePerformance_NoCompletedSessions(t *testing.T) {
	sessions := []model.QuizSession{
		{Status: model.SessionInProgress},
		{Status: model.SessionAbandoned},
	}

	m := AnalyzePerformance(sessions)
	assert.Equal(t, 0.0, m.AverageScore)
	assert.Equal(t, 0.0, m.AverageTimePerQuestion)
	assert.Equal(t, model.DifficultyEasy, m.PreferredDifficulty)
	assert.Equal(t, model.TrendStable, m.RecentPerformanceTrend)
	assert.Empty(t, m.StrongTopics)
	assert.Empty(t, m.WeakTopics)
	assert.Equal(t, 0, m.CompletedSessions)
}

func TestAnalyzePerformance_EmptyHistory(t *testing.T) {
	m := AnalyzePerformance(nil)
	assert.Equal(t, 0.0, m.AverageScore)
	assert.Equal(t, model.TrendStable, m.RecentPerformanceTrend)
	assert.NotNil(t, m.WeakTopics)
}

func TestAnalyzePerformance_IgnoresUnfinishedSessions(t *testing.T) {
	sessions := completedSessions(80, 90)
	low := 10.0
	sessions = append(sessions, model.QuizSession{Status: model.SessionAbandoned, Percentage: &low})

	m := AnalyzePerformance(sessions)
	assert.InDelta(t, 85.0, m.AverageScore, 1e-9)
	assert.Equal(t, model.DifficultyHard, m.PreferredDifficulty)
	assert.Equal(t, 2, m.CompletedSessions)
}

func TestAnalyzePerformance_MissingPercentageCountsAsZero(t *testing.T) {
	sessions := []model.QuizSession{completedSession(80), {Status: model.SessionCompleted}}

	m := AnalyzePerformance(sessions)
	assert.InDelta(t, 40.0, m.AverageScore, 1e-9)
	assert.Equal(t, model.DifficultyEasy, m.PreferredDifficulty)
}

func TestAnalyzePerformance_AverageIndependentOfOrder(t *testing.T) {
	a := AnalyzePerformance(completedSessions(50, 70, 90, 60))
	b := AnalyzePerformance(completedSessions(90, 60, 50, 70))
	assert.InDelta(t, a.AverageScore, b.AverageScore, 1e-9)
	assert.Equal(t, a.PreferredDifficulty, b.PreferredDifficulty)
}

func TestAnalyzePerformance_AverageTimePerQuestion(t *testing.T) {
	s1 := completedSession(100)
	s1.TimeSpent = 60
	s1.Answers = []model.QuizAnswer{{QuestionID: "q1"}, {QuestionID: "q2"}}
	s2 := completedSession(50)
	s2.TimeSpent = 30
	s2.Answers = []model.QuizAnswer{{QuestionID: "q1"}}

	m := AnalyzePerformance([]model.QuizSession{s1, s2})
	assert.InDelta(t, 30.0, m.AverageTimePerQuestion, 1e-9)
}

func TestAnalyzePerformance_NoAnswersKeepsTimeAtZero(t *testing.T) {
	s := completedSession(70)
	s.TimeSpent = 120

	m := AnalyzePerformance([]model.QuizSession{s})
	assert.Equal(t, 0.0, m.AverageTimePerQuestion)
}

func TestDifficultyForScore(t *testing.T) {
	cases := []struct {
		avg  float64
		want model.Difficulty
	}{
		{0, model.DifficultyEasy},
		{64.99, model.DifficultyEasy},
		{65, model.DifficultyMedium},
		{84.99, model.DifficultyMedium},
		{85, model.DifficultyHard},
		{100, model.DifficultyHard},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DifficultyForScore(c.avg), "avg=%v", c.avg)
	}
}

func TestAnalyzePerformance_Trend(t *testing.T) {
	t.Run("fewer than six sessions is stable", func(t *testing.T) {
		m := AnalyzePerformance(completedSessions(10, 20, 30, 90, 100))
		assert.Equal(t, model.TrendStable, m.RecentPerformanceTrend)
	})

	t.Run("improving", func(t *testing.T) {
		m := AnalyzePerformance(completedSessions(50, 50, 50, 50, 50, 70, 70, 70, 70, 70))
		assert.Equal(t, model.TrendImproving, m.RecentPerformanceTrend)
	})

	t.Run("declining", func(t *testing.T) {
		m := AnalyzePerformance(completedSessions(90, 90, 90, 90, 90, 60, 60, 60, 60, 60))
		assert.Equal(t, model.TrendDeclining, m.RecentPerformanceTrend)
	})

	t.Run("difference of exactly five is stable", func(t *testing.T) {
		m := AnalyzePerformance(completedSessions(70, 75, 75, 75, 75, 75))
		assert.Equal(t, model.TrendStable, m.RecentPerformanceTrend)
	})

	t.Run("difference just above five is improving", func(t *testing.T) {
		m := AnalyzePerformance(completedSessions(70, 75.0001, 75.0001, 75.0001, 75.0001, 75.0001))
		assert.Equal(t, model.TrendImproving, m.RecentPerformanceTrend)
	})

	t.Run("previous window is at most five sessions", func(t *testing.T) {
		// 第一条不在比较窗口内
		m := AnalyzePerformance(completedSessions(0, 80, 80, 80, 80, 80, 80, 80, 80, 80, 80))
		assert.Equal(t, model.TrendStable, m.RecentPerformanceTrend)
	})
}

func TestAnalyzePerformance_TopicStrengths(t *testing.T) {
	answers := func(topic string, correct, total int) []model.QuizAnswer {
		out := make([]model.QuizAnswer, total)
		for i := range out {
			out[i] = model.QuizAnswer{Topic: topic, IsCorrect: i < correct}
		}
		return out
	}

	s := completedSession(70)
	s.Answers = append(s.Answers, answers("pointers", 1, 4)...)
	s.Answers = append(s.Answers, answers("loops", 4, 4)...)
	s.Answers = append(s.Answers, answers("arrays", 2, 3)...)
	s.Answers = append(s.Answers, answers("recursion", 0, 2)...)

	m := AnalyzePerformance([]model.QuizSession{s})
	assert.Equal(t, []string{"loops"}, m.StrongTopics)
	assert.Equal(t, []string{"pointers"}, m.WeakTopics)
}

func TestAnalyzePerformance_DoesNotMutateInput(t *testing.T) {
	sessions := completedSessions(30, 60, 90)
	before := make([]float64, len(sessions))
	for i := range sessions {
		before[i] = *sessions[i].Percentage
	}

	AnalyzePerformance(sessions)
	for i := range sessions {
		assert.Equal(t, before[i], *sessions[i].Percentage)
	}
}

func TestPerformanceAnalyzer_AnalyzeWritesCache(t *testing.T) {
	cache := repository.NewMemoryPerformanceCache()
	analyzer := NewPerformanceAnalyzer(cache)
	ctx := context.Background()

	_, ok := analyzer.Cached(ctx, 3)
	assert.False(t, ok)

	first := analyzer.Analyze(ctx, 3, completedSessions(90))
	cached, ok := analyzer.Cached(ctx, 3)
	require.True(t, ok)
	assert.Equal(t, first.AverageScore, cached.AverageScore)

	analyzer.Analyze(ctx, 3, completedSessions(40))
	cached, ok = analyzer.Cached(ctx, 3)
	require.True(t, ok)
	assert.InDelta(t, 40.0, cached.AverageScore, 1e-9)
	assert.WithinDuration(t, time.Now(), cached.AnalyzedAt, time.Minute)

	_, ok = analyzer.Cached(ctx, 4)
	assert.False(t, ok)
}
