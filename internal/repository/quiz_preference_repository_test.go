package repository

import (
	"context"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizPreferenceRepository_RoundTrip(t *testing.T) {
	repo := NewQuizPreferenceRepository(testutil.DB(t))
	ctx := context.Background()

	missing, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	prefs := model.DefaultQuizPreferences(1)
	prefs.FocusAreas = []string{"pointers", "recursion"}
	require.NoError(t, repo.CreateIfAbsent(ctx, prefs))

	found, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{"pointers", "recursion"}, found.FocusAreas)
	assert.Equal(t, []model.QuestionType{model.QuestionMultipleChoice, model.QuestionTrueFalse}, found.PreferredQuestionTypes)
	assert.Nil(t, found.PreferredTimeLimit)

	limit := 20
	found.PreferredTimeLimit = &limit
	found.AdaptiveDifficulty = false
	require.NoError(t, repo.Save(ctx, found))

	again, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, again.PreferredTimeLimit)
	assert.Equal(t, 20, *again.PreferredTimeLimit)
	assert.False(t, again.AdaptiveDifficulty)
}

func TestQuizPreferenceRepository_DeleteIsIdempotent(t *testing.T) {
	repo := NewQuizPreferenceRepository(testutil.DB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, model.DefaultQuizPreferences(9)))
	require.NoError(t, repo.DeleteByUserID(ctx, 9))
	require.NoError(t, repo.DeleteByUserID(ctx, 9))

	found, err := repo.FindByUserID(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, found)

	// 唯一索引在物理删除后可以重新创建
	require.NoError(t, repo.CreateIfAbsent(ctx, model.DefaultQuizPreferences(9)))
}

func TestQuizPreferenceRepository_CreateIfAbsentKeepsExisting(t *testing.T) {
	repo := NewQuizPreferenceRepository(testutil.DB(t))
	ctx := context.Background()

	first := model.DefaultQuizPreferences(3)
	first.FocusAreas = []string{"graphs"}
	require.NoError(t, repo.CreateIfAbsent(ctx, first))

	second := model.DefaultQuizPreferences(3)
	second.PreferredQuestionCount = 25
	require.NoError(t, repo.CreateIfAbsent(ctx, second))

	found, err := repo.FindByUserID(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{"graphs"}, found.FocusAreas)
	assert.Equal(t, 10, found.PreferredQuestionCount)
}
