package controller

import (
	"fmt"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/service"
	"study_assistant_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	maxQuestionCount = 50
	maxTimeLimit     = 180
	maxFocusAreas    = 10
)

type QuizPreferenceController struct {
	PreferenceService *service.PreferenceService
}

func NewQuizPreferenceController(preferenceService *service.PreferenceService) *QuizPreferenceController {
	return &QuizPreferenceController{PreferenceService: preferenceService}
}

// @Summary 获取测验偏好
// @Description 获取当前用户的测验偏好，不存在时返回默认值
// @Tags 测验偏好
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.UserQuizPreferences}
// @Router /quiz/preferences [get]
func (c *QuizPreferenceController) GetPreferences(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	prefs, err := c.PreferenceService.GetPreferences(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, prefs)
}

// @Summary 更新测验偏好
// @Description 部分更新，未提供的字段保持不变
// @Tags 测验偏好
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UserQuizPreferencesUpdate true "偏好更新"
// @Success 200 {object} util.Response{data=model.UserQuizPreferences}
// @Failure 400 {object} util.Response
// @Router /quiz/preferences [put]
func (c *QuizPreferenceController) UpdatePreferences(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req model.UserQuizPreferencesUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := validatePreferencesUpdate(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	prefs, err := c.PreferenceService.UpdatePreferences(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, prefs)
}

func validatePreferencesUpdate(u *model.UserQuizPreferencesUpdate) error {
	if u.PreferredDifficulty != nil && !u.PreferredDifficulty.Valid() {
		return fmt.Errorf("invalid difficulty %q", *u.PreferredDifficulty)
	}
	if u.PreferredQuestionTypes != nil {
		if err := validateQuestionTypes(*u.PreferredQuestionTypes); err != nil {
			return err
		}
	}
	if u.PreferredQuestionCount != nil && (*u.PreferredQuestionCount < 1 || *u.PreferredQuestionCount > maxQuestionCount) {
		return fmt.Errorf("question count must be between 1 and %d", maxQuestionCount)
	}
	if u.PreferredTimeLimit != nil && (*u.PreferredTimeLimit < 1 || *u.PreferredTimeLimit > maxTimeLimit) {
		return fmt.Errorf("time limit must be between 1 and %d minutes", maxTimeLimit)
	}
	if u.FocusAreas != nil && len(*u.FocusAreas) > maxFocusAreas {
		return fmt.Errorf("at most %d focus areas", maxFocusAreas)
	}
	return nil
}

func validateQuestionTypes(types []model.QuestionType) error {
	for _, t := range types {
		if !t.Valid() {
			return fmt.Errorf("invalid question type %q", t)
		}
	}
	return nil
}
