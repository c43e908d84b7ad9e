package controller

import (
	"fmt"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/service"
	"study_assistant_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizPersonalizationController struct {
	SessionService *service.QuizSessionService
}

func NewQuizPersonalizationController(sessionService *service.QuizSessionService) *QuizPersonalizationController {
	return &QuizPersonalizationController{SessionService: sessionService}
}

// @Summary 获取学习表现
// @Description 基于已完成的测验会话计算平均分、趋势与强弱主题
// @Tags 个性化
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.PerformanceMetrics}
// @Router /quiz/performance [get]
func (c *QuizPersonalizationController) GetPerformance(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	metrics, err := c.SessionService.Performance(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, metrics)
}

// @Summary 获取测验推荐
// @Tags 个性化
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.QuizRecommendations}
// @Router /quiz/recommendations [get]
func (c *QuizPersonalizationController) GetRecommendations(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	recs, err := c.SessionService.Recommendations(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, recs)
}

// @Summary 预览个性化后的生成请求
// @Description 按偏好与历史表现补全请求，不会生成测验
// @Tags 个性化
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.QuizGenerationRequest true "基础请求"
// @Success 200 {object} util.Response{data=model.QuizGenerationRequest}
// @Failure 400 {object} util.Response
// @Router /quiz/personalize [post]
func (c *QuizPersonalizationController) Personalize(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req model.QuizGenerationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := validateGenerationRequest(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	personalized, err := c.SessionService.Personalize(ctx.Request.Context(), userID, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, personalized)
}

func validateGenerationRequest(req *model.QuizGenerationRequest) error {
	if req.Difficulty != nil && !req.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty %q", *req.Difficulty)
	}
	if err := validateQuestionTypes(req.QuestionTypes); err != nil {
		return err
	}
	if req.QuestionCount != nil && (*req.QuestionCount < 1 || *req.QuestionCount > maxQuestionCount) {
		return fmt.Errorf("question count must be between 1 and %d", maxQuestionCount)
	}
	if req.TimeLimit != nil && (*req.TimeLimit < 1 || *req.TimeLimit > maxTimeLimit) {
		return fmt.Errorf("time limit must be between 1 and %d minutes", maxTimeLimit)
	}
	return nil
}
