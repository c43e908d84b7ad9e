package controller

import (
	"errors"
	"io"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/service"
	"study_assistant_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizSessionController struct {
	SessionService *service.QuizSessionService
}

func NewQuizSessionController(sessionService *service.QuizSessionService) *QuizSessionController {
	return &QuizSessionController{SessionService: sessionService}
}

// AnswerResponse 提交答案后的判分结果与最新状态
type AnswerResponse struct {
	Answer *model.QuizAnswer    `json:"answer"`
	State  model.QuizStateView `json:"state"`
}

// @Summary 获取测验状态
// @Description 返回当前模式、生成状态、当前测验与会话以及派生标志
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.QuizStateView}
// @Router /quiz/state [get]
func (c *QuizSessionController) GetState(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	util.Success(ctx, c.SessionService.State(userID).View())
}

// @Summary 生成测验
// @Description 按偏好与历史个性化请求后调用模型生成测验，成功后进入测验模式
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.QuizGenerationRequest true "生成请求"
// @Success 201 {object} util.Response{data=model.QuizStateView}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /quiz/generate [post]
func (c *QuizSessionController) Generate(ctx *gin.Context) {
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

	state, err := c.SessionService.GenerateQuiz(ctx.Request.Context(), userID, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, state.View())
}

// @Summary 开始已有测验
// @Description 为已生成的测验新建会话
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param quizId path string true "测验ID"
// @Success 201 {object} util.Response{data=model.QuizStateView}
// @Failure 404 {object} util.Response
// @Router /quiz/quizzes/{quizId}/start [post]
func (c *QuizSessionController) StartQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	state, err := c.SessionService.StartQuiz(ctx.Request.Context(), userID, ctx.Param("quizId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, state.View())
}

// @Summary 提交答案
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "会话ID"
// @Param request body model.AnswerSubmission true "答案"
// @Success 200 {object} util.Response{data=AnswerResponse}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /quiz/sessions/{sessionId}/answers [post]
func (c *QuizSessionController) SubmitAnswer(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req model.AnswerSubmission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, state, err := c.SessionService.SubmitAnswer(ctx.Request.Context(), userID, ctx.Param("sessionId"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, AnswerResponse{Answer: answer, State: state.View()})
}

// @Summary 完成测验
// @Description 计算成绩，按可选反馈调整偏好，并返回最新表现
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "会话ID"
// @Param request body model.QuizFeedback false "反馈"
// @Success 200 {object} util.Response{data=model.QuizCompletion}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /quiz/sessions/{sessionId}/complete [post]
func (c *QuizSessionController) Complete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var feedback *model.QuizFeedback
	var body model.QuizFeedback
	if err := ctx.ShouldBindJSON(&body); err == nil {
		feedback = &body
	} else if !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return
	}

	completion, err := c.SessionService.CompleteQuiz(ctx.Request.Context(), userID, ctx.Param("sessionId"), feedback)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

// @Summary 放弃测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "会话ID"
// @Success 200 {object} util.Response{data=model.QuizStateView}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /quiz/sessions/{sessionId}/abandon [post]
func (c *QuizSessionController) Abandon(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	state, err := c.SessionService.AbandonQuiz(ctx.Request.Context(), userID, ctx.Param("sessionId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state.View())
}

// @Summary 进入回顾模式
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.QuizStateView}
// @Failure 409 {object} util.Response
// @Router /quiz/review [post]
func (c *QuizSessionController) StartReview(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	state, err := c.SessionService.StartReview(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state.View())
}

// @Summary 返回聊天模式
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.QuizStateView}
// @Failure 409 {object} util.Response
// @Router /quiz/chat [post]
func (c *QuizSessionController) ReturnToChat(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	state, err := c.SessionService.ReturnToChat(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state.View())
}

// @Summary 清除错误
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.QuizStateView}
// @Router /quiz/state/error [delete]
func (c *QuizSessionController) ClearError(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	state, err := c.SessionService.ClearError(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state.View())
}

// @Summary 测验历史
// @Description 最近的测验会话，按开始时间倒序
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.QuizSession}
// @Router /quiz/history [get]
func (c *QuizSessionController) History(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	sessions, err := c.SessionService.History(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}
