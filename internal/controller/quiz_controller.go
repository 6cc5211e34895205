package controller

import (
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/service"
	"narraprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// ListQuizzes godoc
// @Summary List active quizzes
// @Tags quizzes
// @Produce  json
// @Param   limit query int false "max results (1-100)" default(100)
// @Param   category query string false "category"
// @Param   difficulty query string false "difficulty"
// @Param   tags query []string false "tag" collectionFormat(multi)
// @Param   only_public query bool false "public quizzes only" default(true)
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Failure 400 {object} util.Response "invalid filter"
// @Router /api/v1/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	limit, ok := queryLimit(ctx)
	if !ok {
		return
	}

	filter := repository.QuizFilter{
		Category:   model.Category(ctx.Query("category")),
		Difficulty: model.Difficulty(ctx.Query("difficulty")),
		Tag:        singleTag(ctx),
		OnlyPublic: util.ParseBool(ctx.Query("only_public"), true),
		Limit:      limit,
	}
	if filter.Category != "" && !filter.Category.Valid() {
		util.BadRequest(ctx, "invalid category")
		return
	}
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		util.BadRequest(ctx, "invalid difficulty")
		return
	}

	quizzes, err := c.QuizService.ListQuizzes(ctx.Request.Context(), filter)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// ListUserQuizzes godoc
// @Summary List quizzes created by a user
// @Tags quizzes
// @Produce  json
// @Param   user_id path string true "creator id"
// @Param   limit query int false "max results (1-100)" default(100)
// @Param   include_private query bool false "include private quizzes" default(true)
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Failure 400 {object} util.Response "invalid limit"
// @Router /api/v1/quizzes/user/{user_id} [get]
func (c *QuizController) ListUserQuizzes(ctx *gin.Context) {
	limit, ok := queryLimit(ctx)
	if !ok {
		return
	}
	includePrivate := util.ParseBool(ctx.Query("include_private"), true)

	quizzes, err := c.QuizService.ListUserQuizzes(ctx.Request.Context(), ctx.Param("user_id"), includePrivate, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetQuiz godoc
// @Summary Get quiz
// @Tags quizzes
// @Produce  json
// @Param   id path string true "quiz id"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response "quiz not found or inactive"
// @Router /api/v1/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quiz, err := c.QuizService.GetQuiz(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// CreateQuiz godoc
// @Summary Create quiz
// @Description The caller becomes the owner
// @Tags quizzes
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   user_id query string false "owner id when no token is sent"
// @Param   body body service.CreateQuizRequest true "quiz"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "invalid request"
// @Router /api/v1/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	actor, ok := actorID(ctx)
	if !ok {
		return
	}

	quiz, err := c.QuizService.CreateQuiz(ctx.Request.Context(), actor, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary Update quiz
// @Description Partial update, owner only. active=true restores a deleted quiz
// @Tags quizzes
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "quiz id"
// @Param   user_id query string false "caller id when no token is sent"
// @Param   body body service.UpdateQuizRequest true "fields to change"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "invalid request"
// @Failure 403 {object} util.Response "not the owner"
// @Failure 404 {object} util.Response "quiz not found"
// @Router /api/v1/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	var req service.UpdateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	actor, ok := actorID(ctx)
	if !ok {
		return
	}

	quiz, err := c.QuizService.UpdateQuiz(ctx.Request.Context(), actor, ctx.Param("id"), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary Deactivate quiz
// @Tags quizzes
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "quiz id"
// @Param   user_id query string false "caller id when no token is sent"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "not the owner"
// @Failure 404 {object} util.Response "quiz not found"
// @Router /api/v1/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	actor, ok := actorID(ctx)
	if !ok {
		return
	}

	if err := c.QuizService.DeleteQuiz(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Quiz deleted successfully"})
}
