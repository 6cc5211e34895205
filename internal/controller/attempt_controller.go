package controller

import (
	"narraprep_backend/internal/service"
	"narraprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// ListUserAttempts godoc
// @Summary List a user's attempts, newest first
// @Tags attempts
// @Produce  json
// @Param   user_id path string true "user id"
// @Param   limit query int false "max results (1-100)" default(100)
// @Success 200 {object} util.Response{data=[]model.Attempt}
// @Failure 400 {object} util.Response "invalid limit"
// @Router /api/v1/attempts/user/{user_id} [get]
func (c *AttemptController) ListUserAttempts(ctx *gin.Context) {
	limit, ok := queryLimit(ctx)
	if !ok {
		return
	}

	attempts, err := c.AttemptService.ListUserAttempts(ctx.Request.Context(), ctx.Param("user_id"), limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// ListQuizAttempts godoc
// @Summary List a quiz's attempts, newest first
// @Tags attempts
// @Produce  json
// @Param   quiz_id path string true "quiz id"
// @Param   limit query int false "max results (1-100)" default(100)
// @Success 200 {object} util.Response{data=[]model.Attempt}
// @Failure 400 {object} util.Response "invalid limit"
// @Router /api/v1/attempts/quiz/{quiz_id} [get]
func (c *AttemptController) ListQuizAttempts(ctx *gin.Context) {
	limit, ok := queryLimit(ctx)
	if !ok {
		return
	}

	attempts, err := c.AttemptService.ListQuizAttempts(ctx.Request.Context(), ctx.Param("quiz_id"), limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// GetAttempt godoc
// @Summary Get attempt
// @Tags attempts
// @Produce  json
// @Param   id path string true "attempt id"
// @Success 200 {object} util.Response{data=model.Attempt}
// @Failure 404 {object} util.Response "attempt not found"
// @Router /api/v1/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	attempt, err := c.AttemptService.GetAttempt(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// CreateAttempt godoc
// @Summary Start attempt
// @Description max_score is taken from the quiz's question count
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   user_id query string false "caller id when no token is sent"
// @Param   body body service.CreateAttemptRequest true "attempt"
// @Success 201 {object} util.Response{data=model.Attempt}
// @Failure 400 {object} util.Response "invalid request"
// @Router /api/v1/attempts [post]
func (c *AttemptController) CreateAttempt(ctx *gin.Context) {
	var req service.CreateAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	actor, err := util.ActorID(ctx)
	if err != nil && req.UserID != "" {
		actor, err = req.UserID, nil
	}
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	attempt, err := c.AttemptService.CreateAttempt(ctx.Request.Context(), actor, &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

// UpdateAttempt godoc
// @Summary Update attempt
// @Description Answers are scored and feed the owner's statistics; completed_at finishes the attempt
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "attempt id"
// @Param   user_id query string false "caller id when no token is sent"
// @Param   body body service.UpdateAttemptRequest true "fields to change"
// @Success 200 {object} util.Response{data=model.Attempt}
// @Failure 400 {object} util.Response "invalid request"
// @Failure 403 {object} util.Response "not the owner"
// @Failure 404 {object} util.Response "attempt not found"
// @Failure 409 {object} util.Response "statistics changed concurrently"
// @Router /api/v1/attempts/{id} [put]
func (c *AttemptController) UpdateAttempt(ctx *gin.Context) {
	var req service.UpdateAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	actor, ok := actorID(ctx)
	if !ok {
		return
	}

	attempt, err := c.AttemptService.UpdateAttempt(ctx.Request.Context(), actor, ctx.Param("id"), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// DeleteAttempt godoc
// @Summary Delete attempt
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "attempt id"
// @Param   user_id query string false "caller id when no token is sent"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "not the owner"
// @Failure 404 {object} util.Response "attempt not found"
// @Router /api/v1/attempts/{id} [delete]
func (c *AttemptController) DeleteAttempt(ctx *gin.Context) {
	actor, ok := actorID(ctx)
	if !ok {
		return
	}

	if err := c.AttemptService.DeleteAttempt(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Attempt deleted successfully"})
}
