package controller

import (
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/service"
	"narraprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// ListQuestions godoc
// @Summary List active questions
// @Description Filters by category and difficulty; a tag filter applies only when exactly one tag is given
// @Tags questions
// @Produce  json
// @Param   limit query int false "max results (1-100)" default(100)
// @Param   category query string false "category" Enums(anatomy, physiology, pathology, pharmacology, microbiology, general)
// @Param   difficulty query string false "difficulty" Enums(easy, medium, hard)
// @Param   tags query []string false "tag" collectionFormat(multi)
// @Success 200 {object} util.Response{data=[]model.Question}
// @Failure 400 {object} util.Response "invalid filter"
// @Router /api/v1/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	limit, ok := queryLimit(ctx)
	if !ok {
		return
	}

	filter := repository.QuestionFilter{
		Category:   model.Category(ctx.Query("category")),
		Difficulty: model.Difficulty(ctx.Query("difficulty")),
		Tag:        singleTag(ctx),
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

	questions, err := c.QuestionService.ListQuestions(ctx.Request.Context(), filter)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// GetQuestion godoc
// @Summary Get question
// @Tags questions
// @Produce  json
// @Param   id path string true "question id"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response "question not found or inactive"
// @Router /api/v1/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	q, err := c.QuestionService.GetQuestion(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// CreateQuestion godoc
// @Summary Create question
// @Description Options without an id get one generated
// @Tags questions
// @Accept  json
// @Produce  json
// @Param   body body service.QuestionRequest true "question"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "invalid request"
// @Router /api/v1/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.CreateQuestion(ctx.Request.Context(), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary Replace question
// @Description The options must carry exactly the ids assigned at creation
// @Tags questions
// @Accept  json
// @Produce  json
// @Param   id path string true "question id"
// @Param   body body service.QuestionRequest true "question"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "invalid request or option ids"
// @Failure 404 {object} util.Response "question not found"
// @Router /api/v1/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.UpdateQuestion(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary Deactivate question
// @Tags questions
// @Produce  json
// @Param   id path string true "question id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "question not found"
// @Router /api/v1/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	if err := c.QuestionService.DeleteQuestion(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Question deleted successfully"})
}

// UploadImage godoc
// @Summary Upload question image
// @Tags questions
// @Accept  multipart/form-data
// @Produce  json
// @Param   id path string true "question id"
// @Param   file formData file true "image"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "missing or invalid file"
// @Failure 404 {object} util.Response "question not found"
// @Router /api/v1/questions/{id}/image [post]
func (c *QuestionController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	q, err := c.QuestionService.UploadImage(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}
