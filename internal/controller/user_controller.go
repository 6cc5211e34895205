package controller

import (
	"narraprep_backend/internal/service"
	"narraprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 处理用户相关的HTTP请求
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce  json
// @Param   limit query int false "max results (1-100)" default(100)
// @Success 200 {object} util.Response{data=[]model.User}
// @Failure 400 {object} util.Response "invalid limit"
// @Router /api/v1/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	limit, ok := queryLimit(ctx)
	if !ok {
		return
	}

	users, err := c.UserService.ListUsers(ctx.Request.Context(), limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// GetCurrentUser godoc
// @Summary Current user
// @Description Resolved from the bearer token, or the user_id query parameter
// @Tags users
// @Produce  json
// @Security ApiKeyAuth
// @Param   user_id query string false "user id when no token is sent"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "no user given"
// @Failure 404 {object} util.Response "user not found"
// @Router /api/v1/users/me [get]
func (c *UserController) GetCurrentUser(ctx *gin.Context) {
	id, ok := actorID(ctx)
	if !ok {
		return
	}

	user, err := c.UserService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// GetUser godoc
// @Summary Get user
// @Tags users
// @Produce  json
// @Param   user_id path string true "user id"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response "user not found"
// @Router /api/v1/users/{user_id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	user, err := c.UserService.GetUser(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// CreateUser godoc
// @Summary Create user
// @Description Registers credentials and creates the user document with zeroed statistics
// @Tags users
// @Accept  json
// @Produce  json
// @Param   body body service.CreateUserRequest true "new user"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "invalid request or email already registered"
// @Router /api/v1/users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req service.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.CreateUser(ctx.Request.Context(), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept  json
// @Produce  json
// @Param   user_id path string true "user id"
// @Param   body body service.UpdateUserRequest true "fields to change"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "invalid request"
// @Failure 404 {object} util.Response "user not found"
// @Router /api/v1/users/{user_id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	var req service.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateUser(ctx.Request.Context(), ctx.Param("user_id"), &req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary Upload avatar
// @Tags users
// @Accept  multipart/form-data
// @Produce  json
// @Param   user_id path string true "user id"
// @Param   file formData file true "image"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "missing or invalid file"
// @Failure 404 {object} util.Response "user not found"
// @Router /api/v1/users/{user_id}/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	user, err := c.UserService.UploadAvatar(ctx.Request.Context(), ctx.Param("user_id"), file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
