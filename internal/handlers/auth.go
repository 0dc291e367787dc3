package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/bcZhang717/picture/internal/config"
	"github.com/bcZhang717/picture/internal/middleware"
	"github.com/bcZhang717/picture/internal/models"
	"github.com/bcZhang717/picture/internal/services"
	"github.com/bcZhang717/picture/internal/utils"
	pkgvalidator "github.com/bcZhang717/picture/pkg/validator"
)

type AuthHandler struct {
	userService *services.UserService
	config      *config.Config
	validator   *validator.Validate
}

func NewAuthHandler(userService *services.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		config:      cfg,
		validator:   pkgvalidator.GetValidator(),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	// 验证请求参数
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	// 生成 JWT Token
	token, err := utils.GenerateToken(user.ID, h.config.JWT.Secret, h.config.JWT.ExpireHours)
	if err != nil {
		utils.InternalError(c)
		return
	}

	utils.SuccessWithMessage(c, "注册成功", models.UserResponse{
		User:  user,
		Token: token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	// 验证请求参数
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	user, err := h.userService.Login(&req)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	// 生成 JWT Token
	token, err := utils.GenerateToken(user.ID, h.config.JWT.Secret, h.config.JWT.ExpireHours)
	if err != nil {
		utils.InternalError(c)
		return
	}

	utils.SuccessWithMessage(c, "登录成功", models.UserResponse{
		User:  user,
		Token: token,
	})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, "请先登录")
		return
	}
	utils.Success(c, user)
}

// ListUsers 用户列表, 仅管理员路由挂载
func (h *AuthHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, pagination, err := h.userService.ListUsers(page, limit)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"users":      users,
		"pagination": pagination,
	})
}
