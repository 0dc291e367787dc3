package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/bcZhang717/picture/internal/middleware"
	"github.com/bcZhang717/picture/internal/models"
	"github.com/bcZhang717/picture/internal/services"
	"github.com/bcZhang717/picture/internal/utils"
	pkgvalidator "github.com/bcZhang717/picture/pkg/validator"
)

type SpaceHandler struct {
	spaceService *services.SpaceService
	validator    *validator.Validate
}

func NewSpaceHandler(spaceService *services.SpaceService) *SpaceHandler {
	return &SpaceHandler{
		spaceService: spaceService,
		validator:    pkgvalidator.GetValidator(),
	}
}

func (h *SpaceHandler) AddSpace(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SpaceAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	space, err := h.spaceService.AddSpace(&req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "创建成功", space)
}

func (h *SpaceHandler) UpdateSpace(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SpaceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	space, err := h.spaceService.UpdateSpace(&req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "更新成功", space)
}

func (h *SpaceHandler) GetSpace(c *gin.Context) {
	user := middleware.CurrentUser(c)

	spaceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "无效的空间ID")
		return
	}

	space, err := h.spaceService.GetSpaceByID(uint(spaceID))
	if err != nil {
		utils.FromError(c, err)
		return
	}
	// 私有空间详情仅本人和管理员可见
	if space.SpaceType == models.SpaceTypePrivate && space.OwnerID != user.ID && !user.IsAdmin() {
		utils.Forbidden(c, "没有空间权限")
		return
	}
	utils.Success(c, space)
}

func (h *SpaceHandler) ListSpaces(c *gin.Context) {
	user := middleware.CurrentUser(c)

	spaces, err := h.spaceService.ListSpaces(user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, spaces)
}

func (h *SpaceHandler) AddMember(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SpaceMemberAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	if err := h.spaceService.AddMember(&req, user); err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "添加成员成功", nil)
}

func (h *SpaceHandler) EditMemberRole(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SpaceMemberEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	if err := h.spaceService.EditMemberRole(&req, user); err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "修改角色成功", nil)
}

func (h *SpaceHandler) RemoveMember(c *gin.Context) {
	user := middleware.CurrentUser(c)

	spaceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "无效的空间ID")
		return
	}
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	if err := h.spaceService.RemoveMember(uint(spaceID), uint(userID), user); err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "移除成员成功", nil)
}

func (h *SpaceHandler) ListMembers(c *gin.Context) {
	user := middleware.CurrentUser(c)

	spaceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "无效的空间ID")
		return
	}

	members, err := h.spaceService.ListMembers(uint(spaceID), user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, members)
}
