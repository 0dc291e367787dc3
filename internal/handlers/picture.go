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
	"github.com/bcZhang717/picture/internal/upload"
	"github.com/bcZhang717/picture/internal/utils"
	pkgvalidator "github.com/bcZhang717/picture/pkg/validator"
)

type PictureHandler struct {
	pictureService *services.PictureService
	config         *config.Config
	validator      *validator.Validate
}

func NewPictureHandler(pictureService *services.PictureService, cfg *config.Config) *PictureHandler {
	return &PictureHandler{
		pictureService: pictureService,
		config:         cfg,
		validator:      pkgvalidator.GetValidator(),
	}
}

// UploadPicture 文件上传, multipart 表单
func (h *PictureHandler) UploadPicture(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := c.Request.ParseMultipartForm(h.config.Storage.MaxPictureSize); err != nil {
		utils.Error(c, http.StatusBadRequest, "文件过大或格式错误")
		return
	}

	var req models.PictureUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "未找到上传文件")
		return
	}

	vo, err := h.pictureService.UploadPicture(c.Request.Context(), upload.NewFileSource(header), &req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "上传成功", vo)
}

// UploadPictureByURL 按 URL 上传
func (h *PictureHandler) UploadPictureByURL(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.PictureUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if req.FileURL == "" {
		utils.Error(c, http.StatusBadRequest, "图片地址为空")
		return
	}

	vo, err := h.pictureService.UploadPicture(c.Request.Context(), upload.NewURLSource(req.FileURL), &req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "上传成功", vo)
}

func (h *PictureHandler) DeletePicture(c *gin.Context) {
	user := middleware.CurrentUser(c)

	pictureID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "无效的图片ID")
		return
	}

	if err := h.pictureService.DeletePicture(uint(pictureID), user); err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "删除成功", nil)
}

func (h *PictureHandler) EditPicture(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.PictureEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	vo, err := h.pictureService.EditPicture(&req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "编辑成功", vo)
}

func (h *PictureHandler) EditPictureByBatch(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.PictureEditByBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	if err := h.pictureService.EditPictureByBatch(&req, user); err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "批量编辑成功", nil)
}

// ReviewPicture 图片审核, 仅管理员路由挂载
func (h *PictureHandler) ReviewPicture(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.PictureReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	if err := h.pictureService.DoPictureReview(&req, user); err != nil {
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "审核完成", nil)
}

// UploadPictureByBatch 批量抓取上传, 仅管理员路由挂载
func (h *PictureHandler) UploadPictureByBatch(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.PictureUploadByBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if req.Count == 0 {
		req.Count = 10
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	count, err := h.pictureService.UploadPictureByBatch(c.Request.Context(), &req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, gin.H{"uploaded_count": count})
}

// SearchPictureByColor 按主色调搜索
func (h *PictureHandler) SearchPictureByColor(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.PictureSearchByColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	vos, err := h.pictureService.SearchPictureByColor(req.SpaceID, req.PicColor, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, vos)
}

func (h *PictureHandler) GetPicture(c *gin.Context) {
	user := middleware.CurrentUser(c)

	pictureID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "无效的图片ID")
		return
	}

	vo, err := h.pictureService.GetPictureVO(uint(pictureID), user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, vo)
}

func (h *PictureHandler) ListPictures(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.PictureListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 20
	}
	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	vos, pagination, err := h.pictureService.ListPictures(&req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, gin.H{
		"pictures":   vos,
		"pagination": pagination,
	})
}

func (h *PictureHandler) ListTagCategory(c *gin.Context) {
	result, err := h.pictureService.ListTagCategory()
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}
