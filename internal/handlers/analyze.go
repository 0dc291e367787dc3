package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bcZhang717/picture/internal/middleware"
	"github.com/bcZhang717/picture/internal/models"
	"github.com/bcZhang717/picture/internal/services"
	"github.com/bcZhang717/picture/internal/utils"
)

type AnalyzeHandler struct {
	analyzeService *services.AnalyzeService
}

func NewAnalyzeHandler(analyzeService *services.AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{analyzeService: analyzeService}
}

func (h *AnalyzeHandler) SpaceUsage(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SpaceUsageAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	result, err := h.analyzeService.GetSpaceUsageAnalyze(&req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}

func (h *AnalyzeHandler) SpaceCategory(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SpaceCategoryAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	result, err := h.analyzeService.GetSpaceCategoryAnalyze(&req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}

func (h *AnalyzeHandler) SpaceTag(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SpaceTagAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	result, err := h.analyzeService.GetSpaceTagAnalyze(&req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}

func (h *AnalyzeHandler) SpaceSize(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SpaceSizeAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	result, err := h.analyzeService.GetSpaceSizeAnalyze(&req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}

func (h *AnalyzeHandler) SpaceUser(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SpaceUserAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	result, err := h.analyzeService.GetSpaceUserAnalyze(&req, user)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}
