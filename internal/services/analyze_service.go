// internal/services/analyze_service.go - 空间分析
package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/bcZhang717/picture/internal/apperr"
	"github.com/bcZhang717/picture/internal/models"
)

type AnalyzeService struct {
	db           *gorm.DB
	spaceService *SpaceService
}

func NewAnalyzeService(db *gorm.DB, spaceService *SpaceService) *AnalyzeService {
	return &AnalyzeService{db: db, spaceService: spaceService}
}

// checkAnalyzeAuth 分析权限: 全空间和公共图库仅管理员, 单空间需本人或管理员。
// 校验通过时返回按请求范围过滤好的查询。
func (s *AnalyzeService) checkAnalyzeAuth(req *models.SpaceAnalyzeRequest, loginUser *models.User) (*gorm.DB, *models.Space, error) {
	if loginUser == nil {
		return nil, nil, apperr.ErrNoAuth.New("请先登录")
	}
	query := s.db.Model(&models.Picture{})
	if req.QueryAll || req.QueryPublic {
		if !loginUser.IsAdmin() {
			return nil, nil, apperr.ErrNoAuth.New("仅管理员可查看")
		}
		if req.QueryPublic {
			query = query.Where("space_id IS NULL")
		}
		return query, nil, nil
	}
	if req.SpaceID == nil {
		return nil, nil, apperr.ErrValidation.New("请指定分析范围")
	}
	space, err := s.spaceService.GetSpaceByID(*req.SpaceID)
	if err != nil {
		return nil, nil, err
	}
	if space.OwnerID != loginUser.ID && !loginUser.IsAdmin() {
		return nil, nil, apperr.ErrNoAuth.New("没有空间权限")
	}
	return query.Where("space_id = ?", *req.SpaceID), space, nil
}

// GetSpaceUsageAnalyze 使用量统计。单空间直接读空间表的额度字段, 无需扫图片表。
func (s *AnalyzeService) GetSpaceUsageAnalyze(req *models.SpaceUsageAnalyzeRequest, loginUser *models.User) (*models.SpaceUsageAnalyzeResponse, error) {
	query, space, err := s.checkAnalyzeAuth(&req.SpaceAnalyzeRequest, loginUser)
	if err != nil {
		return nil, err
	}

	if space != nil {
		sizeRatio := math.Round(float64(space.UsedSize)/float64(space.MaxSize)*10000) / 100
		countRatio := math.Round(float64(space.UsedCount)/float64(space.MaxCount)*10000) / 100
		return &models.SpaceUsageAnalyzeResponse{
			UsedSize:        space.UsedSize,
			MaxSize:         &space.MaxSize,
			SizeUsageRatio:  &sizeRatio,
			UsedCount:       space.UsedCount,
			MaxCount:        &space.MaxCount,
			CountUsageRatio: &countRatio,
		}, nil
	}

	var result struct {
		UsedSize  int64
		UsedCount int64
	}
	err = query.Select("COALESCE(SUM(pic_size), 0) AS used_size, COUNT(*) AS used_count").
		Scan(&result).Error
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return &models.SpaceUsageAnalyzeResponse{
		UsedSize:  result.UsedSize,
		UsedCount: result.UsedCount,
	}, nil
}

// GetSpaceCategoryAnalyze 按分类统计图片数与总大小
func (s *AnalyzeService) GetSpaceCategoryAnalyze(req *models.SpaceCategoryAnalyzeRequest, loginUser *models.User) ([]models.SpaceCategoryAnalyzeResponse, error) {
	query, _, err := s.checkAnalyzeAuth(&req.SpaceAnalyzeRequest, loginUser)
	if err != nil {
		return nil, err
	}

	var results []models.SpaceCategoryAnalyzeResponse
	err = query.Select("category, COUNT(*) AS count, COALESCE(SUM(pic_size), 0) AS total_size").
		Where("category != ''").
		Group("category").
		Order("count DESC").
		Scan(&results).Error
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	if results == nil {
		results = []models.SpaceCategoryAnalyzeResponse{}
	}
	return results, nil
}

// GetSpaceTagAnalyze 按标签统计图片数。
// 标签存在 JSON 字符串列里, 在应用侧展开后聚合。
func (s *AnalyzeService) GetSpaceTagAnalyze(req *models.SpaceTagAnalyzeRequest, loginUser *models.User) ([]models.SpaceTagAnalyzeResponse, error) {
	query, _, err := s.checkAnalyzeAuth(&req.SpaceAnalyzeRequest, loginUser)
	if err != nil {
		return nil, err
	}

	var tagColumns []string
	if err := query.Where("tags != ''").Pluck("tags", &tagColumns).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}

	counts := make(map[string]int64)
	for _, column := range tagColumns {
		for _, tag := range models.TagsFromJSON(column) {
			counts[tag]++
		}
	}

	results := make([]models.SpaceTagAnalyzeResponse, 0, len(counts))
	for tag, count := range counts {
		results = append(results, models.SpaceTagAnalyzeResponse{Tag: tag, Count: count})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Tag < results[j].Tag
	})
	return results, nil
}

// sizeRanges 大小分段, 左闭右开
var sizeRanges = []struct {
	label string
	min   int64
	max   int64
}{
	{"<100KB", 0, 100 * 1024},
	{"100KB-500KB", 100 * 1024, 500 * 1024},
	{"500KB-1MB", 500 * 1024, 1024 * 1024},
	{">1MB", 1024 * 1024, math.MaxInt64},
}

// GetSpaceSizeAnalyze 按大小区间统计图片数量
func (s *AnalyzeService) GetSpaceSizeAnalyze(req *models.SpaceSizeAnalyzeRequest, loginUser *models.User) ([]models.SpaceSizeAnalyzeResponse, error) {
	query, _, err := s.checkAnalyzeAuth(&req.SpaceAnalyzeRequest, loginUser)
	if err != nil {
		return nil, err
	}

	var sizes []int64
	if err := query.Pluck("pic_size", &sizes).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}

	results := make([]models.SpaceSizeAnalyzeResponse, len(sizeRanges))
	for i, r := range sizeRanges {
		results[i].SizeRange = r.label
	}
	for _, size := range sizes {
		for i, r := range sizeRanges {
			if size >= r.min && size < r.max {
				results[i].Count++
				break
			}
		}
	}
	return results, nil
}

// GetSpaceUserAnalyze 用户上传行为分析, 按天/周/月聚合上传数量。
// 建时间列的分组格式各数据库不一致, 在应用侧聚合。
func (s *AnalyzeService) GetSpaceUserAnalyze(req *models.SpaceUserAnalyzeRequest, loginUser *models.User) ([]models.SpaceUserAnalyzeResponse, error) {
	query, _, err := s.checkAnalyzeAuth(&req.SpaceAnalyzeRequest, loginUser)
	if err != nil {
		return nil, err
	}
	if req.TimeDimension != "day" && req.TimeDimension != "week" && req.TimeDimension != "month" {
		return nil, apperr.ErrValidation.New("时间维度错误")
	}
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}

	var createdAts []time.Time
	if err := query.Pluck("created_at", &createdAts).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}

	counts := make(map[string]int64)
	for _, t := range createdAts {
		var period string
		switch req.TimeDimension {
		case "day":
			period = t.Format("2006-01-02")
		case "week":
			year, week := t.ISOWeek()
			period = fmt.Sprintf("%d%02d", year, week)
		case "month":
			period = t.Format("2006-01")
		}
		counts[period]++
	}

	results := make([]models.SpaceUserAnalyzeResponse, 0, len(counts))
	for period, count := range counts {
		results = append(results, models.SpaceUserAnalyzeResponse{Period: period, Count: count})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Period < results[j].Period
	})
	return results, nil
}
