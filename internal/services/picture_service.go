// internal/services/picture_service.go - 图片生命周期管理
package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bcZhang717/picture/internal/apperr"
	"github.com/bcZhang717/picture/internal/auth"
	"github.com/bcZhang717/picture/internal/crawler"
	"github.com/bcZhang717/picture/internal/models"
	"github.com/bcZhang717/picture/internal/storage"
	"github.com/bcZhang717/picture/internal/upload"
	"github.com/bcZhang717/picture/internal/utils"
)

// 批量抓取上限
const maxBatchFetchCount = 30

// 颜色搜索返回的最大条数
const colorSearchLimit = 12

type PictureService struct {
	db           *gorm.DB
	uploader     *upload.Uploader
	store        storage.ObjectStore
	crawler      crawler.Crawler
	resolver     *auth.Resolver
	spaceService *SpaceService
	baseURL      string
}

func NewPictureService(
	db *gorm.DB,
	uploader *upload.Uploader,
	store storage.ObjectStore,
	imageCrawler crawler.Crawler,
	resolver *auth.Resolver,
	spaceService *SpaceService,
	baseURL string,
) *PictureService {
	return &PictureService{
		db:           db,
		uploader:     uploader,
		store:        store,
		crawler:      imageCrawler,
		resolver:     resolver,
		spaceService: spaceService,
		baseURL:      baseURL,
	}
}

// UploadPicture 上传图片(创建或按 id 更新)。
// 图片落库和空间额度调整在同一个事务里, 失败则都不生效。
func (s *PictureService) UploadPicture(ctx context.Context, source upload.Source, req *models.PictureUploadRequest, loginUser *models.User) (*models.PictureVO, error) {
	if loginUser == nil {
		return nil, apperr.ErrNoAuth.New("请先登录")
	}
	if source == nil {
		return nil, apperr.ErrValidation.New("图片为空")
	}

	// 校验空间与额度
	spaceID := req.SpaceID
	var space *models.Space
	if spaceID != nil {
		var err error
		space, err = s.spaceService.GetSpaceByID(*spaceID)
		if err != nil {
			return nil, err
		}
		perms := s.resolver.PermissionList(space, loginUser)
		if !auth.HasPermission(perms, auth.PermPictureUpload) {
			return nil, apperr.ErrNoAuth.New("没有空间权限")
		}
		if err := s.spaceService.CheckQuota(space); err != nil {
			return nil, err
		}
	}

	// id 存在则为更新
	var oldPicture *models.Picture
	if req.ID != 0 {
		var err error
		oldPicture, err = s.getPicture(req.ID)
		if err != nil {
			return nil, err
		}
		// 仅本人和管理员可更新
		if oldPicture.UserID != loginUser.ID && !loginUser.IsAdmin() {
			return nil, apperr.ErrNoAuth.New("没有图片权限")
		}
		// 校验空间 id 是否一致
		if spaceID == nil {
			// 没传 spaceId 则沿用老图片的(兼容公共图库)
			spaceID = oldPicture.SpaceID
		} else if oldPicture.SpaceID == nil || *oldPicture.SpaceID != *spaceID {
			return nil, apperr.ErrValidation.New("空间 id 不一致")
		}
	}

	// 公共图库按用户分目录, 空间按空间分目录
	var pathPrefix string
	if spaceID == nil {
		pathPrefix = fmt.Sprintf("public/%d", loginUser.ID)
	} else {
		pathPrefix = fmt.Sprintf("space/%d", *spaceID)
	}

	result, err := s.uploader.Upload(ctx, source, pathPrefix)
	if err != nil {
		return nil, err
	}

	picName := result.PicName
	// 支持从外部传入图片名称
	if req.PicName != "" {
		picName = req.PicName
	}

	picture := &models.Picture{
		SpaceID:      spaceID,
		UserID:       loginUser.ID,
		URL:          result.URL,
		ThumbnailURL: result.ThumbnailURL,
		Name:         picName,
		PicSize:      result.PicSize,
		PicWidth:     result.PicWidth,
		PicHeight:    result.PicHeight,
		PicScale:     result.PicScale,
		PicFormat:    result.PicFormat,
	}
	if normalized, err := utils.NormalizeColor(result.PicColor); err == nil {
		picture.PicColor = &normalized
	}
	s.fillReviewParams(picture, loginUser)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if oldPicture != nil {
			// 更新: 额度按大小差值调整, 数量不变
			deltaSize := picture.PicSize - oldPicture.PicSize
			now := time.Now()
			oldPicture.URL = picture.URL
			oldPicture.ThumbnailURL = picture.ThumbnailURL
			oldPicture.Name = picture.Name
			oldPicture.PicSize = picture.PicSize
			oldPicture.PicWidth = picture.PicWidth
			oldPicture.PicHeight = picture.PicHeight
			oldPicture.PicScale = picture.PicScale
			oldPicture.PicFormat = picture.PicFormat
			oldPicture.PicColor = picture.PicColor
			oldPicture.ReviewStatus = picture.ReviewStatus
			oldPicture.ReviewMsg = picture.ReviewMsg
			oldPicture.ReviewerID = picture.ReviewerID
			oldPicture.ReviewTime = picture.ReviewTime
			oldPicture.EditTime = &now
			if err := tx.Save(oldPicture).Error; err != nil {
				return apperr.ErrSystem.Wrap(err)
			}
			if spaceID != nil && deltaSize != 0 {
				if err := s.spaceService.ReserveQuota(tx, *spaceID, 0, deltaSize); err != nil {
					return err
				}
			}
			picture = oldPicture
			return nil
		}

		if err := tx.Create(picture).Error; err != nil {
			return apperr.ErrSystem.Wrap(err)
		}
		if spaceID != nil {
			if err := s.spaceService.ReserveQuota(tx, *spaceID, 1, picture.PicSize); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return picture.ToVO(), nil
}

// DeletePicture 删除图片: 元数据行删除与额度释放先提交,
// 对象清理在事务之后异步执行(崩溃最多留下孤儿对象, 不会留下悬空引用)。
func (s *PictureService) DeletePicture(pictureID uint, loginUser *models.User) error {
	if loginUser == nil {
		return apperr.ErrNoAuth.New("请先登录")
	}
	picture, err := s.getPicture(pictureID)
	if err != nil {
		return err
	}
	if err := s.checkPicturePermission(picture, loginUser, auth.PermPictureDelete); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Picture{}, pictureID)
		if result.Error != nil {
			return apperr.ErrSystem.Wrap(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.ErrOperation.New("删除失败")
		}
		if picture.SpaceID != nil {
			if err := s.spaceService.ReleaseQuota(tx, *picture.SpaceID, 1, picture.PicSize); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 清理对象属于尽力而为, 不影响删除结果
	go s.cleanupPictureObjects(*picture)
	return nil
}

// cleanupPictureObjects 引用计数检查后清理对象。
// 同一个物理对象可能被多条图片记录共享(如重复的 url 上传), 仍被引用时不清理。
func (s *PictureService) cleanupPictureObjects(picture models.Picture) {
	var count int64
	if err := s.db.Model(&models.Picture{}).Where("url = ?", picture.URL).Count(&count).Error; err != nil {
		logrus.WithError(err).Error("清理图片失败: 引用检查出错")
		return
	}
	if count > 0 {
		// 仍有其他记录引用, 不清理
		return
	}
	if key := s.keyFromURL(picture.URL); key != "" {
		if err := s.store.Delete(key); err != nil {
			logrus.WithError(err).WithField("key", key).Error("删除图片对象失败")
		}
	}
	if picture.ThumbnailURL != "" && picture.ThumbnailURL != picture.URL {
		if key := s.keyFromURL(picture.ThumbnailURL); key != "" {
			if err := s.store.Delete(key); err != nil {
				logrus.WithError(err).WithField("key", key).Error("删除缩略图对象失败")
			}
		}
	}
}

// keyFromURL 从访问地址还原对象 key
func (s *PictureService) keyFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return ""
	}
	key := strings.TrimPrefix(u.Path, base.Path)
	return strings.TrimPrefix(key, "/")
}

// EditPicture 编辑图片信息, 非管理员编辑后重置为待审核
func (s *PictureService) EditPicture(req *models.PictureEditRequest, loginUser *models.User) (*models.PictureVO, error) {
	if loginUser == nil {
		return nil, apperr.ErrNoAuth.New("请先登录")
	}
	picture, err := s.getPicture(req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPicturePermission(picture, loginUser, auth.PermPictureEdit); err != nil {
		return nil, err
	}
	if len([]rune(req.Introduction)) > 800 {
		return nil, apperr.ErrValidation.New("简介过长")
	}

	// 显式字段合并: 每种请求可拷贝的字段写死在这里
	if req.Name != "" {
		picture.Name = req.Name
	}
	picture.Introduction = req.Introduction
	picture.Category = req.Category
	picture.SetTagList(req.Tags)
	now := time.Now()
	picture.EditTime = &now
	s.fillReviewParams(picture, loginUser)

	if err := s.db.Save(picture).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return picture.ToVO(), nil
}

// EditPictureByBatch 批量编辑: 空间权限只校验一次, 整体一个事务
func (s *PictureService) EditPictureByBatch(req *models.PictureEditByBatchRequest, loginUser *models.User) error {
	if loginUser == nil {
		return apperr.ErrNoAuth.New("请先登录")
	}
	space, err := s.spaceService.GetSpaceByID(req.SpaceID)
	if err != nil {
		return err
	}
	perms := s.resolver.PermissionList(space, loginUser)
	if !auth.HasPermission(perms, auth.PermPictureEdit) {
		return apperr.ErrNoAuth.New("没有空间编辑权限")
	}

	var pictures []models.Picture
	if err := s.db.Where("space_id = ? AND id IN ?", req.SpaceID, req.PictureIDs).
		Find(&pictures).Error; err != nil {
		return apperr.ErrSystem.Wrap(err)
	}
	if len(pictures) == 0 {
		return nil
	}

	for i := range pictures {
		if req.Category != "" {
			pictures[i].Category = req.Category
		}
		if len(req.Tags) > 0 {
			pictures[i].SetTagList(req.Tags)
		}
		// 批量重命名: {seq} 替换为 1 起始的序号
		if req.NameRule != "" {
			pictures[i].Name = strings.ReplaceAll(req.NameRule, "{seq}", fmt.Sprintf("%d", i+1))
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range pictures {
			if err := tx.Save(&pictures[i]).Error; err != nil {
				return apperr.ErrSystem.Wrap(err)
			}
		}
		return nil
	})
}

// DoPictureReview 图片审核, 仅管理员
func (s *PictureService) DoPictureReview(req *models.PictureReviewRequest, loginUser *models.User) error {
	if !loginUser.IsAdmin() {
		return apperr.ErrNoAuth.New("仅管理员可审核")
	}
	if !models.IsReviewStatus(req.ReviewStatus) || req.ReviewStatus == models.ReviewStatusReviewing {
		return apperr.ErrValidation.New("审核状态非法")
	}
	picture, err := s.getPicture(req.ID)
	if err != nil {
		return err
	}
	// 检查审核状态是否重复
	if picture.ReviewStatus == req.ReviewStatus {
		return apperr.ErrOperation.New("图片已审核过")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"review_status": req.ReviewStatus,
		"review_msg":    req.ReviewMsg,
		"reviewer_id":   loginUser.ID,
		"review_time":   now,
	}
	if err := s.db.Model(&models.Picture{}).Where("id = ?", req.ID).Updates(updates).Error; err != nil {
		return apperr.ErrSystem.Wrap(err)
	}
	return nil
}

// UploadPictureByBatch 从外部搜索源批量抓取并上传, 尽力而为。
// 单张失败跳过不中断, 返回成功条数。
func (s *PictureService) UploadPictureByBatch(ctx context.Context, req *models.PictureUploadByBatchRequest, loginUser *models.User) (int, error) {
	if loginUser == nil {
		return 0, apperr.ErrNoAuth.New("请先登录")
	}
	if req.Count > maxBatchFetchCount {
		return 0, apperr.ErrValidation.New("最多抓取30条")
	}

	urls, err := s.crawler.FetchImageURLs(ctx, req.SearchText)
	if err != nil {
		return 0, err
	}

	namePrefix := req.NamePrefix
	if namePrefix == "" {
		// 默认使用搜索词
		namePrefix = req.SearchText
	}

	count := 0
	for _, fileURL := range urls {
		if count >= req.Count {
			break
		}
		uploadReq := &models.PictureUploadRequest{
			PicName: fmt.Sprintf("%s%d", namePrefix, count+1),
		}
		if _, err := s.UploadPicture(ctx, upload.NewURLSource(fileURL), uploadReq, loginUser); err != nil {
			logrus.WithError(err).WithField("url", fileURL).Error("上传图片失败, 跳过")
			continue
		}
		count++
	}
	return count, nil
}

// SearchPictureByColor 按主色调相似度搜索空间内的图片, 返回前 12 张
func (s *PictureService) SearchPictureByColor(spaceID uint, picColor string, loginUser *models.User) ([]*models.PictureVO, error) {
	if loginUser == nil {
		return nil, apperr.ErrNoAuth.New("请先登录")
	}
	space, err := s.spaceService.GetSpaceByID(spaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != loginUser.ID && !loginUser.IsAdmin() {
		return nil, apperr.ErrNoAuth.New("没有空间权限")
	}

	target, err := utils.ParseColor(picColor)
	if err != nil {
		return nil, apperr.ErrValidation.New("颜色格式非法")
	}

	var pictures []models.Picture
	if err := s.db.Where("space_id = ? AND pic_color IS NOT NULL AND pic_color != ''", spaceID).
		Find(&pictures).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}

	// 相似度降序, 无法解析的主色调排在最后; 稳定排序保证并列时保持原顺序
	similarity := func(p *models.Picture) float64 {
		if p.PicColor == nil {
			return -1
		}
		c, err := utils.ParseColor(*p.PicColor)
		if err != nil {
			return -1
		}
		return utils.ColorSimilarity(target, c)
	}
	sort.SliceStable(pictures, func(i, j int) bool {
		return similarity(&pictures[i]) > similarity(&pictures[j])
	})

	if len(pictures) > colorSearchLimit {
		pictures = pictures[:colorSearchLimit]
	}
	vos := make([]*models.PictureVO, 0, len(pictures))
	for i := range pictures {
		vos = append(vos, pictures[i].ToVO())
	}
	return vos, nil
}

// GetPictureVO 查询单张图片
func (s *PictureService) GetPictureVO(pictureID uint, loginUser *models.User) (*models.PictureVO, error) {
	picture, err := s.getPicture(pictureID)
	if err != nil {
		return nil, err
	}
	if picture.SpaceID != nil {
		space, err := s.spaceService.GetSpaceByID(*picture.SpaceID)
		if err != nil {
			return nil, err
		}
		perms := s.resolver.PermissionList(space, loginUser)
		if !auth.HasPermission(perms, auth.PermPictureView) {
			return nil, apperr.ErrNoAuth.New("没有空间权限")
		}
	}
	return picture.ToVO(), nil
}

// ListPictures 分页查询图片
func (s *PictureService) ListPictures(req *models.PictureListRequest, loginUser *models.User) ([]*models.PictureVO, *models.Pagination, error) {
	query := s.db.Model(&models.Picture{})

	if req.SpaceID != nil {
		space, err := s.spaceService.GetSpaceByID(*req.SpaceID)
		if err != nil {
			return nil, nil, err
		}
		perms := s.resolver.PermissionList(space, loginUser)
		if !auth.HasPermission(perms, auth.PermPictureView) {
			return nil, nil, apperr.ErrNoAuth.New("没有空间权限")
		}
		query = query.Where("space_id = ?", *req.SpaceID)
	} else if loginUser == nil || !loginUser.IsAdmin() {
		// 公共图库: 普通用户只能看到审核通过的图片
		query = query.Where("space_id IS NULL").
			Where("review_status = ?", models.ReviewStatusPass)
	} else {
		// 管理员默认查看全部图片, null_space_id 限定为公共图库
		if req.NullSpaceID {
			query = query.Where("space_id IS NULL")
		}
		if req.ReviewStatus != nil {
			query = query.Where("review_status = ?", *req.ReviewStatus)
		}
	}

	if req.SearchText != "" {
		like := "%" + req.SearchText + "%"
		query = query.Where("name LIKE ? OR introduction LIKE ?", like, like)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	for _, tag := range req.Tags {
		query = query.Where("tags LIKE ?", "%\""+tag+"\"%")
	}
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, apperr.ErrSystem.Wrap(err)
	}

	sortField := req.Sort
	if sortField == "" {
		sortField = "created_at"
	}
	order := req.Order
	if order == "" {
		order = "desc"
	}

	var pictures []models.Picture
	offset := (req.Page - 1) * req.Limit
	err := query.Order(fmt.Sprintf("%s %s", sortField, order)).
		Offset(offset).Limit(req.Limit).
		Find(&pictures).Error
	if err != nil {
		return nil, nil, apperr.ErrSystem.Wrap(err)
	}

	vos := make([]*models.PictureVO, 0, len(pictures))
	for i := range pictures {
		vos = append(vos, pictures[i].ToVO())
	}
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return vos, &models.Pagination{Page: req.Page, Limit: req.Limit, Total: total, Pages: pages}, nil
}

// ListTagCategory 聚合公共图库的标签与分类
func (s *PictureService) ListTagCategory() (*models.PictureTagCategory, error) {
	var categories []string
	err := s.db.Model(&models.Picture{}).
		Where("category != ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}

	var tagColumns []string
	err = s.db.Model(&models.Picture{}).
		Where("tags != ''").
		Pluck("tags", &tagColumns).Error
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	seen := make(map[string]bool)
	var tags []string
	for _, column := range tagColumns {
		for _, tag := range models.TagsFromJSON(column) {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)

	return &models.PictureTagCategory{TagList: tags, CategoryList: categories}, nil
}

func (s *PictureService) getPicture(pictureID uint) (*models.Picture, error) {
	var picture models.Picture
	err := s.db.First(&picture, pictureID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.ErrNotFound.New("图片不存在")
	}
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return &picture, nil
}

// checkPicturePermission 按空间类型检查图片操作权限
func (s *PictureService) checkPicturePermission(picture *models.Picture, loginUser *models.User, perm string) error {
	if picture.SpaceID == nil {
		// 公共图库: 仅本人或管理员可操作
		if picture.UserID != loginUser.ID && !loginUser.IsAdmin() {
			return apperr.ErrNoAuth.New("没有图片权限")
		}
		return nil
	}
	space, err := s.spaceService.GetSpaceByID(*picture.SpaceID)
	if err != nil {
		return err
	}
	perms := s.resolver.PermissionList(space, loginUser)
	if !auth.HasPermission(perms, perm) {
		return apperr.ErrNoAuth.New("没有空间权限")
	}
	return nil
}

// fillReviewParams 填充审核参数: 管理员自动过审, 其余重置为待审核
func (s *PictureService) fillReviewParams(picture *models.Picture, loginUser *models.User) {
	if loginUser.IsAdmin() {
		now := time.Now()
		picture.ReviewStatus = models.ReviewStatusPass
		picture.ReviewMsg = "管理员自动过审"
		picture.ReviewerID = &loginUser.ID
		picture.ReviewTime = &now
	} else {
		picture.ReviewStatus = models.ReviewStatusReviewing
		picture.ReviewMsg = ""
		picture.ReviewerID = nil
		picture.ReviewTime = nil
	}
}
