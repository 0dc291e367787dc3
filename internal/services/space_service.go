// internal/services/space_service.go - 空间管理与额度账本
package services

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/bcZhang717/picture/internal/apperr"
	"github.com/bcZhang717/picture/internal/auth"
	"github.com/bcZhang717/picture/internal/models"
)

type SpaceService struct {
	db       *gorm.DB
	resolver *auth.Resolver

	// 空间创建的用户级临界区。
	// 单实例部署下进程内互斥即可, 水平扩展需换成分布式锁或唯一约束兜底。
	userLocks sync.Map
}

func NewSpaceService(db *gorm.DB, resolver *auth.Resolver) *SpaceService {
	return &SpaceService{db: db, resolver: resolver}
}

func (s *SpaceService) userLock(userID uint) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// AddSpace 创建空间。私有空间每个用户至多一个(锁 + 事务内查重)。
func (s *SpaceService) AddSpace(req *models.SpaceAddRequest, loginUser *models.User) (*models.Space, error) {
	if loginUser == nil {
		return nil, apperr.ErrNoAuth.New("请先登录")
	}

	name := req.Name
	if name == "" {
		name = "默认空间"
	}
	if len([]rune(name)) > 30 {
		return nil, apperr.ErrValidation.New("空间名称过长")
	}
	level := models.SpaceLevelCommon
	if req.Level != nil {
		level = *req.Level
	}
	quota, ok := models.QuotaOfLevel(level)
	if !ok {
		return nil, apperr.ErrValidation.New("空间级别不存在")
	}
	// 非管理员只能创建普通级别的空间
	if level != models.SpaceLevelCommon && !loginUser.IsAdmin() {
		return nil, apperr.ErrNoAuth.New("普通用户只能创建指定级别的空间")
	}

	space := &models.Space{
		Name:      name,
		OwnerID:   loginUser.ID,
		SpaceType: req.SpaceType,
		Level:     level,
		MaxCount:  quota.MaxCount,
		MaxSize:   quota.MaxSize,
	}

	if req.SpaceType == models.SpaceTypePrivate {
		// 保证锁的粒度: 每个用户一把
		lock := s.userLock(loginUser.ID)
		lock.Lock()
		defer lock.Unlock()
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.SpaceType == models.SpaceTypePrivate {
			var count int64
			err := tx.Model(&models.Space{}).
				Where("owner_id = ? AND space_type = ?", loginUser.ID, models.SpaceTypePrivate).
				Count(&count).Error
			if err != nil {
				return apperr.ErrSystem.Wrap(err)
			}
			if count > 0 {
				return apperr.ErrOperation.New("用户已经创建过空间, 不能重复创建")
			}
		}
		if err := tx.Create(space).Error; err != nil {
			return apperr.ErrSystem.Wrap(err)
		}
		// 团队空间的创建者自动成为空间管理员
		if req.SpaceType == models.SpaceTypeTeam {
			member := models.SpaceMember{
				SpaceID: space.ID,
				UserID:  loginUser.ID,
				Role:    models.SpaceRoleAdmin,
			}
			if err := tx.Create(&member).Error; err != nil {
				return apperr.ErrSystem.Wrap(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return space, nil
}

func (s *SpaceService) GetSpaceByID(spaceID uint) (*models.Space, error) {
	var space models.Space
	err := s.db.First(&space, spaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound.New("空间不存在")
	}
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return &space, nil
}

// UpdateSpace 更新空间信息。名称归属主可改, 级别与额度仅管理员可改。
func (s *SpaceService) UpdateSpace(req *models.SpaceUpdateRequest, loginUser *models.User) (*models.Space, error) {
	space, err := s.GetSpaceByID(req.ID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != loginUser.ID && !loginUser.IsAdmin() {
		return nil, apperr.ErrNoAuth.New("没有空间权限")
	}

	if req.Name != "" {
		if len([]rune(req.Name)) > 30 {
			return nil, apperr.ErrValidation.New("空间名称过长")
		}
		space.Name = req.Name
	}
	if req.Level != nil || req.MaxCount != nil || req.MaxSize != nil {
		if !loginUser.IsAdmin() {
			return nil, apperr.ErrNoAuth.New("仅管理员可调整空间级别和额度")
		}
		if req.Level != nil {
			quota, ok := models.QuotaOfLevel(*req.Level)
			if !ok {
				return nil, apperr.ErrValidation.New("空间级别不存在")
			}
			space.Level = *req.Level
			space.MaxCount = quota.MaxCount
			space.MaxSize = quota.MaxSize
		}
		// 以管理员显式指定的额度为准
		if req.MaxCount != nil {
			space.MaxCount = *req.MaxCount
		}
		if req.MaxSize != nil {
			space.MaxSize = *req.MaxSize
		}
	}

	if err := s.db.Save(space).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return space, nil
}

// ListSpaces 管理员看全部, 普通用户看自己拥有或加入的空间
func (s *SpaceService) ListSpaces(loginUser *models.User) ([]models.Space, error) {
	var spaces []models.Space
	query := s.db.Order("created_at DESC")
	if !loginUser.IsAdmin() {
		query = query.Where(
			"owner_id = ? OR id IN (?)",
			loginUser.ID,
			s.db.Model(&models.SpaceMember{}).Select("space_id").Where("user_id = ?", loginUser.ID),
		)
	}
	if err := query.Find(&spaces).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return spaces, nil
}

// CheckQuota 上传前的预检, 避免明显要失败的上传白白付出处理成本。
// 权威的额度保证是 ReserveQuota 的条件更新。
func (s *SpaceService) CheckQuota(space *models.Space) error {
	if space.UsedCount >= space.MaxCount {
		return apperr.ErrQuotaExceeded.New("空间图片数量已满")
	}
	if space.UsedSize >= space.MaxSize {
		return apperr.ErrQuotaExceeded.New("空间大小不足")
	}
	return nil
}

// ReserveQuota 原子占用额度: 数据库内条件自增, 不在应用内存里读改写,
// 避免同空间并发上传的丢失更新。条件不满足时零行受影响 => 额度不足。
func (s *SpaceService) ReserveQuota(tx *gorm.DB, spaceID uint, deltaCount, deltaSize int64) error {
	result := tx.Model(&models.Space{}).
		Where("id = ? AND used_count + ? <= max_count AND used_size + ? <= max_size",
			spaceID, deltaCount, deltaSize).
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count + ?", deltaCount),
			"used_size":  gorm.Expr("used_size + ?", deltaSize),
		})
	if result.Error != nil {
		return apperr.ErrSystem.Wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrQuotaExceeded.New("空间额度不足")
	}
	return nil
}

// ReleaseQuota 原子释放额度, 不允许减到负数
func (s *SpaceService) ReleaseQuota(tx *gorm.DB, spaceID uint, deltaCount, deltaSize int64) error {
	result := tx.Model(&models.Space{}).
		Where("id = ? AND used_count - ? >= 0 AND used_size - ? >= 0", spaceID, deltaCount, deltaSize).
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count - ?", deltaCount),
			"used_size":  gorm.Expr("used_size - ?", deltaSize),
		})
	if result.Error != nil {
		return apperr.ErrSystem.Wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrOperation.New("额度更新失败")
	}
	return nil
}

// AddMember 添加团队空间成员(需要成员管理权限)
func (s *SpaceService) AddMember(req *models.SpaceMemberAddRequest, loginUser *models.User) error {
	space, err := s.GetSpaceByID(req.SpaceID)
	if err != nil {
		return err
	}
	if space.SpaceType != models.SpaceTypeTeam {
		return apperr.ErrValidation.New("仅团队空间支持成员管理")
	}
	if err := s.requireMemberManage(space, loginUser); err != nil {
		return err
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		return apperr.ErrNotFound.New("用户不存在")
	}

	var count int64
	if err := s.db.Model(&models.SpaceMember{}).
		Where("space_id = ? AND user_id = ?", req.SpaceID, req.UserID).
		Count(&count).Error; err != nil {
		return apperr.ErrSystem.Wrap(err)
	}
	if count > 0 {
		return apperr.ErrOperation.New("用户已是空间成员")
	}

	member := models.SpaceMember{SpaceID: req.SpaceID, UserID: req.UserID, Role: req.Role}
	if err := s.db.Create(&member).Error; err != nil {
		return apperr.ErrSystem.Wrap(err)
	}
	return nil
}

// EditMemberRole 修改成员角色
func (s *SpaceService) EditMemberRole(req *models.SpaceMemberEditRequest, loginUser *models.User) error {
	space, err := s.GetSpaceByID(req.SpaceID)
	if err != nil {
		return err
	}
	if err := s.requireMemberManage(space, loginUser); err != nil {
		return err
	}

	result := s.db.Model(&models.SpaceMember{}).
		Where("space_id = ? AND user_id = ?", req.SpaceID, req.UserID).
		Update("role", req.Role)
	if result.Error != nil {
		return apperr.ErrSystem.Wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound.New("空间成员不存在")
	}
	return nil
}

// RemoveMember 移除成员
func (s *SpaceService) RemoveMember(spaceID, userID uint, loginUser *models.User) error {
	space, err := s.GetSpaceByID(spaceID)
	if err != nil {
		return err
	}
	if err := s.requireMemberManage(space, loginUser); err != nil {
		return err
	}
	if space.OwnerID == userID {
		return apperr.ErrValidation.New("不能移除空间创建者")
	}

	result := s.db.Where("space_id = ? AND user_id = ?", spaceID, userID).
		Delete(&models.SpaceMember{})
	if result.Error != nil {
		return apperr.ErrSystem.Wrap(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound.New("空间成员不存在")
	}
	return nil
}

// ListMembers 查询空间成员
func (s *SpaceService) ListMembers(spaceID uint, loginUser *models.User) ([]models.SpaceMember, error) {
	space, err := s.GetSpaceByID(spaceID)
	if err != nil {
		return nil, err
	}
	perms := s.resolver.PermissionList(space, loginUser)
	if !auth.HasPermission(perms, auth.PermPictureView) {
		return nil, apperr.ErrNoAuth.New("没有空间权限")
	}

	var members []models.SpaceMember
	if err := s.db.Preload("User").Where("space_id = ?", spaceID).Find(&members).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return members, nil
}

func (s *SpaceService) requireMemberManage(space *models.Space, loginUser *models.User) error {
	perms := s.resolver.PermissionList(space, loginUser)
	if !auth.HasPermission(perms, auth.PermSpaceUserManage) {
		return apperr.ErrNoAuth.New("没有成员管理权限")
	}
	return nil
}
