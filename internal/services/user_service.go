// internal/services/user_service.go
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bcZhang717/picture/internal/apperr"
	"github.com/bcZhang717/picture/internal/models"
	"github.com/bcZhang717/picture/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Register(req *models.UserRegisterRequest) (*models.User, error) {
	// 确认密码必须和密码相同
	if req.Password != req.CheckPassword {
		return nil, apperr.ErrValidation.New("两次输入的密码不一致")
	}

	// 账号不能重复
	var count int64
	if err := s.db.Model(&models.User{}).Where("account = ?", req.Account).Count(&count).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	if count > 0 {
		return nil, apperr.ErrOperation.New("账号已存在")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}

	user := models.User{
		Account:      req.Account,
		PasswordHash: hashedPassword,
		Name:         req.Account,
		Role:         models.UserRoleUser,
		IsActive:     true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return &user, nil
}

func (s *UserService) Login(req *models.UserLoginRequest) (*models.User, error) {
	var user models.User
	err := s.db.Where("account = ? AND is_active = ?", req.Account, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrValidation.New("账号或密码错误")
	}
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}

	if !utils.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, apperr.ErrValidation.New("账号或密码错误")
	}
	return &user, nil
}

func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound.New("用户不存在")
	}
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return &user, nil
}

// ListUsers 管理员分页查询用户
func (s *UserService) ListUsers(page, limit int) ([]models.User, *models.Pagination, error) {
	var users []models.User
	var total int64

	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, nil, apperr.ErrSystem.Wrap(err)
	}
	offset := (page - 1) * limit
	if err := s.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, nil, apperr.ErrSystem.Wrap(err)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return users, &models.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}, nil
}
