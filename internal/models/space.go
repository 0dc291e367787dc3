package models

import (
	"time"

	"gorm.io/gorm"
)

// 空间类型
const (
	SpaceTypePrivate = 0 // 私有空间
	SpaceTypeTeam    = 1 // 团队空间
)

// 空间级别
const (
	SpaceLevelCommon       = 0 // 普通版
	SpaceLevelProfessional = 1 // 专业版
	SpaceLevelFlagship     = 2 // 旗舰版
)

// SpaceLevelQuota 各级别的默认额度
type SpaceLevelQuota struct {
	Text     string
	MaxCount int64
	MaxSize  int64
}

var spaceLevelQuotas = map[int]SpaceLevelQuota{
	SpaceLevelCommon:       {Text: "普通版", MaxCount: 100, MaxSize: 150 * 1024 * 1024},
	SpaceLevelProfessional: {Text: "专业版", MaxCount: 1000, MaxSize: 1024 * 1024 * 1024},
	SpaceLevelFlagship:     {Text: "旗舰版", MaxCount: 10000, MaxSize: 10240 * 1024 * 1024},
}

// QuotaOfLevel 根据空间级别获取默认额度
func QuotaOfLevel(level int) (SpaceLevelQuota, bool) {
	q, ok := spaceLevelQuotas[level]
	return q, ok
}

type Space struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:30;not null"`
	OwnerID   uint           `json:"owner_id" gorm:"not null;index"`
	SpaceType int            `json:"space_type" gorm:"default:0;index"`
	Level     int            `json:"level" gorm:"default:0"`
	MaxCount  int64          `json:"max_count" gorm:"not null"`
	MaxSize   int64          `json:"max_size" gorm:"not null"`
	UsedCount int64          `json:"used_count" gorm:"default:0"`
	UsedSize  int64          `json:"used_size" gorm:"default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// 关联
	Owner   User          `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Members []SpaceMember `json:"members,omitempty" gorm:"foreignKey:SpaceID"`
}

// 团队空间成员角色(与权限表的角色 key 对应)
const (
	SpaceRoleViewer = "viewer"
	SpaceRoleEditor = "editor"
	SpaceRoleAdmin  = "admin"
)

type SpaceMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SpaceID   uint      `json:"space_id" gorm:"not null;uniqueIndex:idx_space_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_space_user"`
	Role      string    `json:"role" gorm:"size:20;default:viewer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Space Space `json:"space,omitempty" gorm:"foreignKey:SpaceID"`
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type SpaceAddRequest struct {
	Name      string `json:"name" validate:"max=30"`
	SpaceType int    `json:"space_type" validate:"oneof=0 1"`
	Level     *int   `json:"level"`
}

type SpaceUpdateRequest struct {
	ID       uint   `json:"id" validate:"required"`
	Name     string `json:"name" validate:"max=30"`
	Level    *int   `json:"level"`
	MaxCount *int64 `json:"max_count"`
	MaxSize  *int64 `json:"max_size"`
}

type SpaceMemberAddRequest struct {
	SpaceID uint   `json:"space_id" validate:"required"`
	UserID  uint   `json:"user_id" validate:"required"`
	Role    string `json:"role" validate:"required,oneof=viewer editor admin"`
}

type SpaceMemberEditRequest struct {
	SpaceID uint   `json:"space_id" validate:"required"`
	UserID  uint   `json:"user_id" validate:"required"`
	Role    string `json:"role" validate:"required,oneof=viewer editor admin"`
}
