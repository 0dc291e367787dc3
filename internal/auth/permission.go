// internal/auth/permission.go - 空间角色权限表与权限解析
package auth

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/bcZhang717/picture/internal/models"
)

// 权限点
const (
	PermSpaceUserManage = "spaceUser:manage"
	PermPictureView     = "picture:view"
	PermPictureUpload   = "picture:upload"
	PermPictureEdit     = "picture:edit"
	PermPictureDelete   = "picture:delete"
)

//go:embed space_role_permissions.json
var permissionConfigJSON []byte

type RolePermissions struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type PermissionConfig struct {
	Roles []RolePermissions `json:"roles"`
}

// Resolver 计算 (空间, 用户) 的有效权限集。
// 权限表在启动时加载一次, 运行期只读。
type Resolver struct {
	db    *gorm.DB
	roles map[string][]string
}

func NewResolver(db *gorm.DB) (*Resolver, error) {
	var cfg PermissionConfig
	if err := json.Unmarshal(permissionConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("加载权限配置失败: %w", err)
	}
	roles := make(map[string][]string, len(cfg.Roles))
	for _, role := range cfg.Roles {
		roles[role.Key] = role.Permissions
	}
	return &Resolver{db: db, roles: roles}, nil
}

// PermissionsByRole 根据角色 key 获取权限列表, 未知角色返回空集
func (r *Resolver) PermissionsByRole(role string) []string {
	if role == "" {
		return []string{}
	}
	perms, ok := r.roles[role]
	if !ok {
		return []string{}
	}
	return perms
}

// PermissionList 计算有效权限集, 全程不抛错, 默认拒绝。
// space 为 nil 表示公共图库。
func (r *Resolver) PermissionList(space *models.Space, user *models.User) []string {
	if user == nil {
		return []string{}
	}
	adminPerms := r.PermissionsByRole(models.SpaceRoleAdmin)
	// 公共图库: 仅管理员有全部权限
	if space == nil {
		if user.IsAdmin() {
			return adminPerms
		}
		return []string{}
	}
	switch space.SpaceType {
	case models.SpaceTypePrivate:
		// 私有空间: 仅本人或管理员有全部权限
		if space.OwnerID == user.ID || user.IsAdmin() {
			return adminPerms
		}
		return []string{}
	case models.SpaceTypeTeam:
		// 团队空间: 查询成员关系并映射角色权限
		var member models.SpaceMember
		err := r.db.Where("space_id = ? AND user_id = ?", space.ID, user.ID).
			First(&member).Error
		if err != nil {
			return []string{}
		}
		return r.PermissionsByRole(member.Role)
	}
	return []string{}
}

// HasPermission 判断权限集内是否包含指定权限
func HasPermission(perms []string, perm string) bool {
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}
