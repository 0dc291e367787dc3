package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Account      string         `json:"account" gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"`
	Name         string         `json:"name" gorm:"size:50"`
	Avatar       *string        `json:"avatar" gorm:"size:255"`
	Role         string         `json:"role" gorm:"size:20;default:user"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsAdmin 管理员绕过所有权校验
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

type UserRegisterRequest struct {
	Account       string `json:"account" validate:"required,min=4,max=50"`
	Password      string `json:"password" validate:"required,min=8"`
	CheckPassword string `json:"check_password" validate:"required,min=8"`
}

type UserLoginRequest struct {
	Account  string `json:"account" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
