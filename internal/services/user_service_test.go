package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcZhang717/picture/internal/apperr"
	"github.com/bcZhang717/picture/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)

	user, err := service.Register(&models.UserRegisterRequest{
		Account:       "zhangsan",
		Password:      "password123",
		CheckPassword: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "zhangsan", user.Account)
	assert.Equal(t, models.UserRoleUser, user.Role)
	// 密码不落明文
	assert.NotEqual(t, "password123", user.PasswordHash)

	got, err := service.Login(&models.UserLoginRequest{Account: "zhangsan", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)

	_, err := service.Register(&models.UserRegisterRequest{
		Account:       "zhangsan",
		Password:      "password123",
		CheckPassword: "password456",
	})
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))
}

func TestRegisterDuplicateAccount(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)

	req := &models.UserRegisterRequest{
		Account:       "zhangsan",
		Password:      "password123",
		CheckPassword: "password123",
	}
	_, err := service.Register(req)
	require.NoError(t, err)

	_, err = service.Register(req)
	require.Error(t, err)
	assert.True(t, apperr.ErrOperation.Has(err))
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)

	_, err := service.Register(&models.UserRegisterRequest{
		Account:       "zhangsan",
		Password:      "password123",
		CheckPassword: "password123",
	})
	require.NoError(t, err)

	_, err = service.Login(&models.UserLoginRequest{Account: "zhangsan", Password: "wrong-password"})
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))

	// 不存在的账号与密码错误表现一致
	_, err = service.Login(&models.UserLoginRequest{Account: "ghost", Password: "password123"})
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))
}

func TestLoginInactiveUser(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)

	user, err := service.Register(&models.UserRegisterRequest{
		Account:       "zhangsan",
		Password:      "password123",
		CheckPassword: "password123",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = service.Login(&models.UserLoginRequest{Account: "zhangsan", Password: "password123"})
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))
}

func TestListUsersPagination(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)

	for _, account := range []string{"user1", "user2", "user3"} {
		createTestUser(t, db, account, models.UserRoleUser)
	}

	users, pagination, err := service.ListUsers(1, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, int64(3), pagination.Total)
	assert.Equal(t, 2, pagination.Pages)

	users, _, err = service.ListUsers(2, 2)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
