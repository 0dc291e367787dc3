package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bcZhang717/picture/internal/auth"
	"github.com/bcZhang717/picture/internal/models"
)

// newTestDB 内存数据库, 限制为单连接避免各连接各自一个 :memory: 库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Space{},
		&models.SpaceMember{},
		&models.Picture{},
	))
	return db
}

func newTestResolver(t *testing.T, db *gorm.DB) *auth.Resolver {
	t.Helper()
	resolver, err := auth.NewResolver(db)
	require.NoError(t, err)
	return resolver
}

func createTestUser(t *testing.T, db *gorm.DB, account, role string) *models.User {
	t.Helper()
	user := &models.User{
		Account:      account,
		PasswordHash: "x",
		Name:         account,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestSpace(t *testing.T, db *gorm.DB, owner *models.User, spaceType int) *models.Space {
	t.Helper()
	quota, _ := models.QuotaOfLevel(models.SpaceLevelCommon)
	space := &models.Space{
		Name:      fmt.Sprintf("%s的空间", owner.Account),
		OwnerID:   owner.ID,
		SpaceType: spaceType,
		Level:     models.SpaceLevelCommon,
		MaxCount:  quota.MaxCount,
		MaxSize:   quota.MaxSize,
	}
	require.NoError(t, db.Create(space).Error)
	return space
}

func createTestPicture(t *testing.T, db *gorm.DB, userID uint, spaceID *uint, size int64) *models.Picture {
	t.Helper()
	picture := &models.Picture{
		SpaceID:      spaceID,
		UserID:       userID,
		URL:          fmt.Sprintf("http://localhost:8080/uploads/test/%d.jpg", size),
		Name:         "测试图片",
		PicSize:      size,
		PicFormat:    "jpeg",
		ReviewStatus: models.ReviewStatusPass,
	}
	require.NoError(t, db.Create(picture).Error)
	return picture
}
