package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// 审核状态
const (
	ReviewStatusReviewing = 0 // 待审核
	ReviewStatusPass      = 1 // 审核通过
	ReviewStatusReject    = 2 // 审核拒绝
)

// IsReviewStatus 校验审核状态取值是否合法
func IsReviewStatus(v int) bool {
	return v == ReviewStatusReviewing || v == ReviewStatusPass || v == ReviewStatusReject
}

type Picture struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	SpaceID      *uint          `json:"space_id" gorm:"index"` // 为空表示公共图库
	UserID       uint           `json:"user_id" gorm:"not null;index"`
	URL          string         `json:"url" gorm:"size:1024;not null;index"`
	ThumbnailURL string         `json:"thumbnail_url" gorm:"size:1024"`
	Name         string         `json:"name" gorm:"size:128;not null"`
	Introduction string         `json:"introduction" gorm:"size:800"`
	Category     string         `json:"category" gorm:"size:64;index"`
	Tags         string         `json:"-" gorm:"size:512"` // JSON 数组字符串, 对外通过 TagList 转换
	PicSize      int64          `json:"pic_size"`
	PicWidth     int            `json:"pic_width"`
	PicHeight    int            `json:"pic_height"`
	PicScale     float64        `json:"pic_scale"` // 宽高比, 保留两位小数
	PicFormat    string         `json:"pic_format" gorm:"size:20"`
	PicColor     *string        `json:"pic_color" gorm:"size:16"` // 主色调 #RRGGBB
	ReviewStatus int            `json:"review_status" gorm:"default:0;index"`
	ReviewMsg    string         `json:"review_message" gorm:"size:255"`
	ReviewerID   *uint          `json:"reviewer_id"`
	ReviewTime   *time.Time     `json:"review_time"`
	EditTime     *time.Time     `json:"edit_time"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// 关联
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TagList 将存储的 JSON 字符串转换为标签列表
func (p *Picture) TagList() []string {
	return TagsFromJSON(p.Tags)
}

// SetTagList 将标签列表序列化后存储
func (p *Picture) SetTagList(tags []string) {
	p.Tags = TagsToJSON(tags)
}

// TagsToJSON 标签列表 => JSON 字符串(显式转换, 不依赖反射拷贝)
func TagsToJSON(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(data)
}

// TagsFromJSON JSON 字符串 => 标签列表
func TagsFromJSON(s string) []string {
	if s == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return []string{}
	}
	return tags
}

// PictureVO 对外展示的图片信息(tags 展开为列表)
type PictureVO struct {
	ID           uint       `json:"id"`
	SpaceID      *uint      `json:"space_id"`
	UserID       uint       `json:"user_id"`
	URL          string     `json:"url"`
	ThumbnailURL string     `json:"thumbnail_url"`
	Name         string     `json:"name"`
	Introduction string     `json:"introduction"`
	Category     string     `json:"category"`
	Tags         []string   `json:"tags"`
	PicSize      int64      `json:"pic_size"`
	PicWidth     int        `json:"pic_width"`
	PicHeight    int        `json:"pic_height"`
	PicScale     float64    `json:"pic_scale"`
	PicFormat    string     `json:"pic_format"`
	PicColor     *string    `json:"pic_color"`
	ReviewStatus int        `json:"review_status"`
	CreatedAt    time.Time  `json:"created_at"`
	EditTime     *time.Time `json:"edit_time"`
	User         *User      `json:"user,omitempty"`
}

// ToVO 实体 => VO 的显式字段映射
func (p *Picture) ToVO() *PictureVO {
	return &PictureVO{
		ID:           p.ID,
		SpaceID:      p.SpaceID,
		UserID:       p.UserID,
		URL:          p.URL,
		ThumbnailURL: p.ThumbnailURL,
		Name:         p.Name,
		Introduction: p.Introduction,
		Category:     p.Category,
		Tags:         p.TagList(),
		PicSize:      p.PicSize,
		PicWidth:     p.PicWidth,
		PicHeight:    p.PicHeight,
		PicScale:     p.PicScale,
		PicFormat:    p.PicFormat,
		PicColor:     p.PicColor,
		ReviewStatus: p.ReviewStatus,
		CreatedAt:    p.CreatedAt,
		EditTime:     p.EditTime,
	}
}

type PictureUploadRequest struct {
	ID      uint   `form:"id" json:"id"` // 指定则为更新
	SpaceID *uint  `form:"space_id" json:"space_id"`
	PicName string `form:"pic_name" json:"pic_name"`
	FileURL string `form:"file_url" json:"file_url"` // URL 上传时使用
}

type PictureEditRequest struct {
	ID           uint     `json:"id" validate:"required"`
	Name         string   `json:"name" validate:"max=128"`
	Introduction string   `json:"introduction" validate:"max=800"`
	Category     string   `json:"category" validate:"max=64"`
	Tags         []string `json:"tags"`
}

type PictureReviewRequest struct {
	ID           uint   `json:"id" validate:"required"`
	ReviewStatus int    `json:"review_status"`
	ReviewMsg    string `json:"review_message" validate:"max=255"`
}

type PictureEditByBatchRequest struct {
	PictureIDs []uint   `json:"picture_ids" validate:"required,min=1"`
	SpaceID    uint     `json:"space_id" validate:"required"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	NameRule   string   `json:"name_rule"` // 例: "图片-{seq}"
}

type PictureUploadByBatchRequest struct {
	SearchText string `json:"search_text" validate:"required"`
	Count      int    `json:"count" validate:"min=1,max=30"`
	NamePrefix string `json:"name_prefix"`
}

type PictureSearchByColorRequest struct {
	SpaceID  uint   `json:"space_id" validate:"required"`
	PicColor string `json:"pic_color" validate:"required,hexcolor"`
}

type PictureListRequest struct {
	Page         int      `form:"page" validate:"min=1"`
	Limit        int      `form:"limit" validate:"min=1,max=100"`
	SearchText   string   `form:"search_text"`
	Category     string   `form:"category"`
	Tags         []string `form:"tags"`
	SpaceID      *uint    `form:"space_id"`
	NullSpaceID  bool     `form:"null_space_id"`
	UserID       *uint    `form:"user_id"`
	ReviewStatus *int     `form:"review_status"`
	Sort         string   `form:"sort" validate:"omitempty,oneof=created_at updated_at name pic_size"`
	Order        string   `form:"order" validate:"omitempty,oneof=asc desc"`
}

// PictureTagCategory 标签分类列表视图
type PictureTagCategory struct {
	TagList      []string `json:"tag_list"`
	CategoryList []string `json:"category_list"`
}
