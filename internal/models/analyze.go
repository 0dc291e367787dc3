package models

// 空间分析请求的公共字段: 三选一, 指定空间 / 公共图库 / 全部空间
type SpaceAnalyzeRequest struct {
	SpaceID     *uint `json:"space_id"`
	QueryPublic bool  `json:"query_public"`
	QueryAll    bool  `json:"query_all"`
}

type SpaceUsageAnalyzeRequest struct {
	SpaceAnalyzeRequest
}

// SpaceUsageAnalyzeResponse 空间使用情况
type SpaceUsageAnalyzeResponse struct {
	UsedSize        int64    `json:"used_size"`
	MaxSize         *int64   `json:"max_size,omitempty"` // 公共图库和全部空间无上限
	SizeUsageRatio  *float64 `json:"size_usage_ratio,omitempty"`
	UsedCount       int64    `json:"used_count"`
	MaxCount        *int64   `json:"max_count,omitempty"`
	CountUsageRatio *float64 `json:"count_usage_ratio,omitempty"`
}

type SpaceCategoryAnalyzeRequest struct {
	SpaceAnalyzeRequest
}

// SpaceCategoryAnalyzeResponse 按分类统计
type SpaceCategoryAnalyzeResponse struct {
	Category  string `json:"category"`
	Count     int64  `json:"count"`
	TotalSize int64  `json:"total_size"`
}

type SpaceTagAnalyzeRequest struct {
	SpaceAnalyzeRequest
}

// SpaceTagAnalyzeResponse 按标签统计
type SpaceTagAnalyzeResponse struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

type SpaceSizeAnalyzeRequest struct {
	SpaceAnalyzeRequest
}

// SpaceSizeAnalyzeResponse 按大小区间统计
type SpaceSizeAnalyzeResponse struct {
	SizeRange string `json:"size_range"`
	Count     int64  `json:"count"`
}

// SpaceUserAnalyzeRequest 用户上传行为分析, 时间维度: day / week / month
type SpaceUserAnalyzeRequest struct {
	SpaceAnalyzeRequest
	UserID        *uint  `json:"user_id"`
	TimeDimension string `json:"time_dimension"`
}

// SpaceUserAnalyzeResponse 某时间段内的上传数量
type SpaceUserAnalyzeResponse struct {
	Period string `json:"period"`
	Count  int64  `json:"count"`
}
