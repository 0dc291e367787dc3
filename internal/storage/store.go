// internal/storage/store.go - 对象存储接口
package storage

// PutResult 图片入库处理结果: 衍生图地址与解析出的元信息
type PutResult struct {
	Key          string  // 压缩图(格式归一化)对象 key
	ThumbnailKey string  // 缩略图对象 key, 未生成时为空
	URL          string  // 压缩图访问地址
	ThumbnailURL string  // 对外展示地址: 缩略图 > 压缩图 > 原图
	PicSize      int64   // 压缩图字节数
	PicWidth     int     // 原图宽
	PicHeight    int     // 原图高
	PicScale     float64 // 宽高比, 保留两位小数
	PicFormat    string  // 原图格式
	PicColor     string  // 主色调 #RRGGBB
}

// ObjectStore 图片对象存储。
// PutPicture 上传并处理图片: 解析元信息、生成压缩图, 超过阈值时生成缩略图。
type ObjectStore interface {
	PutPicture(key string, localPath string) (*PutResult, error)
	Get(key string) ([]byte, error)
	Delete(key string) error
}
