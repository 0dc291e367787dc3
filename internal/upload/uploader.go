// internal/upload/uploader.go - 上传流程模版: 校验 -> 临时文件 -> 入库处理
package upload

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bcZhang717/picture/internal/apperr"
	"github.com/bcZhang717/picture/internal/storage"
)

// Result 上传结果: 对象存储处理结果 + 默认图片名称
type Result struct {
	storage.PutResult
	PicName string
}

type Uploader struct {
	store storage.ObjectStore
}

func NewUploader(store storage.ObjectStore) *Uploader {
	return &Uploader{store: store}
}

// Upload 执行上传: 校验来源, 生成临时文件, 交给对象存储处理。
// 任何退出路径都会清理临时文件; 存储侧错误对外统一为"上传失败"。
func (u *Uploader) Upload(ctx context.Context, source Source, pathPrefix string) (*Result, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}

	originalName := source.OriginalName()
	suffix := strings.TrimPrefix(filepath.Ext(originalName), ".")
	if suffix == "" {
		// url 没有后缀标明文件类型时默认 jpg
		suffix = "jpg"
	}
	key := fmt.Sprintf("%s/%s_%s.%s",
		strings.Trim(pathPrefix, "/"),
		time.Now().Format("2006-01-02"),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:10],
		suffix)

	localPath, cleanup, err := source.Materialize(ctx)
	if err != nil {
		if apperr.ErrValidation.Has(err) {
			return nil, err
		}
		logrus.WithError(err).Error("获取上传文件失败")
		return nil, apperr.ErrSystem.New("上传失败")
	}
	defer cleanup()

	result, err := u.store.PutPicture(key, localPath)
	if err != nil {
		if apperr.ErrValidation.Has(err) {
			return nil, err
		}
		logrus.WithError(err).Error("文件上传失败")
		return nil, apperr.ErrSystem.New("上传失败")
	}

	return &Result{
		PutResult: *result,
		PicName:   mainName(originalName),
	}, nil
}

// mainName 去掉文件名的扩展名
func mainName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
