// internal/upload/source.go - 上传来源抽象与本地文件来源
package upload

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/bcZhang717/picture/internal/apperr"
)

// 单张图片大小上限
const MaxPictureSize = 2 * 1024 * 1024

// 允许的图片后缀
var allowedExts = []string{"jpg", "jpeg", "png", "webp"}

// Source 上传来源: 本地文件或远程 URL。
// Materialize 生成本地临时文件, 返回的 cleanup 必须在任何退出路径上调用。
type Source interface {
	Validate() error
	OriginalName() string
	Materialize(ctx context.Context) (path string, cleanup func(), err error)
}

// FileSource 本地文件上传(请求体里已收到的文件)
type FileSource struct {
	Header *multipart.FileHeader
}

func NewFileSource(header *multipart.FileHeader) *FileSource {
	return &FileSource{Header: header}
}

func (s *FileSource) Validate() error {
	if s.Header == nil {
		return apperr.ErrValidation.New("文件不能为空")
	}
	if s.Header.Size > MaxPictureSize {
		return apperr.ErrValidation.New("文件大小不能超过 2M")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(s.Header.Filename), "."))
	if !isAllowedExt(ext) {
		return apperr.ErrValidation.New("文件类型错误")
	}
	return nil
}

func (s *FileSource) OriginalName() string {
	return filepath.Base(s.Header.Filename)
}

func (s *FileSource) Materialize(ctx context.Context) (string, func(), error) {
	src, err := s.Header.Open()
	if err != nil {
		return "", nil, apperr.ErrSystem.Wrap(err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "picture-upload-*")
	if err != nil {
		return "", nil, apperr.ErrSystem.Wrap(err)
	}
	cleanup := func() { removeTempFile(tmp.Name()) }

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, apperr.ErrSystem.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, apperr.ErrSystem.Wrap(err)
	}
	return tmp.Name(), cleanup, nil
}

func isAllowedExt(ext string) bool {
	for _, allowed := range allowedExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

func removeTempFile(path string) {
	// 临时文件删除失败只记录, 不影响主流程
	_ = os.Remove(path)
}
