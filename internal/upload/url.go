// internal/upload/url.go - 远程 URL 上传来源
package upload

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/bcZhang717/picture/internal/apperr"
)

// 允许的远程图片 Content-Type
var allowedContentTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

// URLSource 远程 URL 上传来源。
// 先做 HEAD 探测(类型/大小), 服务端不支持 HEAD 或未携带对应头时放行。
type URLSource struct {
	FileURL string
	Client  *http.Client
}

func NewURLSource(fileURL string) *URLSource {
	return &URLSource{
		FileURL: fileURL,
		// 网络抓取不允许无限阻塞
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *URLSource) Validate() error {
	if s.FileURL == "" {
		return apperr.ErrValidation.New("图片 url 不能为空")
	}
	u, err := url.Parse(s.FileURL)
	if err != nil || !u.IsAbs() {
		return apperr.ErrValidation.New("文件地址格式不正确")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apperr.ErrValidation.New("文件地址格式不支持")
	}

	// HEAD 探测: 失败或非 200 视为未知, 放行
	resp, err := s.Client.Head(s.FileURL)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		if !isAllowedContentType(contentType) {
			return apperr.ErrValidation.New("文件类型错误")
		}
	}
	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		size, err := strconv.ParseInt(contentLength, 10, 64)
		if err != nil {
			return apperr.ErrValidation.New("文件大小格式错误")
		}
		if size > MaxPictureSize {
			return apperr.ErrValidation.New("文件大小不能超过 2M")
		}
	}
	return nil
}

func (s *URLSource) OriginalName() string {
	u, err := url.Parse(s.FileURL)
	if err != nil {
		return path.Base(s.FileURL)
	}
	return path.Base(u.Path)
}

func (s *URLSource) Materialize(ctx context.Context) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.FileURL, nil)
	if err != nil {
		return "", nil, apperr.ErrSystem.Wrap(err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", nil, apperr.ErrSystem.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, apperr.ErrSystem.New("下载图片失败: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "picture-upload-*")
	if err != nil {
		return "", nil, apperr.ErrSystem.Wrap(err)
	}
	cleanup := func() { removeTempFile(tmp.Name()) }

	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, MaxPictureSize+1)); err != nil {
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

func isAllowedContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	// 忽略 charset 等附加参数
	if idx := strings.Index(ct, ";"); idx > -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	for _, allowed := range allowedContentTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}
