// internal/storage/local.go - 本地磁盘对象存储实现
package storage

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	// 注册图片解码器
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/bcZhang717/picture/internal/apperr"
)

// 超过该大小才生成缩略图
const thumbnailThreshold = 3 * 1024

// 缩略图最大边长(只缩小, 不放大)
const thumbnailBound = 256

type LocalStore struct {
	rootDir string
	baseURL string
}

func NewLocalStore(rootDir, baseURL string) *LocalStore {
	return &LocalStore{
		rootDir: rootDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// PutPicture 处理并保存图片。
// 解析原图信息(宽高/格式/主色调), 生成 JPEG 压缩图,
// 原图超过阈值时额外生成 256x256 内的缩略图。
func (s *LocalStore) PutPicture(key string, localPath string) (*PutResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, apperr.ErrValidation.New("图片解析失败")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if height == 0 {
		return nil, apperr.ErrValidation.New("图片高度非法")
	}
	scale := math.Round(float64(width)/float64(height)*100) / 100

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}

	// 压缩图: 格式归一化为 JPEG
	compressKey := mainName(key) + ".jpg"
	if err := s.save(img, compressKey); err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	compressInfo, err := os.Stat(s.path(compressKey))
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}

	result := &PutResult{
		Key:       compressKey,
		URL:       s.url(compressKey),
		PicSize:   compressInfo.Size(),
		PicWidth:  width,
		PicHeight: height,
		PicScale:  scale,
		PicFormat: format,
		PicColor:  averageColor(img),
	}

	// 缩略图: 仅对超过阈值的图片生成, 且只缩小不放大
	if info.Size() > thumbnailThreshold {
		thumbnailKey := mainName(key) + "_thumbnail.jpg"
		thumbnail := imaging.Fit(img, thumbnailBound, thumbnailBound, imaging.Lanczos)
		if err := s.save(thumbnail, thumbnailKey); err != nil {
			return nil, apperr.ErrSystem.Wrap(err)
		}
		result.ThumbnailKey = thumbnailKey
		result.ThumbnailURL = s.url(thumbnailKey)
	} else {
		// 没有缩略图时退化为压缩图
		result.ThumbnailURL = result.URL
	}

	return result, nil
}

func (s *LocalStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	return data, nil
}

// Delete 删除对象, 对象不存在不视为错误
func (s *LocalStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return apperr.ErrSystem.Wrap(err)
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.rootDir, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}

func (s *LocalStore) url(key string) string {
	return s.baseURL + "/" + strings.TrimPrefix(key, "/")
}

func (s *LocalStore) save(img image.Image, key string) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return imaging.Save(img, path, imaging.JPEGQuality(85))
}

// mainName 去掉 key 的扩展名
func mainName(key string) string {
	ext := filepath.Ext(key)
	return strings.TrimSuffix(key, ext)
}

// averageColor 计算平均色作为主色调, 按步长采样避免逐像素扫描大图
func averageColor(img image.Image) string {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return ""
	}
	step := (width*height)/10000 + 1
	stride := int(math.Sqrt(float64(step)))
	if stride < 1 {
		stride = 1
	}

	var rSum, gSum, bSum, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			r, g, b, _ := img.At(x, y).RGBA()
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
			n++
		}
	}
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("#%02X%02X%02X", uint8(rSum/n), uint8(gSum/n), uint8(bSum/n))
}

var _ ObjectStore = (*LocalStore)(nil)
