package storage

import (
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcZhang717/picture/internal/apperr"
)

// writeTestPNG 生成测试 PNG。noise 为真时填充随机噪点撑大文件。
func writeTestPNG(t *testing.T, width, height int, noise bool) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if noise {
				img.Set(x, y, color.RGBA{
					R: uint8(rng.Intn(256)),
					G: uint8(rng.Intn(256)),
					B: uint8(rng.Intn(256)),
					A: 255,
				})
			} else {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			}
		}
	}

	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestPutPictureLargeImage(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads/")

	src := writeTestPNG(t, 400, 200, true)
	result, err := store.PutPicture("space/1/2026-08-29_abcdef0123.png", src)
	require.NoError(t, err)

	assert.Equal(t, 400, result.PicWidth)
	assert.Equal(t, 200, result.PicHeight)
	assert.Equal(t, 2.0, result.PicScale)
	assert.Equal(t, "png", result.PicFormat)
	assert.Greater(t, result.PicSize, int64(0))
	assert.Regexp(t, `^#[0-9A-F]{6}$`, result.PicColor)

	// 压缩图归一化为 jpg
	assert.Equal(t, "space/1/2026-08-29_abcdef0123.jpg", result.Key)
	assert.Equal(t, "http://localhost:8080/uploads/space/1/2026-08-29_abcdef0123.jpg", result.URL)
	_, err = store.Get(result.Key)
	require.NoError(t, err)

	// 噪点图远超阈值, 应有独立缩略图
	assert.Equal(t, "space/1/2026-08-29_abcdef0123_thumbnail.jpg", result.ThumbnailKey)
	assert.NotEqual(t, result.URL, result.ThumbnailURL)
	data, err := store.Get(result.ThumbnailKey)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestPutPictureSmallImageNoThumbnail(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")

	// 单色小图在阈值以下
	src := writeTestPNG(t, 10, 10, false)
	result, err := store.PutPicture("public/1/2026-08-29_abcdef0123.png", src)
	require.NoError(t, err)

	assert.Empty(t, result.ThumbnailKey)
	// 缩略图地址退化为压缩图地址
	assert.Equal(t, result.URL, result.ThumbnailURL)
}

func TestPutPictureAverageColor(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")

	// 纯红图的平均色就是红色
	src := writeTestPNG(t, 20, 20, false)
	result, err := store.PutPicture("public/1/red.png", src)
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", result.PicColor)
}

func TestPutPictureRejectsNonImage(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")

	path := filepath.Join(t.TempDir(), "not-an-image.jpg")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err := store.PutPicture("public/1/a.jpg", path)
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))
}

func TestDeleteMissingObject(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	assert.NoError(t, store.Delete("public/1/ghost.jpg"))
}
