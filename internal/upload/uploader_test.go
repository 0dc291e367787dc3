package upload

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcZhang717/picture/internal/apperr"
	"github.com/bcZhang717/picture/internal/storage"
)

type recordingStore struct {
	lastKey string
}

func (s *recordingStore) PutPicture(key string, localPath string) (*storage.PutResult, error) {
	s.lastKey = key
	return &storage.PutResult{Key: key, URL: "http://localhost:8080/uploads/" + key}, nil
}

func (s *recordingStore) Get(key string) ([]byte, error) { return nil, nil }

func (s *recordingStore) Delete(key string) error { return nil }

type stubSource struct {
	name        string
	validateErr error
}

func (s *stubSource) Validate() error { return s.validateErr }

func (s *stubSource) OriginalName() string { return s.name }

func (s *stubSource) Materialize(ctx context.Context) (string, func(), error) {
	return "", func() {}, nil
}

func TestUploaderKeyFormat(t *testing.T) {
	store := &recordingStore{}
	uploader := NewUploader(store)

	result, err := uploader.Upload(context.Background(), &stubSource{name: "黄山日出.png"}, "space/7")
	require.NoError(t, err)

	// {前缀}/{日期}_{10位随机串}.{后缀}
	assert.Regexp(t, regexp.MustCompile(`^space/7/\d{4}-\d{2}-\d{2}_[0-9a-f]{10}\.png$`), store.lastKey)
	assert.Equal(t, "黄山日出", result.PicName)
}

func TestUploaderDefaultSuffix(t *testing.T) {
	store := &recordingStore{}
	uploader := NewUploader(store)

	// url 来源可能没有文件后缀
	_, err := uploader.Upload(context.Background(), &stubSource{name: "photo"}, "/public/3/")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^public/3/\d{4}-\d{2}-\d{2}_[0-9a-f]{10}\.jpg$`), store.lastKey)
}

func TestUploaderValidateRejected(t *testing.T) {
	store := &recordingStore{}
	uploader := NewUploader(store)

	_, err := uploader.Upload(context.Background(), &stubSource{
		name:        "a.exe",
		validateErr: apperr.ErrValidation.New("文件类型错误"),
	}, "public/1")
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))
	assert.Empty(t, store.lastKey)
}
