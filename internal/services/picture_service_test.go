package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bcZhang717/picture/internal/apperr"
	"github.com/bcZhang717/picture/internal/models"
	"github.com/bcZhang717/picture/internal/storage"
	"github.com/bcZhang717/picture/internal/upload"
)

const testBaseURL = "http://localhost:8080/uploads"

// fakeStore 不做真实图片处理, 返回可配置的处理结果
type fakeStore struct {
	mu      sync.Mutex
	size    int64
	color   string
	deleted []string
}

func (s *fakeStore) PutPicture(key string, localPath string) (*storage.PutResult, error) {
	return &storage.PutResult{
		Key:          key,
		URL:          testBaseURL + "/" + key,
		ThumbnailURL: testBaseURL + "/" + key + "_thumbnail.jpg",
		PicSize:      s.size,
		PicWidth:     800,
		PicHeight:    600,
		PicScale:     1.33,
		PicFormat:    "jpeg",
		PicColor:     s.color,
	}, nil
}

func (s *fakeStore) Get(key string) ([]byte, error) { return nil, nil }

func (s *fakeStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// fakeSource 免文件的上传来源
type fakeSource struct {
	name string
}

func (s *fakeSource) Validate() error { return nil }

func (s *fakeSource) OriginalName() string { return s.name }

func (s *fakeSource) Materialize(ctx context.Context) (string, func(), error) {
	return "", func() {}, nil
}

type fakeCrawler struct {
	urls []string
	err  error
}

func (c *fakeCrawler) FetchImageURLs(ctx context.Context, searchText string) ([]string, error) {
	return c.urls, c.err
}

func newTestPictureService(t *testing.T, db *gorm.DB, store *fakeStore, c *fakeCrawler) (*PictureService, *SpaceService) {
	t.Helper()
	resolver := newTestResolver(t, db)
	spaceService := NewSpaceService(db, resolver)
	if c == nil {
		c = &fakeCrawler{}
	}
	pictureService := NewPictureService(db, upload.NewUploader(store), store, c, resolver, spaceService, testBaseURL)
	return pictureService, spaceService
}

func TestUploadPicturePublicPool(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 1000, color: "0000FF"}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)

	vo, err := service.UploadPicture(context.Background(), &fakeSource{name: "风景照.jpg"}, &models.PictureUploadRequest{}, user)
	require.NoError(t, err)

	assert.Nil(t, vo.SpaceID)
	assert.Equal(t, "风景照", vo.Name)
	assert.Equal(t, int64(1000), vo.PicSize)
	// 主色调统一为 #RRGGBB
	require.NotNil(t, vo.PicColor)
	assert.Equal(t, "#0000FF", *vo.PicColor)
	// 普通用户上传后待审核
	assert.Equal(t, models.ReviewStatusReviewing, vo.ReviewStatus)
}

func TestUploadPictureAdminAutoPass(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 1000}
	service, _ := newTestPictureService(t, db, store, nil)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)

	vo, err := service.UploadPicture(context.Background(), &fakeSource{name: "a.jpg"}, &models.PictureUploadRequest{PicName: "自定义名称"}, admin)
	require.NoError(t, err)

	assert.Equal(t, "自定义名称", vo.Name)
	assert.Equal(t, models.ReviewStatusPass, vo.ReviewStatus)
}

func TestUploadPictureIntoSpaceReservesQuota(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 2048}
	service, spaceService := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)

	space, err := spaceService.AddSpace(&models.SpaceAddRequest{SpaceType: models.SpaceTypePrivate}, user)
	require.NoError(t, err)

	vo, err := service.UploadPicture(context.Background(), &fakeSource{name: "a.jpg"}, &models.PictureUploadRequest{SpaceID: &space.ID}, user)
	require.NoError(t, err)
	require.NotNil(t, vo.SpaceID)

	var got models.Space
	require.NoError(t, db.First(&got, space.ID).Error)
	assert.Equal(t, int64(1), got.UsedCount)
	assert.Equal(t, int64(2048), got.UsedSize)
}

func TestUploadPictureQuotaExceededLeavesNoRow(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 2048}
	service, spaceService := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)

	space, err := spaceService.AddSpace(&models.SpaceAddRequest{SpaceType: models.SpaceTypePrivate}, user)
	require.NoError(t, err)
	// 额度小于一张图片的大小, 预检能通过但占用会失败
	require.NoError(t, db.Model(&models.Space{}).Where("id = ?", space.ID).Update("max_size", 1024).Error)

	_, err = service.UploadPicture(context.Background(), &fakeSource{name: "a.jpg"}, &models.PictureUploadRequest{SpaceID: &space.ID}, user)
	require.Error(t, err)
	assert.True(t, apperr.ErrQuotaExceeded.Has(err))

	// 失败的上传不留图片行, 账本不变
	var count int64
	require.NoError(t, db.Model(&models.Picture{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var got models.Space
	require.NoError(t, db.First(&got, space.ID).Error)
	assert.Equal(t, int64(0), got.UsedCount)
	assert.Equal(t, int64(0), got.UsedSize)
}

func TestUploadPictureUpdateAdjustsSizeDelta(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 1000}
	service, spaceService := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)

	space, err := spaceService.AddSpace(&models.SpaceAddRequest{SpaceType: models.SpaceTypePrivate}, user)
	require.NoError(t, err)

	vo, err := service.UploadPicture(context.Background(), &fakeSource{name: "a.jpg"}, &models.PictureUploadRequest{SpaceID: &space.ID}, user)
	require.NoError(t, err)

	// 重新上传同一条记录, 文件变大
	store.size = 2500
	updated, err := service.UploadPicture(context.Background(), &fakeSource{name: "b.jpg"}, &models.PictureUploadRequest{ID: vo.ID, SpaceID: &space.ID}, user)
	require.NoError(t, err)
	assert.Equal(t, vo.ID, updated.ID)
	assert.Equal(t, int64(2500), updated.PicSize)

	// 数量不变, 大小按差值调整
	var got models.Space
	require.NoError(t, db.First(&got, space.ID).Error)
	assert.Equal(t, int64(1), got.UsedCount)
	assert.Equal(t, int64(2500), got.UsedSize)
}

func TestUploadPictureUpdateSpaceMismatch(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 1000}
	service, spaceService := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)

	space1, err := spaceService.AddSpace(&models.SpaceAddRequest{SpaceType: models.SpaceTypePrivate}, user)
	require.NoError(t, err)
	space2, err := spaceService.AddSpace(&models.SpaceAddRequest{SpaceType: models.SpaceTypePrivate}, admin)
	require.NoError(t, err)

	vo, err := service.UploadPicture(context.Background(), &fakeSource{name: "a.jpg"}, &models.PictureUploadRequest{SpaceID: &space1.ID}, user)
	require.NoError(t, err)

	_, err = service.UploadPicture(context.Background(), &fakeSource{name: "b.jpg"}, &models.PictureUploadRequest{ID: vo.ID, SpaceID: &space2.ID}, admin)
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))
}

func TestUploadPictureSpacePermissionDenied(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 1000}
	service, spaceService := newTestPictureService(t, db, store, nil)
	owner := createTestUser(t, db, "owner", models.UserRoleUser)
	other := createTestUser(t, db, "other", models.UserRoleUser)

	space, err := spaceService.AddSpace(&models.SpaceAddRequest{SpaceType: models.SpaceTypePrivate}, owner)
	require.NoError(t, err)

	_, err = service.UploadPicture(context.Background(), &fakeSource{name: "a.jpg"}, &models.PictureUploadRequest{SpaceID: &space.ID}, other)
	require.Error(t, err)
	assert.True(t, apperr.ErrNoAuth.Has(err))
}

func TestDeletePictureReleasesQuota(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 1500}
	service, spaceService := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)

	space, err := spaceService.AddSpace(&models.SpaceAddRequest{SpaceType: models.SpaceTypePrivate}, user)
	require.NoError(t, err)

	vo, err := service.UploadPicture(context.Background(), &fakeSource{name: "a.jpg"}, &models.PictureUploadRequest{SpaceID: &space.ID}, user)
	require.NoError(t, err)

	require.NoError(t, service.DeletePicture(vo.ID, user))

	var count int64
	require.NoError(t, db.Model(&models.Picture{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var got models.Space
	require.NoError(t, db.First(&got, space.ID).Error)
	assert.Equal(t, int64(0), got.UsedCount)
	assert.Equal(t, int64(0), got.UsedSize)
}

func TestDeletePicturePermissionDenied(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 1000}
	service, _ := newTestPictureService(t, db, store, nil)
	owner := createTestUser(t, db, "owner", models.UserRoleUser)
	other := createTestUser(t, db, "other", models.UserRoleUser)

	picture := createTestPicture(t, db, owner.ID, nil, 1000)

	err := service.DeletePicture(picture.ID, other)
	require.Error(t, err)
	assert.True(t, apperr.ErrNoAuth.Has(err))
}

func TestCleanupPictureObjectsRefCounted(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)

	shared := testBaseURL + "/public/1/2026-08-29_abc.jpg"
	p1 := createTestPicture(t, db, user.ID, nil, 100)
	p2 := createTestPicture(t, db, user.ID, nil, 200)
	require.NoError(t, db.Model(&models.Picture{}).Where("id IN ?", []uint{p1.ID, p2.ID}).Update("url", shared).Error)
	p1.URL = shared
	p2.URL = shared
	p1.ThumbnailURL = shared + "_thumbnail.jpg"

	// 还有一条记录引用同一对象, 不清理
	require.NoError(t, db.Delete(&models.Picture{}, p1.ID).Error)
	service.cleanupPictureObjects(*p1)
	assert.Empty(t, store.deletedKeys())

	// 最后一条引用删除后才清理原图和缩略图
	require.NoError(t, db.Delete(&models.Picture{}, p2.ID).Error)
	service.cleanupPictureObjects(*p1)
	assert.ElementsMatch(t, []string{
		"public/1/2026-08-29_abc.jpg",
		"public/1/2026-08-29_abc.jpg_thumbnail.jpg",
	}, store.deletedKeys())
}

func TestEditPictureResetsReview(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)

	picture := createTestPicture(t, db, user.ID, nil, 100)

	vo, err := service.EditPicture(&models.PictureEditRequest{
		ID:           picture.ID,
		Name:         "新名字",
		Introduction: "一段简介",
		Category:     "风景",
		Tags:         []string{"山", "水"},
	}, user)
	require.NoError(t, err)

	assert.Equal(t, "新名字", vo.Name)
	assert.Equal(t, "风景", vo.Category)
	assert.Equal(t, []string{"山", "水"}, vo.Tags)
	// 普通用户编辑后回到待审核
	assert.Equal(t, models.ReviewStatusReviewing, vo.ReviewStatus)
	assert.NotNil(t, vo.EditTime)
}

func TestEditPictureByBatchSeqRename(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)
	space := createTestSpace(t, db, user, models.SpaceTypePrivate)

	var ids []uint
	for i := 0; i < 3; i++ {
		p := createTestPicture(t, db, user.ID, &space.ID, int64(100+i))
		ids = append(ids, p.ID)
	}

	err := service.EditPictureByBatch(&models.PictureEditByBatchRequest{
		PictureIDs: ids,
		SpaceID:    space.ID,
		Category:   "作品集",
		Tags:       []string{"精选"},
		NameRule:   "作品-{seq}",
	}, user)
	require.NoError(t, err)

	var pictures []models.Picture
	require.NoError(t, db.Where("space_id = ?", space.ID).Order("id").Find(&pictures).Error)
	require.Len(t, pictures, 3)
	assert.Equal(t, "作品-1", pictures[0].Name)
	assert.Equal(t, "作品-2", pictures[1].Name)
	assert.Equal(t, "作品-3", pictures[2].Name)
	for _, p := range pictures {
		assert.Equal(t, "作品集", p.Category)
		assert.Equal(t, []string{"精选"}, p.TagList())
	}
}

func TestDoPictureReview(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)

	picture := createTestPicture(t, db, user.ID, nil, 100)
	require.NoError(t, db.Model(picture).Update("review_status", models.ReviewStatusReviewing).Error)

	// 非管理员拒绝
	err := service.DoPictureReview(&models.PictureReviewRequest{ID: picture.ID, ReviewStatus: models.ReviewStatusPass}, user)
	require.Error(t, err)
	assert.True(t, apperr.ErrNoAuth.Has(err))

	// 目标状态不能是待审核
	err = service.DoPictureReview(&models.PictureReviewRequest{ID: picture.ID, ReviewStatus: models.ReviewStatusReviewing}, admin)
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))

	require.NoError(t, service.DoPictureReview(&models.PictureReviewRequest{ID: picture.ID, ReviewStatus: models.ReviewStatusPass, ReviewMsg: "通过"}, admin))

	var got models.Picture
	require.NoError(t, db.First(&got, picture.ID).Error)
	assert.Equal(t, models.ReviewStatusPass, got.ReviewStatus)
	assert.Equal(t, "通过", got.ReviewMsg)
	require.NotNil(t, got.ReviewerID)
	assert.Equal(t, admin.ID, *got.ReviewerID)
	assert.NotNil(t, got.ReviewTime)

	// 重复审核同一状态
	err = service.DoPictureReview(&models.PictureReviewRequest{ID: picture.ID, ReviewStatus: models.ReviewStatusPass}, admin)
	require.Error(t, err)
	assert.True(t, apperr.ErrOperation.Has(err))
}

func TestSearchPictureByColorRanking(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)
	space := createTestSpace(t, db, user, models.SpaceTypePrivate)

	setColor := func(p *models.Picture, color string) {
		require.NoError(t, db.Model(p).Update("pic_color", color).Error)
	}
	exact := createTestPicture(t, db, user.ID, &space.ID, 1)
	setColor(exact, "#FF0000")
	near := createTestPicture(t, db, user.ID, &space.ID, 2)
	setColor(near, "#EE0000")
	far := createTestPicture(t, db, user.ID, &space.ID, 3)
	setColor(far, "#00FF00")
	broken := createTestPicture(t, db, user.ID, &space.ID, 4)
	setColor(broken, "not-a-color")
	// 无主色调的图片不参与搜索
	createTestPicture(t, db, user.ID, &space.ID, 5)

	vos, err := service.SearchPictureByColor(space.ID, "#FF0000", user)
	require.NoError(t, err)
	require.Len(t, vos, 4)
	assert.Equal(t, exact.ID, vos[0].ID)
	assert.Equal(t, near.ID, vos[1].ID)
	assert.Equal(t, far.ID, vos[2].ID)
	// 无法解析的主色调排在最后
	assert.Equal(t, broken.ID, vos[3].ID)
}

func TestSearchPictureByColorLimit(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)
	space := createTestSpace(t, db, user, models.SpaceTypePrivate)

	for i := 0; i < 15; i++ {
		p := createTestPicture(t, db, user.ID, &space.ID, int64(i))
		require.NoError(t, db.Model(p).Update("pic_color", "#123456").Error)
	}

	vos, err := service.SearchPictureByColor(space.ID, "#123456", user)
	require.NoError(t, err)
	assert.Len(t, vos, 12)
}

func TestSearchPictureByColorAuth(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	owner := createTestUser(t, db, "owner", models.UserRoleUser)
	other := createTestUser(t, db, "other", models.UserRoleUser)
	space := createTestSpace(t, db, owner, models.SpaceTypePrivate)

	_, err := service.SearchPictureByColor(space.ID, "#FF0000", other)
	require.Error(t, err)
	assert.True(t, apperr.ErrNoAuth.Has(err))

	_, err = service.SearchPictureByColor(space.ID, "红色", owner)
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))
}

func TestUploadPictureByBatchBestEffort(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{size: 100}
	user := createTestUser(t, db, "admin", models.UserRoleAdmin)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("fake image bytes"))
	}))
	defer server.Close()

	crawler := &fakeCrawler{urls: []string{
		server.URL + "/a.jpg",
		server.URL + "/broken.jpg",
		server.URL + "/b.jpg",
		server.URL + "/c.jpg",
	}}
	service, _ := newTestPictureService(t, db, store, crawler)

	count, err := service.UploadPictureByBatch(context.Background(), &models.PictureUploadByBatchRequest{
		SearchText: "风景",
		Count:      3,
		NamePrefix: "风景",
	}, user)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var names []string
	require.NoError(t, db.Model(&models.Picture{}).Order("id").Pluck("name", &names).Error)
	assert.Equal(t, []string{"风景1", "风景2", "风景3"}, names)
}

func TestUploadPictureByBatchCountCap(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "admin", models.UserRoleAdmin)

	_, err := service.UploadPictureByBatch(context.Background(), &models.PictureUploadByBatchRequest{
		SearchText: "风景",
		Count:      31,
	}, user)
	require.Error(t, err)
	assert.True(t, apperr.ErrValidation.Has(err))
}

func TestListPicturesPublicVisibility(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)

	passed := createTestPicture(t, db, user.ID, nil, 100)
	pending := createTestPicture(t, db, user.ID, nil, 200)
	require.NoError(t, db.Model(pending).Update("review_status", models.ReviewStatusReviewing).Error)

	req := &models.PictureListRequest{Page: 1, Limit: 10}

	// 匿名和普通用户只能看到审核通过的
	vos, pagination, err := service.ListPictures(req, nil)
	require.NoError(t, err)
	require.Len(t, vos, 1)
	assert.Equal(t, passed.ID, vos[0].ID)
	assert.Equal(t, int64(1), pagination.Total)

	vos, _, err = service.ListPictures(req, user)
	require.NoError(t, err)
	assert.Len(t, vos, 1)

	// 管理员能看到全部
	vos, _, err = service.ListPictures(req, admin)
	require.NoError(t, err)
	assert.Len(t, vos, 2)
}

func TestListPicturesNullSpaceID(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)
	space := createTestSpace(t, db, user, models.SpaceTypePrivate)

	public := createTestPicture(t, db, user.ID, nil, 100)
	createTestPicture(t, db, user.ID, &space.ID, 200)

	// 管理员默认跨空间查看全部图片
	vos, _, err := service.ListPictures(&models.PictureListRequest{Page: 1, Limit: 10}, admin)
	require.NoError(t, err)
	assert.Len(t, vos, 2)

	// null_space_id 限定为公共图库
	vos, _, err = service.ListPictures(&models.PictureListRequest{Page: 1, Limit: 10, NullSpaceID: true}, admin)
	require.NoError(t, err)
	require.Len(t, vos, 1)
	assert.Equal(t, public.ID, vos[0].ID)

	// 普通用户不受该参数影响, 始终只看公共图库
	vos, _, err = service.ListPictures(&models.PictureListRequest{Page: 1, Limit: 10}, user)
	require.NoError(t, err)
	require.Len(t, vos, 1)
	assert.Equal(t, public.ID, vos[0].ID)
}

func TestListPicturesFilters(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)

	p1 := createTestPicture(t, db, user.ID, nil, 100)
	require.NoError(t, db.Model(p1).Updates(map[string]interface{}{
		"name": "黄山日出", "category": "风景", "tags": models.TagsToJSON([]string{"山", "日出"}),
	}).Error)
	p2 := createTestPicture(t, db, user.ID, nil, 200)
	require.NoError(t, db.Model(p2).Updates(map[string]interface{}{
		"name": "城市夜景", "category": "城市",
	}).Error)

	vos, _, err := service.ListPictures(&models.PictureListRequest{Page: 1, Limit: 10, SearchText: "日出"}, user)
	require.NoError(t, err)
	require.Len(t, vos, 1)
	assert.Equal(t, p1.ID, vos[0].ID)

	vos, _, err = service.ListPictures(&models.PictureListRequest{Page: 1, Limit: 10, Category: "城市"}, user)
	require.NoError(t, err)
	require.Len(t, vos, 1)
	assert.Equal(t, p2.ID, vos[0].ID)

	vos, _, err = service.ListPictures(&models.PictureListRequest{Page: 1, Limit: 10, Tags: []string{"山"}}, user)
	require.NoError(t, err)
	require.Len(t, vos, 1)
	assert.Equal(t, p1.ID, vos[0].ID)
}

func TestListPicturesSpacePermission(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	owner := createTestUser(t, db, "owner", models.UserRoleUser)
	other := createTestUser(t, db, "other", models.UserRoleUser)
	space := createTestSpace(t, db, owner, models.SpaceTypePrivate)
	createTestPicture(t, db, owner.ID, &space.ID, 100)

	_, _, err := service.ListPictures(&models.PictureListRequest{Page: 1, Limit: 10, SpaceID: &space.ID}, other)
	require.Error(t, err)
	assert.True(t, apperr.ErrNoAuth.Has(err))

	vos, _, err := service.ListPictures(&models.PictureListRequest{Page: 1, Limit: 10, SpaceID: &space.ID}, owner)
	require.NoError(t, err)
	assert.Len(t, vos, 1)
}

func TestListTagCategory(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	user := createTestUser(t, db, "zhangsan", models.UserRoleUser)

	p1 := createTestPicture(t, db, user.ID, nil, 100)
	require.NoError(t, db.Model(p1).Updates(map[string]interface{}{
		"category": "风景", "tags": models.TagsToJSON([]string{"山", "水"}),
	}).Error)
	p2 := createTestPicture(t, db, user.ID, nil, 200)
	require.NoError(t, db.Model(p2).Updates(map[string]interface{}{
		"category": "人物", "tags": models.TagsToJSON([]string{"山"}),
	}).Error)

	result, err := service.ListTagCategory()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"风景", "人物"}, result.CategoryList)
	assert.ElementsMatch(t, []string{"山", "水"}, result.TagList)
}

func TestGetPictureVOSpacePermission(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	service, _ := newTestPictureService(t, db, store, nil)
	owner := createTestUser(t, db, "owner", models.UserRoleUser)
	other := createTestUser(t, db, "other", models.UserRoleUser)
	space := createTestSpace(t, db, owner, models.SpaceTypePrivate)
	picture := createTestPicture(t, db, owner.ID, &space.ID, 100)

	_, err := service.GetPictureVO(picture.ID, other)
	require.Error(t, err)
	assert.True(t, apperr.ErrNoAuth.Has(err))

	vo, err := service.GetPictureVO(picture.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, picture.ID, vo.ID)
}
