package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcZhang717/picture/internal/apperr"
)

const resultPage = `<html><body>
<div class="dgControl">
  <a class="iusc" m='{"murl":"https://img.example.com/a.jpg?w=1920&amp;h=1080"}'></a>
  <a class="iusc" m='{"murl":"https://img.example.com/b.png"}'></a>
  <a class="iusc" m='{"murl":""}'></a>
  <a class="iusc" m='not-json'></a>
  <a class="iusc"></a>
</div>
</body></html>`

func TestFetchImageURLs(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, resultPage)
	}))
	defer server.Close()

	c := NewBingCrawler(server.URL, 5*time.Second)
	urls, err := c.FetchImageURLs(context.Background(), "黄山 日出")
	require.NoError(t, err)

	// 搜索词转义, 异步参数固定
	assert.Contains(t, gotQuery, "q=%E9%BB%84%E5%B1%B1+%E6%97%A5%E5%87%BA")
	assert.Contains(t, gotQuery, "mmasync=1")

	// 空地址和坏元数据跳过, 查询串剥掉
	assert.Equal(t, []string{
		"https://img.example.com/a.jpg",
		"https://img.example.com/b.png",
	}, urls)
}

func TestFetchImageURLsMissingContainer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>页面改版了</body></html>")
	}))
	defer server.Close()

	c := NewBingCrawler(server.URL, 5*time.Second)
	_, err := c.FetchImageURLs(context.Background(), "风景")
	require.Error(t, err)
	assert.True(t, apperr.ErrOperation.Has(err))
}

func TestFetchImageURLsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewBingCrawler(server.URL, 5*time.Second)
	_, err := c.FetchImageURLs(context.Background(), "风景")
	require.Error(t, err)
	assert.True(t, apperr.ErrOperation.Has(err))
}
