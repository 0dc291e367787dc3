// internal/crawler/bing.go - 外部图片搜索源(页面抓取, 脆弱契约, 通过接口隔离)
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/bcZhang717/picture/internal/apperr"
)

// Crawler 按关键词抓取候选图片地址
type Crawler interface {
	FetchImageURLs(ctx context.Context, searchText string) ([]string, error)
}

// BingCrawler 从必应图片搜索的异步接口抓取结果页。
// 页面结构(.dgControl / .iusc / m 属性)是爬取约定, 不是稳定 API。
type BingCrawler struct {
	endpoint string
	client   *http.Client
}

func NewBingCrawler(endpoint string, timeout time.Duration) *BingCrawler {
	return &BingCrawler{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *BingCrawler) FetchImageURLs(ctx context.Context, searchText string) ([]string, error) {
	fetchURL := fmt.Sprintf("%s?q=%s&mmasync=1", c.endpoint, url.QueryEscape(searchText))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, apperr.ErrSystem.Wrap(err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		logrus.WithError(err).Error("获取页面失败")
		return nil, apperr.ErrOperation.New("获取页面失败")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.ErrOperation.New("获取页面失败")
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperr.ErrOperation.New("获取页面失败")
	}

	div := doc.Find(".dgControl").First()
	if div.Length() == 0 {
		return nil, apperr.ErrOperation.New("获取图片失败")
	}

	var urls []string
	div.Find(".iusc").Each(func(_ int, sel *goquery.Selection) {
		meta, ok := sel.Attr("m")
		if !ok {
			return
		}
		var payload struct {
			MURL string `json:"murl"`
		}
		if err := json.Unmarshal([]byte(meta), &payload); err != nil {
			return
		}
		fileURL := payload.MURL
		if fileURL == "" {
			logrus.Warn("图片地址为空, 跳过")
			return
		}
		// 去掉查询串, 防止转义或对象存储 key 冲突
		if idx := strings.Index(fileURL, "?"); idx > -1 {
			fileURL = fileURL[:idx]
		}
		urls = append(urls, fileURL)
	})
	return urls, nil
}

var _ Crawler = (*BingCrawler)(nil)
