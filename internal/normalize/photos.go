package normalize

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/urdh/homepage/internal/model"
)

// indexSuffixes はURL末尾から取り除くディレクトリインデックスのファイル名。
var indexSuffixes = []string{"index.html", "index.htm"}

// TextCleaner はHTMLを含みうる文字列をプレーンテキストにする。
type TextCleaner interface {
	PlainText(raw string) string
}

// PhotoRecord は写真ギャラリーのphotos.jsonの1要素。
type PhotoRecord struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Camera string `json:"camera"`
}

// Photos はphotos.jsonの各要素をPhotoに1対1で変換する。
// dateがない場合はnowを使う。urlのない要素は破棄する。
func Photos(records Records[PhotoRecord], now time.Time, cleaner TextCleaner) ([]model.Photo, int) {
	dropped := records.Invalid
	photos := make([]model.Photo, 0, len(records.Items))

	for _, r := range records.Items {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			dropped++
			continue
		}

		date, ok := parseTime(r.Date)
		if !ok {
			date = now.UTC()
		}

		photos = append(photos, model.Photo{
			URL:    StripIndexSuffix(url),
			Title:  cleaner.PlainText(r.Title),
			Date:   date,
			Camera: strings.TrimSpace(r.Camera),
		})
	}

	return photos, dropped
}

// PhotosFromFeed はRSS/Atom形式のギャラリーフィードの各アイテムをPhotoに変換する。
// cameraはアイテムの独自要素<camera>から取得する。
func PhotosFromFeed(feed *gofeed.Feed, now time.Time, cleaner TextCleaner) ([]model.Photo, int) {
	photos := make([]model.Photo, 0)
	if feed == nil {
		return photos, 0
	}

	dropped := 0
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			dropped++
			continue
		}

		date := now.UTC()
		switch {
		case item.PublishedParsed != nil:
			date = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			date = item.UpdatedParsed.UTC()
		}

		photos = append(photos, model.Photo{
			URL:    StripIndexSuffix(strings.TrimSpace(item.Link)),
			Title:  cleaner.PlainText(item.Title),
			Date:   date,
			Camera: strings.TrimSpace(item.Custom["camera"]),
		})
	}

	return photos, dropped
}

// StripIndexSuffix はURL末尾のindex.html（またはindex.htm）を取り除く。
func StripIndexSuffix(url string) string {
	for _, suffix := range indexSuffixes {
		if strings.HasSuffix(url, suffix) {
			return strings.TrimSuffix(url, suffix)
		}
	}
	return url
}
