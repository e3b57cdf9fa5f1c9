package normalize

import (
	"encoding/xml"
	"slices"
	"strings"

	"github.com/urdh/homepage/internal/model"
)

const (
	goodreadsUpdateReadStatus = "readstatus"
	goodreadsCurrentlyReading = "currently-reading"
	goodreadsBookURL          = "https://www.goodreads.com/book/show/"
)

// GoodreadsResponse はuser/show/{id}.xml のレスポンスのうち更新ストリーム部分。
type GoodreadsResponse struct {
	XMLName xml.Name          `xml:"GoodreadsResponse"`
	Updates []GoodreadsUpdate `xml:"user>updates>update"`
}

// GoodreadsUpdate は更新ストリームの1件。
type GoodreadsUpdate struct {
	Type       string               `xml:"type,attr"`
	ReadStatus *GoodreadsReadStatus `xml:"object>read_status"`
}

// GoodreadsReadStatus は読書ステータス更新。
type GoodreadsReadStatus struct {
	Status string           `xml:"status"`
	Review *GoodreadsReview `xml:"review"`
}

// GoodreadsReview は読書ステータスに紐づくレビュー。
type GoodreadsReview struct {
	CreatedAt string         `xml:"created_at"`
	Book      *GoodreadsBook `xml:"book"`
}

// GoodreadsBook はレビュー対象の本。
// 著者は<author>の直接の並びと<authors><author>の入れ子のどちらでも現れる。
type GoodreadsBook struct {
	ID          string            `xml:"id"`
	Title       string            `xml:"title"`
	Authors     []GoodreadsAuthor `xml:"author"`
	AuthorsList []GoodreadsAuthor `xml:"authors>author"`
}

// GoodreadsAuthor は著者。
type GoodreadsAuthor struct {
	Name string `xml:"name"`
}

// Books は更新ストリームから「読書中」への読書ステータス更新のみを抽出してBookに変換する。
func Books(payload GoodreadsResponse) ([]model.Book, int) {
	books := make([]model.Book, 0)
	dropped := 0

	for _, u := range payload.Updates {
		if u.Type != goodreadsUpdateReadStatus {
			continue
		}
		if u.ReadStatus == nil {
			dropped++
			continue
		}
		if strings.TrimSpace(u.ReadStatus.Status) != goodreadsCurrentlyReading {
			continue
		}

		book, ok := convertReview(u.ReadStatus.Review)
		if !ok {
			dropped++
			continue
		}
		books = append(books, book)
	}

	return books, dropped
}

func convertReview(review *GoodreadsReview) (model.Book, bool) {
	if review == nil || review.Book == nil {
		return model.Book{}, false
	}

	title := strings.TrimSpace(review.Book.Title)
	id := strings.TrimSpace(review.Book.ID)
	if title == "" || id == "" {
		return model.Book{}, false
	}

	all := slices.Concat(review.Book.Authors, review.Book.AuthorsList)
	authors := make([]string, 0, len(all))
	for _, a := range all {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) == 0 {
		return model.Book{}, false
	}

	date, ok := parseTime(review.CreatedAt)
	if !ok {
		return model.Book{}, false
	}

	return model.Book{
		Title:   title,
		Authors: authors,
		URL:     goodreadsBookURL + id,
		Date:    date,
	}, true
}
