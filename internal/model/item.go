package model

import "time"

// Track はLast.fmの再生履歴1件を正規化したレコード。
type Track struct {
	Artist string    `json:"artist"`
	Title  string    `json:"title"`
	URL    string    `json:"url"`
	Date   time.Time `json:"date"`
}

// Book はGoodreadsの読書中ステータス1件を正規化したレコード。
// Authorsは常に1件以上の著者名を順序どおりに保持する。
type Book struct {
	Title   string    `json:"title"`
	Authors []string  `json:"authors"`
	URL     string    `json:"url"`
	Date    time.Time `json:"date"`
}

// Commit はGitHubのプッシュに含まれるコミット1件を正規化したレコード。
// Messageはコミットメッセージの1行目のみ。
type Commit struct {
	SHA     string    `json:"sha"`
	URL     string    `json:"url"`
	Message string    `json:"message"`
	Repo    string    `json:"repo"`
	Date    time.Time `json:"date"`
}

// Photo は写真ギャラリーの写真1件を正規化したレコード。
type Photo struct {
	URL    string    `json:"url"`
	Title  string    `json:"title"`
	Date   time.Time `json:"date"`
	Camera string    `json:"camera"`
}
