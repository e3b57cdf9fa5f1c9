package model

import "fmt"

// FeedKind はプロキシが公開するフィードの種類を表す。
// 固定の4種類のみで、実行時に増減しない。
type FeedKind string

const (
	// FeedKindTracks はLast.fmの最近再生したトラック。
	FeedKindTracks FeedKind = "tracks"
	// FeedKindCurrentlyReading はGoodreadsで読書中の本。
	FeedKindCurrentlyReading FeedKind = "currently-reading"
	// FeedKindCommits はGitHubの最近のコミット。
	FeedKindCommits FeedKind = "commits"
	// FeedKindPhotos は写真ギャラリーの最近の写真。
	FeedKindPhotos FeedKind = "photos"
)

// AllFeedKinds は全FeedKindを定義順に返す。
func AllFeedKinds() []FeedKind {
	return []FeedKind{
		FeedKindTracks,
		FeedKindCurrentlyReading,
		FeedKindCommits,
		FeedKindPhotos,
	}
}

// ParseFeedKind は文字列をFeedKindに変換する。
// 未知の文字列の場合はエラーを返す。
func ParseFeedKind(s string) (FeedKind, error) {
	for _, k := range AllFeedKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown feed kind: %q", s)
}

// Path はFeedKindに対応するリクエストパスを返す。
func (k FeedKind) Path() string {
	switch k {
	case FeedKindTracks:
		return "/recent-tracks.json"
	case FeedKindCurrentlyReading:
		return "/currently-reading.json"
	case FeedKindCommits:
		return "/recent-commits.json"
	case FeedKindPhotos:
		return "/recent-photos.json"
	default:
		return ""
	}
}

// String はFeedKindの名前を返す。
func (k FeedKind) String() string {
	return string(k)
}
