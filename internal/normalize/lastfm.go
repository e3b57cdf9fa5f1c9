package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/urdh/homepage/internal/model"
)

// LastfmRecentTracks はuser.getrecenttracks（format=json）のレスポンス。
type LastfmRecentTracks struct {
	RecentTracks struct {
		Track Records[LastfmTrack] `json:"track"`
	} `json:"recenttracks"`
}

// LastfmTrack はrecenttracks.trackの1要素。
// 再生中のトラックにはdateがない。
type LastfmTrack struct {
	Artist *struct {
		Text string `json:"#text"`
		Name string `json:"name"` // extended=1 の場合
	} `json:"artist"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Date *struct {
		UTS string `json:"uts"`
	} `json:"date"`
}

// Tracks はLast.fmの再生履歴をTrackに1対1で変換する。
// dateがない、または解析できない場合はnowを使う。
func Tracks(payload LastfmRecentTracks, now time.Time) ([]model.Track, int) {
	entries := payload.RecentTracks.Track
	dropped := entries.Invalid
	tracks := make([]model.Track, 0, len(entries.Items))

	for _, t := range entries.Items {
		title := strings.TrimSpace(t.Name)
		if title == "" || t.Artist == nil {
			dropped++
			continue
		}

		artist := t.Artist.Text
		if artist == "" {
			artist = t.Artist.Name
		}

		tracks = append(tracks, model.Track{
			Artist: artist,
			Title:  title,
			URL:    t.URL,
			Date:   trackDate(t, now),
		})
	}

	return tracks, dropped
}

func trackDate(t LastfmTrack, now time.Time) time.Time {
	if t.Date == nil {
		return now.UTC()
	}
	uts, err := strconv.ParseInt(strings.TrimSpace(t.Date.UTS), 10, 64)
	if err != nil {
		return now.UTC()
	}
	return time.Unix(uts, 0).UTC()
}
