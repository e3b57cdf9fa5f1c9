package normalize

import (
	"strings"

	"github.com/urdh/homepage/internal/model"
)

const (
	githubPushEvent = "PushEvent"
	githubWebURL    = "https://github.com/"
)

// GitHubEvent は/users/{user}/events/public の1要素。
type GitHubEvent struct {
	Type string `json:"type"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	CreatedAt string `json:"created_at"`
	Payload   struct {
		Head    string             `json:"head"`
		Commits []GitHubPushCommit `json:"commits"`
	} `json:"payload"`
}

// GitHubPushCommit はPushEventのpayload.commitsの1要素。
// GitHubは新しいコミットから順に並べて返す。
type GitHubPushCommit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// IsPush はPushEventかどうかを返す。
func (e GitHubEvent) IsPush() bool {
	return e.Type == githubPushEvent
}

// NeedsHeadCommit はコミット一覧を持たずheadのみを持つPushEventかどうかを返す。
// この場合、アダプターがheadコミットを別途取得してCommitsを補う。
func (e GitHubEvent) NeedsHeadCommit() bool {
	return e.IsPush() && len(e.Payload.Commits) == 0 && e.Payload.Head != ""
}

// Commits はPushEventのみを抽出し、プッシュ内の各コミットをCommitに展開する。
// プッシュ内のコミットは古い順に並べ替え、プッシュ同士はイベントの順序を保つ。
func Commits(events []GitHubEvent) ([]model.Commit, int) {
	commits := make([]model.Commit, 0)
	dropped := 0

	for _, e := range events {
		if !e.IsPush() {
			continue
		}

		repo := strings.TrimSpace(e.Repo.Name)
		date, ok := parseTime(e.CreatedAt)
		if repo == "" || !ok {
			dropped++
			continue
		}

		for i := len(e.Payload.Commits) - 1; i >= 0; i-- {
			c := e.Payload.Commits[i]
			if c.SHA == "" {
				dropped++
				continue
			}
			commits = append(commits, model.Commit{
				SHA:     c.SHA,
				URL:     githubWebURL + repo + "/commit/" + c.SHA,
				Message: FirstLine(c.Message),
				Repo:    repo,
				Date:    date,
			})
		}
	}

	return commits, dropped
}

// FirstLine はメッセージの1行目を返す。
func FirstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimRight(line, "\r")
}
