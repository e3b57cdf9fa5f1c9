package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/urdh/homepage/internal/model"
	"github.com/urdh/homepage/internal/normalize"
)

const (
	githubProvider       = "github"
	defaultGitHubBaseURL = "https://api.github.com"
	githubAPIVersion     = "2022-11-28"
	defaultCommitLimit   = 5
	// maxResolvedCommits はheadコミットのメモの上限。超えたら作り直す。
	maxResolvedCommits = 256
)

// GitHubConfig はGitHubアダプターの設定。Tokenは省略可能。
// Limitは返すコミットの最大数で、0以下なら5件。
type GitHubConfig struct {
	BaseURL string
	User    string
	Token   string
	Limit   int
}

// githubCommit は/repos/{owner}/{repo}/commits/{sha} のレスポンスのうち使用する部分。
type githubCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
	} `json:"commit"`
}

// GitHub は公開イベントから最近のコミットを取得するアダプター。
// コミット一覧を持たないPushEventはheadコミットを個別に取得して補う。
// SHAが同じコミットの内容は変わらないため、取得済みのheadコミットはメモしておく。
type GitHub struct {
	cfg    GitHubConfig
	client *Client

	mu       sync.Mutex
	resolved map[string]normalize.GitHubPushCommit
}

// NewGitHub はGitHubの新しいインスタンスを生成する。
func NewGitHub(cfg GitHubConfig, client *Client) *GitHub {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGitHubBaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultCommitLimit
	}
	return &GitHub{
		cfg:      cfg,
		client:   client,
		resolved: make(map[string]normalize.GitHubPushCommit),
	}
}

// Kind はFeedKindCommitsを返す。
func (a *GitHub) Kind() model.FeedKind { return model.FeedKindCommits }

// Provider はプロバイダー名を返す。
func (a *GitHub) Provider() string { return githubProvider }

// Fetch は公開イベント一覧を取得し、PushEventのコミットをCommitに展開する。
// コミットがLimit件に達した時点で残りのイベントは見ないため、headコミットの取得もLimit回までとなる。
// headコミットの取得に1件でも失敗した場合は全体を失敗とする。
func (a *GitHub) Fetch(ctx context.Context) model.FetchResult {
	endpoint := a.cfg.BaseURL + "/users/" + url.PathEscape(a.cfg.User) + "/events/public"

	resp, perr := a.client.Get(ctx, githubProvider, endpoint, a.header())
	if perr != nil {
		return model.Failed(perr)
	}

	var events normalize.Records[normalize.GitHubEvent]
	if err := json.Unmarshal(resp.Body, &events); err != nil {
		return model.Failed(model.NewMalformedPayloadError(githubProvider, err))
	}

	dropped := events.Invalid
	resolved := make([]normalize.GitHubEvent, 0, len(events.Items))
	pending := 0
	for _, e := range events.Items {
		if pending >= a.cfg.Limit {
			break
		}
		if !e.NeedsHeadCommit() {
			resolved = append(resolved, e)
			if e.IsPush() {
				pending += len(e.Payload.Commits)
			}
			continue
		}

		owner, repo, ok := strings.Cut(e.Repo.Name, "/")
		if !ok || owner == "" || repo == "" {
			dropped++
			continue
		}

		commit, perr := a.headCommit(ctx, owner, repo, e.Payload.Head)
		if perr != nil {
			return model.Failed(perr)
		}
		e.Payload.Commits = []normalize.GitHubPushCommit{commit}
		resolved = append(resolved, e)
		pending++
	}

	commits, n := normalize.Commits(resolved)
	if len(commits) > a.cfg.Limit {
		commits = commits[:a.cfg.Limit]
	}
	result := model.OK(commits)
	result.Dropped = dropped + n
	return result
}

// headCommit はPushEventのheadコミットを取得する。
func (a *GitHub) headCommit(ctx context.Context, owner, repo, sha string) (normalize.GitHubPushCommit, *model.ProviderError) {
	a.mu.Lock()
	c, ok := a.resolved[sha]
	a.mu.Unlock()
	if ok {
		return c, nil
	}

	endpoint := a.cfg.BaseURL + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) +
		"/commits/" + url.PathEscape(sha)

	resp, perr := a.client.Get(ctx, githubProvider, endpoint, a.header())
	if perr != nil {
		return normalize.GitHubPushCommit{}, perr
	}

	var gc githubCommit
	if err := json.Unmarshal(resp.Body, &gc); err != nil {
		return normalize.GitHubPushCommit{}, model.NewMalformedPayloadError(githubProvider, err)
	}

	c = normalize.GitHubPushCommit{SHA: gc.SHA, Message: gc.Commit.Message}
	if c.SHA == "" {
		c.SHA = sha
	}

	a.mu.Lock()
	if len(a.resolved) >= maxResolvedCommits {
		a.resolved = make(map[string]normalize.GitHubPushCommit)
	}
	a.resolved[sha] = c
	a.mu.Unlock()

	return c, nil
}

func (a *GitHub) header() http.Header {
	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	header.Set("X-GitHub-Api-Version", githubAPIVersion)
	if a.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+a.cfg.Token)
	}
	return header
}
