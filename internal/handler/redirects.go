package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	blogBaseURL     = "https://blog.sigurdhsson.org"
	projectsBaseURL = "https://projects.sigurdhsson.org"
	webbokenBaseURL = "https://webboken.github.io/"
	latexbokPDFURL  = "https://github.com/urdh/latexbok/releases/download/edition-2/latexbok-a4.pdf"
	latexhaxPath    = "/latexhax.html"
)

// gonePrefixes は配下を含めて削除済み（410）のパス。
var gonePrefixes = []string{"/archives", "/portfolio", "/posts/I-X"}

// gonePaths は削除済み（410）の単独パス。
var gonePaths = []string{"/autobrew", "/chslacite"}

// blogArchives はブログに移転した記事の年月。/YYYY/MM/{post} を転送する。
var blogArchives = []string{"/2012/11", "/2014/04", "/2014/09"}

// projectPrefixes はプロジェクトサイトに移転したパス。プレフィックス自身と配下をそのまま転送する。
var projectPrefixes = []string{
	"/skrapport",
	"/dotfiles",
	"/skmath",
	"/latexbok",
	"/skdoc",
	"/chscite",
	"/streck",
}

// fixedRedirects は移転先が固定のパス。
var fixedRedirects = map[string]string{
	"/atom.xml":                             blogBaseURL + "/atom.xml",
	"/media/projects/latexbok/latexbok.pdf": latexbokPDFURL,
	"/latexbok/media/latexbok.pdf":          latexbokPDFURL,
	"/latexhax":                             latexhaxPath,
	"/latexhax/":                            latexhaxPath,
	"/latexhax/index.html":                  latexhaxPath,
	"/projects/latexhax.html":               latexhaxPath,
}

// registerLegacyRoutes は旧URLの転送・削除ルートを登録する。
func registerLegacyRoutes(r chi.Router, site *Site) {
	for _, prefix := range gonePrefixes {
		r.HandleFunc(prefix, site.Gone)
		r.HandleFunc(prefix+"/*", site.Gone)
	}
	for _, p := range gonePaths {
		r.HandleFunc(p, site.Gone)
	}

	for from, to := range fixedRedirects {
		r.HandleFunc(from, redirectTo(to))
	}
	for _, archive := range blogArchives {
		r.HandleFunc(archive+"/{post:[^/.]+}", redirectParam(blogBaseURL+archive+"/", "post"))
	}
	for _, prefix := range projectPrefixes {
		r.HandleFunc(prefix, redirectTo(projectsBaseURL+prefix+"/"))
		r.HandleFunc(prefix+"/*", redirectParam(projectsBaseURL+prefix+"/", "*"))
	}
	r.HandleFunc("/webboken/v2", redirectTo(webbokenBaseURL))
	r.HandleFunc("/webboken/v2/*", redirectParam(webbokenBaseURL, "*"))

	r.HandleFunc(latexhaxPath, site.MultipleChoices)
}

// redirectTo はtargetへの恒久的な転送（308）を行うハンドラーを返す。
func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	}
}

// redirectParam はbaseにURLパラメータparamの値を連結した先へ転送するハンドラーを返す。
func redirectParam(base, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, base+chi.URLParam(r, param), http.StatusPermanentRedirect)
	}
}
