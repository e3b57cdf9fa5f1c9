package handler

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// エラーページのファイル名。静的ファイルとしては直接配信しない。
const (
	multipleChoicesPage = "300-latexhax.html"
	notFoundPage        = "404.html"
	gonePage            = "410.html"
	internalErrorPage   = "500.html"
	indexPage           = "index.html"
)

// hiddenFiles は直接アクセスを404とするファイル。
var hiddenFiles = map[string]bool{
	multipleChoicesPage: true,
	notFoundPage:        true,
	gonePage:            true,
	internalErrorPage:   true,
}

// Site は静的ファイルとエラーページを配信する。
type Site struct {
	files fs.FS
	pages map[int][]byte
}

// NewSite はfilesを公開ディレクトリとするSiteを生成する。
// エラーページは生成時に読み込み、存在しないものはテキストの応答で代替する。
func NewSite(files fs.FS) *Site {
	s := &Site{
		files: files,
		pages: make(map[int][]byte),
	}

	for status, name := range map[int]string{
		http.StatusMultipleChoices:     multipleChoicesPage,
		http.StatusNotFound:            notFoundPage,
		http.StatusGone:                gonePage,
		http.StatusInternalServerError: internalErrorPage,
	} {
		data, err := fs.ReadFile(files, name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Warn("エラーページの読み込みに失敗しました",
					slog.String("file", name),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		s.pages[status] = data
	}

	return s
}

// ServeStatic は公開ディレクトリのファイルを配信する。
// "/"はindex.htmlを返す。エラーページと存在しないファイルは404ページを返す。
func (s *Site) ServeStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = indexPage
	}
	if hiddenFiles[name] || !fs.ValidPath(name) {
		s.NotFound(w, r)
		return
	}

	f, err := s.files.Open(name)
	if err != nil {
		s.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		s.NotFound(w, r)
		return
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			slog.Error("静的ファイルの読み込みに失敗しました",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
			s.InternalError(w, r)
			return
		}
		content = bytes.NewReader(data)
	}

	http.ServeContent(w, r, name, info.ModTime(), content)
}

// NotFound は404ページを返す。
func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusNotFound)
}

// Gone は410ページを返す。
func (s *Site) Gone(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusGone)
}

// MultipleChoices は300ページ（移転先の一覧）を返す。
func (s *Site) MultipleChoices(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusMultipleChoices)
}

// InternalError は500ページを返す。
func (s *Site) InternalError(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusInternalServerError)
}

// writePage はステータスに対応するページを書き込む。ページがなければステータス文言を返す。
func (s *Site) writePage(w http.ResponseWriter, status int) {
	page, ok := s.pages[status]
	if !ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(status)
		io.WriteString(w, http.StatusText(status)+"\n")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(page)
}
