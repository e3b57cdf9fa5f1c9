package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプロバイダーから受け取った文字列からHTMLを除去し、プレーンテキストにする。
// 写真フィードのタイトルなど、HTMLが混入しうるフィールドに使用する。
// bluemondayのポリシーはスレッドセーフなので、1インスタンスを共有してよい。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はタグを一切許可しないポリシーでTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// PlainText はタグを除去し、エンティティを復元し、空白を1つに詰めた文字列を返す。
// script/style要素は中身ごと除去される。
func (s *TextSanitizer) PlainText(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := s.policy.Sanitize(raw)
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}
