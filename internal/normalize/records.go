// Package normalize はプロバイダー固有のレスポンスを正規化レコードに変換する純粋関数を提供する。
//
// 各プロバイダーの入力スキーマは省略可能フィールドのみで定義する。
// 必須の入れ子フィールドが欠けたレコードは1件単位で破棄し、バッチ全体は失敗させない。
// 破棄した件数は戻り値で呼び出し元に返す。
package normalize

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Records はJSON配列をレコード単位でデコードする。
// 単一オブジェクトは1要素の配列として扱う（Last.fmは1件の場合に配列を返さない）。
// デコードできない要素は破棄し、Invalidに件数を記録する。
type Records[T any] struct {
	Items   []T
	Invalid int
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (r *Records[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] != '[' {
		var item T
		if err := json.Unmarshal(trimmed, &item); err != nil {
			r.Invalid++
			return nil
		}
		r.Items = append(r.Items, item)
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	for _, msg := range raw {
		var item T
		if err := json.Unmarshal(msg, &item); err != nil {
			r.Invalid++
			continue
		}
		r.Items = append(r.Items, item)
	}
	return nil
}

// parseTime はRFC 3339または日付のみの文字列を解析してUTCで返す。
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
