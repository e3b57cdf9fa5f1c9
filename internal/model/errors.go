// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrorKind はプロバイダー呼び出し失敗の分類。
type ErrorKind int

const (
	// ErrorKindUpstream はプロバイダー呼び出しの失敗（ネットワーク、認証、レート制限）。
	ErrorKindUpstream ErrorKind = iota
	// ErrorKindMalformedPayload はレスポンス全体がデコードできない場合。
	// 個々のレコードの欠損はこの分類にならず、レコード単位で破棄される。
	ErrorKindMalformedPayload
	// ErrorKindNotConfigured は認証情報が未設定の場合。呼び出し時に検出する。
	ErrorKindNotConfigured
)

// String はErrorKindの名前を返す。
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindUpstream:
		return "upstream_error"
	case ErrorKindMalformedPayload:
		return "malformed_payload"
	case ErrorKindNotConfigured:
		return "not_configured"
	default:
		return "unknown"
	}
}

// ProviderError はプロバイダー呼び出しの失敗を表す。
// Messageはプロバイダーのメッセージをそのまま保持する。
type ProviderError struct {
	Kind       ErrorKind
	Provider   string // プロバイダー名: last.fm, goodreads, github, photos
	StatusCode int    // プロバイダーのHTTPステータス。通信エラー時は0
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *ProviderError) Error() string {
	return e.Message
}

// NewUpstreamError はプロバイダー呼び出し失敗エラーを生成する。
func NewUpstreamError(provider string, statusCode int, message string) *ProviderError {
	return &ProviderError{
		Kind:       ErrorKindUpstream,
		Provider:   provider,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("Could not query %s: %s", provider, message),
	}
}

// NewMalformedPayloadError はレスポンスのデコード失敗エラーを生成する。
func NewMalformedPayloadError(provider string, err error) *ProviderError {
	return &ProviderError{
		Kind:     ErrorKindMalformedPayload,
		Provider: provider,
		Message:  fmt.Sprintf("Could not parse %s response: %v", provider, err),
	}
}

// NewNotConfiguredError は認証情報未設定エラーを生成する。
func NewNotConfiguredError(provider, envVar string) *ProviderError {
	return &ProviderError{
		Kind:     ErrorKindNotConfigured,
		Provider: provider,
		Message:  fmt.Sprintf("Could not query %s: %s is not set", provider, envVar),
	}
}

// AsProviderError はerrをProviderErrorとして取り出す。
// ProviderErrorでない場合はUpstreamErrorとして包む。
func AsProviderError(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return NewUpstreamError(provider, 0, err.Error())
}
