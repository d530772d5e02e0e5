// Package security はアプリケーションのセキュリティ機能を提供する。
//
// PostSanitizer はプロバイダーから取得した投稿本文をHTMLとして安全に表示できる形に整え、
// TokenCipher はOAuthアクセストークンを保存時に暗号化する。
package security

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// PostSanitizer は投稿本文のサニタイズ機能のインターフェースを定義する。
type PostSanitizer interface {
	// Sanitize は投稿本文を表示用の安全なHTMLに変換する。
	// 改行は<br>に変換し、許可タグ（a, br）以外は除去する。
	// aタグにはrel="nofollow noreferrer noopener"とtarget="_blank"が付与される。
	// 空文字列の入力には空文字列を返す。
	Sanitize(text string) template.HTML
}

// postSanitizer はPostSanitizerの実装。
// bluemondayのポリシーはゴルーチン間で共有して安全に使用できる。
type postSanitizer struct {
	policy *bluemonday.Policy
}

// NewPostSanitizer はPostSanitizerの新しいインスタンスを生成する。
func NewPostSanitizer() PostSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements("br")

	// リンクはhttp/httpsの絶対URLのみ
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(false)
	p.RequireNoFollowOnLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &postSanitizer{policy: p}
}

// Sanitize は投稿本文を表示用の安全なHTMLに変換する。
func (s *postSanitizer) Sanitize(text string) template.HTML {
	if text == "" {
		return ""
	}
	withBreaks := strings.ReplaceAll(text, "\n", "<br>")
	return template.HTML(s.policy.Sanitize(withBreaks))
}
