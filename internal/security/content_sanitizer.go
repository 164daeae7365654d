// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はNotion本文から生成したHTMLをサニタイズし、
// リッチテキストのリンクや画像URLに紛れ込んだ危険な値を取り除く。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// レンダラーが出力するタグと属性のみを通過させる。
package security

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はHTMLコンテンツのサニタイズ機能のインターフェースを定義する。
// 記事本文をAPI応答に含める直前に使用される。
type ContentSanitizerService interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// レンダラーが生成するタグ（p, div, h1-h3, li, blockquote, pre, code,
	// figure, figcaption, img, hr, a, strong, em, del, u）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。
	Sanitize(rawHTML string) string
}

var (
	// anchorIDPattern は見出しのアンカーidとして許可する形式。
	anchorIDPattern = regexp.MustCompile(`^[\w-]+$`)
	// languageClassPattern はコードブロックの言語クラスとして許可する形式。
	languageClassPattern = regexp.MustCompile(`^language-[\w+#.-]+$`)
	// placeholderClassPattern はコンテンツ取得不可プレースホルダーのクラス。
	placeholderClassPattern = regexp.MustCompile(`^content-unavailable$`)
)

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: p, div, h1-h3, li, blockquote, pre, code, figure, figcaption, img, hr, a, strong, em, del, u
//   - h1-h3のid、codeのlanguage-*クラス、divのcontent-unavailableクラスのみ属性を許可
//   - URLスキーム: http, https, mailto（Notion内部リンクのための相対URLも許可）
//   - 外部リンク: target="_blank" と rel="noopener noreferrer" を自動付与
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "div", "li", "blockquote", "pre", "code",
		"h1", "h2", "h3",
		"figure", "figcaption", "hr",
		"strong", "em", "del", "u",
	)

	p.AllowAttrs("id").Matching(anchorIDPattern).OnElements("h1", "h2", "h3")
	p.AllowAttrs("class").Matching(languageClassPattern).OnElements("code")
	p.AllowAttrs("class").Matching(placeholderClassPattern).OnElements("div")

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
