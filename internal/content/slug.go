package content

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRun   = regexp.MustCompile(`[^a-z0-9]+`)
	nonWordChar   = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-+`)
)

// SlugifyTitle は記事タイトルからURL用のスラッグを生成する。
// 小文字化し、英数字以外の連続を1つのハイフンにまとめ、前後のハイフンを取り除く。
// 英数字を含まないタイトルは空文字列になる。
func SlugifyTitle(title string) string {
	s := nonAlnumRun.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// AnchorSlug は見出しテキストからアンカー用のidを生成する。
// 同じテキストからは常に同じidを返す。重複の解消は呼び出し側で行う。
func AnchorSlug(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = nonWordChar.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
