// Package render は記事本文のブロック列をHTMLノードツリーに変換する。
//
// ブロックごとに1つのトップレベルノードを入力順に生成する。
// リスト項目を<ul>/<ol>でまとめる処理は表示側の責務とし、ここでは行わない。
package render

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hitoshi/notionblog/internal/content"
	"github.com/hitoshi/notionblog/internal/model"
)

const (
	// PlaceholderClass はコンテンツ取得不可プレースホルダーのクラス名。
	PlaceholderClass = "content-unavailable"
	// PlaceholderMessage はプレースホルダーに表示する文言。
	PlaceholderMessage = "Content is currently unavailable. Please try refreshing the page."

	defaultImageAlt = "Image"
)

// Render はブロック列をトップレベルノードの列に変換する。
// 入力が空の場合はプレースホルダーノード1つだけを返す。
func Render(blocks []model.Block) []*html.Node {
	if len(blocks) == 0 {
		return []*html.Node{Placeholder()}
	}

	nodes := make([]*html.Node, 0, len(blocks))
	for _, b := range blocks {
		if n := renderBlock(b); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Placeholder はコンテンツ取得不可を示すノードを返す。
func Placeholder() *html.Node {
	div := element(atom.Div, html.Attribute{Key: "class", Val: PlaceholderClass})
	p := element(atom.P)
	p.AppendChild(text(PlaceholderMessage))
	div.AppendChild(p)
	return div
}

func renderBlock(b model.Block) *html.Node {
	switch b.Type {
	case model.BlockParagraph:
		return withRichText(element(atom.P), b.RichText)
	case model.BlockHeading1, model.BlockHeading2, model.BlockHeading3:
		return renderHeading(b)
	case model.BlockBulletedListItem, model.BlockNumberedListItem:
		return withRichText(element(atom.Li), b.RichText)
	case model.BlockQuote:
		return withRichText(element(atom.Blockquote), b.RichText)
	case model.BlockCode:
		return renderCode(b)
	case model.BlockImage:
		return renderImage(b)
	case model.BlockDivider:
		return element(atom.Hr)
	default:
		if !b.HasRichText() {
			return nil
		}
		return withRichText(element(atom.Div), b.RichText)
	}
}

func renderHeading(b model.Block) *html.Node {
	tag := [...]atom.Atom{atom.H1, atom.H2, atom.H3}[b.Type.HeadingLevel()-1]

	var attrs []html.Attribute
	if id := content.AnchorSlug(model.PlainText(b.RichText)); id != "" {
		attrs = append(attrs, html.Attribute{Key: "id", Val: id})
	}
	return withRichText(element(tag, attrs...), b.RichText)
}

func renderCode(b model.Block) *html.Node {
	var attrs []html.Attribute
	if lang := strings.TrimSpace(b.Language); lang != "" {
		attrs = append(attrs, html.Attribute{Key: "class", Val: "language-" + strings.ReplaceAll(lang, " ", "-")})
	}
	pre := element(atom.Pre)
	pre.AppendChild(withRichText(element(atom.Code, attrs...), b.RichText))
	return pre
}

func renderImage(b model.Block) *html.Node {
	if b.ImageURL == "" {
		return nil
	}

	caption := ""
	if len(b.Caption) > 0 {
		caption = b.Caption[0].PlainText
	}
	alt := caption
	if alt == "" {
		alt = defaultImageAlt
	}

	figure := element(atom.Figure)
	figure.AppendChild(element(atom.Img,
		html.Attribute{Key: "src", Val: b.ImageURL},
		html.Attribute{Key: "alt", Val: alt},
	))
	if caption != "" {
		figcaption := element(atom.Figcaption)
		figcaption.AppendChild(text(caption))
		figure.AppendChild(figcaption)
	}
	return figure
}

// withRichText はparentにスパン列を追加してparentを返す。
func withRichText(parent *html.Node, spans []model.RichText) *html.Node {
	for _, s := range spans {
		parent.AppendChild(renderSpan(s))
	}
	return parent
}

// renderSpan はスパン1つを装飾付きのノードに変換する。
// 入れ子の順序は外側からリンク、太字、斜体、取り消し線、下線、コード、テキスト。
func renderSpan(s model.RichText) *html.Node {
	n := text(s.PlainText)

	a := s.Annotations
	wrappers := []struct {
		on  bool
		tag atom.Atom
	}{
		{a.Code, atom.Code},
		{a.Underline, atom.U},
		{a.Strikethrough, atom.Del},
		{a.Italic, atom.Em},
		{a.Bold, atom.Strong},
	}
	for _, w := range wrappers {
		if w.on {
			n = wrap(element(w.tag), n)
		}
	}

	if s.Href != "" {
		n = wrap(element(atom.A,
			html.Attribute{Key: "href", Val: s.Href},
			html.Attribute{Key: "target", Val: "_blank"},
			html.Attribute{Key: "rel", Val: "noopener noreferrer"},
		), n)
	}
	return n
}

// Headings は見出しブロックから目次エントリを抽出する。
// Slugは本文中の見出しのid属性と同じ値になる。
func Headings(blocks []model.Block) []model.Heading {
	headings := []model.Heading{}
	for _, b := range blocks {
		level := b.Type.HeadingLevel()
		if level == 0 {
			continue
		}
		label := model.PlainText(b.RichText)
		if strings.TrimSpace(label) == "" {
			continue
		}
		headings = append(headings, model.Heading{
			BlockID: b.ID,
			Text:    label,
			Level:   level,
			Slug:    content.AnchorSlug(label),
		})
	}
	return headings
}

// HTML はノード列をHTML文字列にシリアライズする。
func HTML(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("failed to render html: %w", err)
		}
	}
	return buf.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func wrap(parent, child *html.Node) *html.Node {
	parent.AppendChild(child)
	return parent
}
