// Package content はNotionのページとブロックをドメインモデルに正規化する。
// 入力のプロパティ形状はスキーマのバージョンや連携によって揺れるため、
// すべてのフィールドはフォールバックチェーンで解決し、失敗しない。
package content

import (
	"encoding/json"
	"strings"

	"github.com/hitoshi/notionblog/internal/model"
	"github.com/hitoshi/notionblog/internal/notion"
)

// accessor はフィールド値の取得方法1つを表す。取得できない場合は空文字列を返す。
type accessor func() string

// firstNonEmpty はaccessorを順に評価し、最初に得られた空でない値を返す。
func firstNonEmpty(accessors ...accessor) string {
	for _, get := range accessors {
		if v := get(); v != "" {
			return v
		}
	}
	return ""
}

// constant は固定値を返すaccessorを生成する。
func constant(v string) accessor {
	return func() string { return v }
}

// Normalize はNotionのページ1件をPostに変換する。
// 欠落・形状不正のプロパティは既定値に置き換え、エラーを返さない。
func Normalize(page notion.Page) model.Post {
	props := page.Properties

	title := firstNonEmpty(
		textOf(props, "Title"),
		textOf(props, "Name"),
		anyTitle(props),
	)

	post := model.Post{
		ID:    page.ID,
		Title: firstNonEmpty(constant(title), constant(model.DefaultTitle)),
		Slug: firstNonEmpty(
			textOf(props, "slug"),
			textOf(props, "Slug"),
			func() string { return SlugifyTitle(title) },
			constant(page.ID),
		),
		Published: checkbox(props, "Published"),
		PublishedDate: firstNonEmpty(
			dateStart(props, "Published Date"),
			dateStart(props, "Date"),
			constant(page.CreatedTime),
			constant(page.LastEditedTime),
		),
		LastEditedTime: page.LastEditedTime,
		Tags:           Tags(props),
		Excerpt: firstNonEmpty(
			textOf(props, "Excerpt"),
			textOf(props, "Summary"),
		),
		Cover: firstNonEmpty(
			constant(page.Cover.ExternalURL()),
			constant(page.Cover.FileURL()),
		),
	}
	return post
}

// tagPropertyNames はタグとして解釈するプロパティ名（優先順）。
var tagPropertyNames = []string{"Tags", "Tag", "Category"}

// Tags はタグプロパティから名前の列を取り出す。
// 単一選択・複数選択・生の配列のいずれの形状でも受け付け、該当なしは空スライスを返す。
// 重複は除去しない。
func Tags(props map[string]notion.Property) []string {
	for _, name := range tagPropertyNames {
		p, ok := props[name]
		if !ok {
			continue
		}
		return tagNames(p)
	}
	return []string{}
}

func tagNames(p notion.Property) []string {
	tags := []string{}
	switch p.Kind() {
	case notion.KindSelect:
		if p.Select != nil && p.Select.Name != "" {
			tags = append(tags, p.Select.Name)
		}
	case notion.KindMultiSelect:
		for _, opt := range p.MultiSelect {
			if opt.Name != "" {
				tags = append(tags, opt.Name)
			}
		}
	case notion.KindArray:
		for _, item := range p.Array {
			if name := nameOrSelf(item); name != "" {
				tags = append(tags, name)
			}
		}
	}
	return tags
}

// nameOrSelf は配列要素がオブジェクトならnameを、文字列ならその値を返す。
func nameOrSelf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Name)
	}
	return ""
}

// textOf はtitleアームまたはrich_textアームのプレーンテキストを返すaccessorを生成する。
// 命名規約の異なる2種類のスキーマを同時に扱うため、どちらのアームも受け付ける。
func textOf(props map[string]notion.Property, name string) accessor {
	return func() string {
		p, ok := props[name]
		if !ok {
			return ""
		}
		return firstNonEmpty(
			constant(strings.TrimSpace(plainText(p.Title))),
			constant(strings.TrimSpace(plainText(p.RichText))),
		)
	}
}

// anyTitle は種別がtitleである任意のプロパティのテキストを返すaccessorを生成する。
// 候補が複数ある場合はプロパティ名の辞書順で最初のものを使う。
func anyTitle(props map[string]notion.Property) accessor {
	return func() string {
		best, found := "", false
		for name, p := range props {
			if p.Kind() != notion.KindTitle {
				continue
			}
			if found && name > best {
				continue
			}
			if text := strings.TrimSpace(plainText(p.Title)); text != "" {
				best, found = name, true
			}
		}
		if !found {
			return ""
		}
		return strings.TrimSpace(plainText(props[best].Title))
	}
}

func dateStart(props map[string]notion.Property, name string) accessor {
	return func() string {
		p, ok := props[name]
		if !ok || p.Date == nil {
			return ""
		}
		return p.Date.Start
	}
}

func checkbox(props map[string]notion.Property, name string) bool {
	p, ok := props[name]
	if !ok || p.Checkbox == nil {
		return false
	}
	return *p.Checkbox
}

func plainText(spans []notion.RichText) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.PlainText)
	}
	return b.String()
}
