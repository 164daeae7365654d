// Package category は記事のタグをカテゴリに対応付けるカタログを提供する。
// カテゴリ定義はYAMLで管理し、既定のカタログはバイナリに埋め込む。
package category

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/notionblog/internal/model"
)

//go:embed categories.yaml
var defaultCatalogue []byte

// Category はブログのカテゴリ1件を表す。
// Tagsのいずれかに一致するタグを持つ記事がこのカテゴリに属する。
type Category struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Slug        string   `yaml:"slug" json:"slug"`
	Icon        string   `yaml:"icon" json:"icon"`
	Color       string   `yaml:"color" json:"color"`
	Tags        []string `yaml:"tags" json:"tags"`
}

// Catalogue はカテゴリの一覧。定義順を保持する。
type Catalogue struct {
	categories []Category
}

type catalogueFile struct {
	Categories []Category `yaml:"categories"`
}

// Default は埋め込みの既定カタログを返す。
func Default() *Catalogue {
	c, err := Parse(defaultCatalogue)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded category catalogue: %v", err))
	}
	return c
}

// Load はファイルからカタログを読み込む。pathが空の場合は既定カタログを返す。
func Load(path string) (*Catalogue, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category file %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load category file %s: %w", path, err)
	}
	return c, nil
}

// Parse はYAMLのカタログ定義を解析する。
// slugの欠落と重複はエラーとする。
func Parse(data []byte) (*Catalogue, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}

	seen := make(map[string]bool, len(f.Categories))
	for i, c := range f.Categories {
		if c.Slug == "" {
			return nil, fmt.Errorf("category #%d has no slug", i+1)
		}
		if seen[c.Slug] {
			return nil, fmt.Errorf("duplicate category slug: %s", c.Slug)
		}
		seen[c.Slug] = true
		if c.ID == "" {
			f.Categories[i].ID = c.Slug
		}
		if c.Tags == nil {
			f.Categories[i].Tags = []string{}
		}
	}
	return &Catalogue{categories: f.Categories}, nil
}

// All はカテゴリ一覧のコピーを返す。
func (c *Catalogue) All() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// BySlug はスラッグに一致するカテゴリを返す。
func (c *Catalogue) BySlug(slug string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.Slug == slug {
			return cat, true
		}
	}
	return Category{}, false
}

// Filter はカテゴリに属する記事のみを元の順序で返す。
func (c *Catalogue) Filter(cat Category, posts []model.Post) []model.Post {
	out := []model.Post{}
	for _, p := range posts {
		if cat.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Counts はカテゴリのスラッグごとの記事数を返す。
// 1つの記事が複数のカテゴリに数えられることがある。
func (c *Catalogue) Counts(posts []model.Post) map[string]int {
	counts := make(map[string]int, len(c.categories))
	for _, cat := range c.categories {
		counts[cat.Slug] = 0
		for _, p := range posts {
			if cat.Matches(p) {
				counts[cat.Slug]++
			}
		}
	}
	return counts
}

// Matches は記事のタグのいずれかがカテゴリのタグに一致するかを返す。
func (cat Category) Matches(post model.Post) bool {
	for _, postTag := range post.Tags {
		for _, catTag := range cat.Tags {
			if tagsMatch(postTag, catTag) {
				return true
			}
		}
	}
	return false
}

var tagSeparators = regexp.MustCompile(`[-_\s]+`)

// tagsMatch は大文字小文字と前後の空白を無視して2つのタグを比較する。
// 完全一致、どちらかがもう一方を含む場合、区切り文字で分割した語が一致する場合に真を返す。
func tagsMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	for _, wa := range tagSeparators.Split(a, -1) {
		if wa == "" {
			continue
		}
		for _, wb := range tagSeparators.Split(b, -1) {
			if wa == wb {
				return true
			}
		}
	}
	return false
}
