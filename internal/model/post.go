// Package model はドメインモデルを定義する。
package model

// DefaultTitle はタイトルが取得できない場合の表示名。
const DefaultTitle = "Untitled"

// Post は外部コンテンツソース（Notion）のページを正規化したブログ記事を表す。
// 表示層はこの形状のみに依存する。
type Post struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	Published      bool     `json:"published"`
	PublishedDate  string   `json:"publishedDate"`
	LastEditedTime string   `json:"lastEditedTime"`
	Tags           []string `json:"tags"`
	Excerpt        string   `json:"excerpt"`
	Cover          string   `json:"cover"`
}

// Heading は目次（TOC）の1エントリを表す。
// Slugは本文中の見出し要素のid属性と一致する。
type Heading struct {
	BlockID string `json:"id"`
	Text    string `json:"text"`
	Level   int    `json:"level"`
	Slug    string `json:"slug"`
}

// placeholderPost はコンテンツソースが未設定の場合に返す固定レコード。
// 直接返さず、PlaceholderPostsでコピーを返す。
var placeholderPost = Post{
	ID:             "1",
	Title:          "Welcome to My Blog",
	Slug:           "welcome",
	Published:      true,
	PublishedDate:  "2024-01-01",
	LastEditedTime: "2024-01-01",
	Tags:           []string{"welcome", "blog"},
	Excerpt:        "Welcome to my personal blog where I share thoughts on technology and entrepreneurship.",
	Cover:          "",
}

// PlaceholderPosts はプレースホルダー記事1件のみを含む記事一覧を返す。
// 呼び出し元が結果を変更しても固定レコードには影響しない。
func PlaceholderPosts() []Post {
	p := placeholderPost
	p.Tags = append([]string(nil), placeholderPost.Tags...)
	return []Post{p}
}
