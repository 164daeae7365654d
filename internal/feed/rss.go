// Package feed は公開済み記事のRSS 2.0フィードを生成する。
package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/notionblog/internal/model"
)

// SiteInfo はフィードのチャンネル情報。
type SiteInfo struct {
	Title       string
	URL         string
	Description string
	Language    string
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Description string   `xml:"description,omitempty"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// BuildRSS は公開済み記事からRSS 2.0文書を生成する。
// 記事のリンクは{site.URL}/blog/{slug}、guidは記事IDとする。
// 非公開の記事は含めない。
func BuildRSS(posts []model.Post, site SiteInfo) ([]byte, error) {
	base := strings.TrimRight(site.URL, "/")

	channel := rssChannel{
		Title:       site.Title,
		Link:        base,
		Description: site.Description,
		Language:    site.Language,
		Items:       make([]rssItem, 0, len(posts)),
	}

	var latest time.Time
	for _, p := range posts {
		if !p.Published {
			continue
		}
		item := rssItem{
			Title:       p.Title,
			Link:        base + "/blog/" + url.PathEscape(p.Slug),
			GUID:        rssGUID{IsPermaLink: false, Value: p.ID},
			Description: p.Excerpt,
			Categories:  p.Tags,
		}
		if t, ok := parseDate(p.PublishedDate); ok {
			item.PubDate = t.Format(time.RFC1123Z)
			if t.After(latest) {
				latest = t
			}
		}
		channel.Items = append(channel.Items, item)
	}
	if !latest.IsZero() {
		channel.LastBuildDate = latest.Format(time.RFC1123Z)
	}

	out, err := xml.MarshalIndent(rssDocument{Version: "2.0", Channel: channel}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode rss: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// dateLayouts はPublishedDateとして受け付ける形式。
// Notionのdateプロパティは日付のみ、タイムスタンプは日時を返す。
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
