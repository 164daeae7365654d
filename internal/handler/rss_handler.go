package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/notionblog/internal/feed"
)

// RSSHandler は公開済み記事のRSSフィードを返すHTTPハンドラー。
type RSSHandler struct {
	posts PostLister
	site  feed.SiteInfo
}

// NewRSSHandler はRSSHandlerを生成する。
func NewRSSHandler(posts PostLister, site feed.SiteInfo) *RSSHandler {
	return &RSSHandler{posts: posts, site: site}
}

// ServeFeed はRSS 2.0ドキュメントを返す。
// GET /rss.xml
func (h *RSSHandler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data, err := feed.BuildRSS(posts, h.site)
	if err != nil {
		slog.Error("failed to build rss feed", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
