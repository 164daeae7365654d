package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/notionblog/internal/feed"
	"github.com/hitoshi/notionblog/internal/model"
)

func TestRSSHandler_ServeFeed(t *testing.T) {
	svc := &mockPostService{
		listPostsFn: func(ctx context.Context) ([]model.Post, error) { return samplePosts(), nil },
	}
	h := NewRSSHandler(svc, feed.SiteInfo{
		Title:       "My Blog",
		URL:         "https://blog.example.com",
		Description: "Notes",
	})

	w := httptest.NewRecorder()
	h.ServeFeed(w, httptest.NewRequest(http.MethodGet, "/rss.xml", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/rss+xml; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	f, err := gofeed.NewParser().ParseString(w.Body.String())
	if err != nil {
		t.Fatalf("response is not a valid feed: %v", err)
	}
	if f.Title != "My Blog" {
		t.Errorf("title = %q", f.Title)
	}
	if len(f.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(f.Items))
	}
	if f.Items[1].Link != "https://blog.example.com/blog/growth-loops" {
		t.Errorf("items[1].link = %q", f.Items[1].Link)
	}
}

func TestRSSHandler_FetchFailure(t *testing.T) {
	svc := &mockPostService{
		listPostsFn: func(ctx context.Context) ([]model.Post, error) {
			return nil, model.NewFetchFailedError("timeout")
		},
	}
	h := NewRSSHandler(svc, feed.SiteInfo{Title: "My Blog", URL: "https://blog.example.com"})

	w := httptest.NewRecorder()
	h.ServeFeed(w, httptest.NewRequest(http.MethodGet, "/rss.xml", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}
