package handler

import (
	"context"

	"github.com/hitoshi/notionblog/internal/blog"
	"github.com/hitoshi/notionblog/internal/model"
)

// PostServiceAdapter は blog.Service を PostServiceInterface に適合させるアダプタ。
type PostServiceAdapter struct {
	svc *blog.Service
}

// NewPostServiceAdapter はPostServiceAdapterを生成する。
func NewPostServiceAdapter(svc *blog.Service) *PostServiceAdapter {
	return &PostServiceAdapter{svc: svc}
}

// ListPosts は公開済み記事一覧を返す。
func (a *PostServiceAdapter) ListPosts(ctx context.Context) ([]model.Post, error) {
	return a.svc.GetPublishedPosts(ctx)
}

// GetPost はスラッグに一致する記事と本文をhandlerレスポンス型で返す。
// 本文の取得に失敗してもエラーにせず、プレースホルダー本文を返す。
func (a *PostServiceAdapter) GetPost(ctx context.Context, slug string) (*postDetailResponse, error) {
	post, err := a.svc.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	body := a.svc.GetPostBody(ctx, post.ID)

	headings := body.Headings
	if headings == nil {
		headings = []model.Heading{}
	}

	return &postDetailResponse{
		Post:             *post,
		ContentHTML:      body.HTML,
		ContentAvailable: body.Available,
		Headings:         headings,
		ReadingMinutes:   body.ReadingMinutes,
	}, nil
}

// CheckConnection はコンテンツソースの接続診断結果をhandlerレスポンス型で返す。
func (a *PostServiceAdapter) CheckConnection(ctx context.Context) (*connectionResult, error) {
	report, err := a.svc.CheckConnection(ctx)
	if report == nil {
		return nil, err
	}

	names := report.PropertyNames
	if names == nil {
		names = []string{}
	}
	return &connectionResult{
		Configured:    report.HasSource && report.HasDatabaseID,
		DataSourceID:  report.DataSourceID,
		DatabaseTitle: report.DatabaseTitle,
		PropertyNames: names,
		Count:         report.Count,
	}, err
}

// --- compile-time interface checks ---

var _ PostServiceInterface = (*PostServiceAdapter)(nil)
var _ ConnectionChecker = (*PostServiceAdapter)(nil)
