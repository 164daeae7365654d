package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/notionblog/internal/model"
)

// PostLister は公開済み記事一覧の取得インターフェース。
// 一覧、カテゴリ、同期、RSSの各ハンドラーが利用する。
type PostLister interface {
	// ListPosts は公開済み記事を公開日の新しい順で返す。
	ListPosts(ctx context.Context) ([]model.Post, error)
}

// PostServiceInterface はブログハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	PostLister
	// GetPost はスラッグに一致する記事と本文を返す。
	// 見つからない場合はPOST_NOT_FOUNDのAPIErrorを返す。
	GetPost(ctx context.Context, slug string) (*postDetailResponse, error)
}

// postDetailResponse は記事詳細のAPIレスポンス。
// 記事のフィールドに加えてレンダリング済み本文と目次を含む。
type postDetailResponse struct {
	model.Post
	ContentHTML      string          `json:"contentHtml"`
	ContentAvailable bool            `json:"contentAvailable"`
	Headings         []model.Heading `json:"headings"`
	ReadingMinutes   int             `json:"readingMinutes"`
}

// postListResponse は記事一覧のAPIレスポンス。
type postListResponse struct {
	Posts []model.Post `json:"posts"`
	Debug debugInfo    `json:"debug"`
}

// postListErrorResponse は記事一覧取得失敗時のレスポンス。
type postListErrorResponse struct {
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details string          `json:"details"`
	Debug   sourceDebugInfo `json:"debug"`
}

// BlogHandler は記事一覧と記事詳細のHTTPハンドラー。
type BlogHandler struct {
	service PostServiceInterface
	status  SourceStatus
	logger  *slog.Logger
	now     func() time.Time
}

// NewBlogHandler はBlogHandlerを生成する。loggerがnilならslog.Default()を使う。
func NewBlogHandler(service PostServiceInterface, status SourceStatus, logger *slog.Logger) *BlogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlogHandler{
		service: service,
		status:  status,
		logger:  logger,
		now:     time.Now,
	}
}

// ListPosts は公開済み記事一覧をデバッグ情報付きで返す。
// GET /api/blog
func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch blog posts", slog.String("error", err.Error()))

		resp := postListErrorResponse{
			Error:   "Failed to fetch blog posts",
			Code:    model.ErrCodeInternal,
			Details: "unknown error",
			Debug:   h.debug(),
		}
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			resp.Code = apiErr.Code
			resp.Details = apiErr.Message
		}
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	writeJSON(w, http.StatusOK, postListResponse{
		Posts: posts,
		Debug: debugInfo{
			TotalPosts:      len(posts),
			AllTags:         uniqueTags(posts),
			sourceDebugInfo: h.debug(),
		},
	})
}

// GetPost はスラッグに一致する記事の詳細を返す。
// GET /api/blog/{slug}
func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("slug is required"))
		return
	}

	post, err := h.service.GetPost(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *BlogHandler) debug() sourceDebugInfo {
	return sourceDebugInfo{
		HasNotionToken:    h.status.HasToken,
		HasNotionDatabase: h.status.HasDatabaseID,
		Timestamp:         formatTimestamp(h.now()),
	}
}
