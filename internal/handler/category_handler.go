package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/notionblog/internal/category"
	"github.com/hitoshi/notionblog/internal/model"
)

// CategoryHandler はカテゴリ一覧とカテゴリ別記事一覧のHTTPハンドラー。
type CategoryHandler struct {
	catalogue *category.Catalogue
	posts     PostLister
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(catalogue *category.Catalogue, posts PostLister) *CategoryHandler {
	if catalogue == nil {
		catalogue = category.Default()
	}
	return &CategoryHandler{catalogue: catalogue, posts: posts}
}

// categorySummary はカテゴリと該当記事数。
type categorySummary struct {
	category.Category
	PostCount int `json:"postCount"`
}

type categoryListResponse struct {
	Categories []categorySummary `json:"categories"`
}

type categoryDetailResponse struct {
	Category categorySummary `json:"category"`
	Posts    []model.Post    `json:"posts"`
}

// ListCategories はカテゴリ一覧を該当記事数とともに返す。
// GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	counts := h.catalogue.Counts(posts)
	all := h.catalogue.All()
	summaries := make([]categorySummary, 0, len(all))
	for _, c := range all {
		summaries = append(summaries, categorySummary{Category: c, PostCount: counts[c.Slug]})
	}

	writeJSON(w, http.StatusOK, categoryListResponse{Categories: summaries})
}

// GetCategory はカテゴリと、そのカテゴリに該当する記事を返す。
// GET /api/categories/{slug}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	cat, ok := h.catalogue.BySlug(slug)
	if !ok {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewCategoryNotFoundError(slug))
		return
	}

	posts, err := h.posts.ListPosts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	matched := h.catalogue.Filter(cat, posts)
	writeJSON(w, http.StatusOK, categoryDetailResponse{
		Category: categorySummary{Category: cat, PostCount: len(matched)},
		Posts:    matched,
	})
}
