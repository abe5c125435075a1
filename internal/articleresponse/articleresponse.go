package articleresponse

import (
	"net/http"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

// ArticleResponse is the response payload for a single article,
// wrapped in the `{"article": ...}` envelope the wire format requires.
type ArticleResponse struct {
	Article *model.Article `json:"article"`
}

func NewArticleResponse(article *model.Article) *ArticleResponse {
	return &ArticleResponse{Article: article}
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ArticleListResponse is the response payload for one listing page:
// the page slice plus the total count across all pages.
type ArticleListResponse struct {
	Articles      []model.Article `json:"articles"`
	ArticlesCount int             `json:"articlesCount"`
}

func NewArticleListResponse(list model.ArticleList) *ArticleListResponse {
	return &ArticleListResponse{
		Articles:      list.Articles,
		ArticlesCount: list.ArticlesCount,
	}
}

func (rd *ArticleListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
