package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

// ListArticles fetches one page of the article listing at the given
// offset. Page size is fixed server-side at model.PageLimit.
func (c *Client) ListArticles(ctx context.Context, offset int) (model.ArticleList, error) {
	var list model.ArticleList

	path := fmt.Sprintf("/articles?limit=%d&offset=%d", model.PageLimit, offset)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return model.ArticleList{}, err
	}

	return list, nil
}

// GetArticle fetches a single article by slug.
func (c *Client) GetArticle(ctx context.Context, slug string) (model.Article, error) {
	var envelope model.ArticleEnvelope

	if err := c.do(ctx, http.MethodGet, "/articles/"+slug, nil, &envelope); err != nil {
		return model.Article{}, err
	}

	return envelope.Article, nil
}

// CreateArticle submits a new article and returns the server copy,
// slug assigned.
func (c *Client) CreateArticle(ctx context.Context, draft model.ArticleDraft) (model.Article, error) {
	var envelope model.ArticleEnvelope

	body := model.ArticleDraftEnvelope{Article: draft}
	if err := c.do(ctx, http.MethodPost, "/articles", body, &envelope); err != nil {
		return model.Article{}, err
	}

	return envelope.Article, nil
}

// UpdateArticle replaces the editable fields of the article at slug
// and returns the server copy.
func (c *Client) UpdateArticle(ctx context.Context, slug string, draft model.ArticleDraft) (model.Article, error) {
	var envelope model.ArticleEnvelope

	body := model.ArticleDraftEnvelope{Article: draft}
	if err := c.do(ctx, http.MethodPut, "/articles/"+slug, body, &envelope); err != nil {
		return model.Article{}, err
	}

	return envelope.Article, nil
}

// DeleteArticle removes the article at slug.
func (c *Client) DeleteArticle(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, "/articles/"+slug, nil, nil)
}

// FavoriteArticle marks the article as favorited by the current user
// and returns the updated server copy.
func (c *Client) FavoriteArticle(ctx context.Context, slug string) (model.Article, error) {
	var envelope model.ArticleEnvelope

	if err := c.do(ctx, http.MethodPost, "/articles/"+slug+"/favorite", nil, &envelope); err != nil {
		return model.Article{}, err
	}

	return envelope.Article, nil
}

// UnfavoriteArticle clears the current user's favorite and returns
// the updated server copy.
func (c *Client) UnfavoriteArticle(ctx context.Context, slug string) (model.Article, error) {
	var envelope model.ArticleEnvelope

	if err := c.do(ctx, http.MethodDelete, "/articles/"+slug+"/favorite", nil, &envelope); err != nil {
		return model.Article{}, err
	}

	return envelope.Article, nil
}
