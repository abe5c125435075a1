package model

import "time"

// PageLimit is the server page size for article listings.
const PageLimit = 5

// Author is the embedded author summary carried on every article.
type Author struct {
	Username  string `json:"username"`
	Bio       string `json:"bio,omitempty"`
	Image     string `json:"image,omitempty"`
	Following bool   `json:"following"`
}

// Article data model. The slug is assigned server-side, never changes,
// and keys all single-article state on the client.
type Article struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Favorited      bool      `json:"favorited"`
	FavoritesCount int       `json:"favoritesCount"`
	Author         Author    `json:"author"`
}

// ArticleList is one server page of articles plus the total count
// across all pages.
type ArticleList struct {
	Articles      []Article `json:"articles"`
	ArticlesCount int       `json:"articlesCount"`
}

// TotalPages reports how many pages the listing spans at PageLimit
// articles per page.
func (l ArticleList) TotalPages() int {
	return (l.ArticlesCount + PageLimit - 1) / PageLimit
}

// PageOffset converts a 1-based page number into the offset the
// listing endpoint expects.
func PageOffset(page int) int {
	if page < 1 {
		page = 1
	}

	return (page - 1) * PageLimit
}

// ArticleDraft carries the client-editable article fields for create
// and update requests.
type ArticleDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	TagList     []string `json:"tagList,omitempty"`
}

// ArticleEnvelope is the `{"article": ...}` wrapper used by single
// article requests and responses.
type ArticleEnvelope struct {
	Article Article `json:"article"`
}

// ArticleDraftEnvelope wraps a draft for create/update request bodies.
type ArticleDraftEnvelope struct {
	Article ArticleDraft `json:"article"`
}
