package article

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

var errNotFound = errors.New("article not found.")

// Store is an in-memory article store, newest first. Favorites are
// tracked per viewer so favorited/favoritesCount can be rendered from
// each user's point of view.
type Store struct {
	mu        sync.Mutex
	articles  []*model.Article
	favorites map[string]map[string]bool // slug -> usernames
	clock     func() time.Time
}

func NewStore() *Store {
	return &Store{
		favorites: make(map[string]map[string]bool),
		clock:     time.Now,
	}
}

// Seed installs fixture articles for development and tests.
func (s *Store) Seed() {
	fixtures := []struct {
		draft  model.ArticleDraft
		author model.Author
	}{
		{
			draft:  model.ArticleDraft{Title: "Hi", Description: "greetings", Body: "hi there", TagList: []string{"intro"}},
			author: model.Author{Username: "peter", Bio: "first fixture"},
		},
		{
			draft:  model.ArticleDraft{Title: "whats up", Description: "checking in", Body: "sup", TagList: []string{"intro", "casual"}},
			author: model.Author{Username: "julia"},
		},
	}

	for _, fixture := range fixtures {
		s.Create(fixture.draft, fixture.author)
	}
}

// List returns one page of articles as seen by viewer, plus the total
// count across all pages.
func (s *Store) List(offset, limit int, viewer string) model.ArticleList {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.articles)

	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}

	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]model.Article, 0, end-offset)
	for _, article := range s.articles[offset:end] {
		page = append(page, s.view(article, viewer))
	}

	return model.ArticleList{Articles: page, ArticlesCount: total}
}

// Get returns the article at slug as seen by viewer.
func (s *Store) Get(slug, viewer string) (model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, err := s.find(slug)
	if err != nil {
		return model.Article{}, err
	}

	return s.view(article, viewer), nil
}

// Create stores a new article with a server-assigned slug and returns
// it. New articles go to the front: the listing is newest first.
func (s *Store) Create(draft model.ArticleDraft, author model.Author) model.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC().Truncate(time.Millisecond)
	article := &model.Article{
		Slug:        slugify(draft.Title) + "-" + uuid.NewString()[:8],
		Title:       draft.Title,
		Description: draft.Description,
		Body:        draft.Body,
		TagList:     draft.TagList,
		CreatedAt:   now,
		UpdatedAt:   now,
		Author:      author,
	}
	if article.TagList == nil {
		article.TagList = []string{}
	}

	s.articles = append([]*model.Article{article}, s.articles...)

	return s.view(article, author.Username)
}

// Update replaces the editable fields of the article at slug. The
// slug itself never changes.
func (s *Store) Update(slug string, draft model.ArticleDraft, viewer string) (model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, err := s.find(slug)
	if err != nil {
		return model.Article{}, err
	}

	article.Title = draft.Title
	article.Description = draft.Description
	article.Body = draft.Body
	if draft.TagList != nil {
		article.TagList = draft.TagList
	}
	article.UpdatedAt = s.clock().UTC().Truncate(time.Millisecond)

	return s.view(article, viewer), nil
}

// Remove deletes the article at slug.
func (s *Store) Remove(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, article := range s.articles {
		if article.Slug == slug {
			s.articles = append(s.articles[:i], s.articles[i+1:]...)
			delete(s.favorites, slug)

			return nil
		}
	}

	return errNotFound
}

// SetFavorite records or clears viewer's favorite on slug and returns
// the article as viewer now sees it.
func (s *Store) SetFavorite(slug, viewer string, favorited bool) (model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, err := s.find(slug)
	if err != nil {
		return model.Article{}, err
	}

	if favorited {
		if s.favorites[slug] == nil {
			s.favorites[slug] = make(map[string]bool)
		}
		s.favorites[slug][viewer] = true
	} else {
		delete(s.favorites[slug], viewer)
	}

	return s.view(article, viewer), nil
}

func (s *Store) find(slug string) (*model.Article, error) {
	for _, article := range s.articles {
		if article.Slug == slug {
			return article, nil
		}
	}

	return nil, errNotFound
}

// view renders the stored article from one viewer's point of view.
func (s *Store) view(article *model.Article, viewer string) model.Article {
	copied := *article
	copied.TagList = append([]string(nil), article.TagList...)
	copied.FavoritesCount = len(s.favorites[article.Slug])
	copied.Favorited = viewer != "" && s.favorites[article.Slug][viewer]

	return copied
}

func slugify(title string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteRune('-')
		}
	}

	return strings.Trim(b.String(), "-")
}
