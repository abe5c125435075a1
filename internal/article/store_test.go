package article

import (
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

func TestCreateAssignsUniqueSlugs(t *testing.T) {
	s := NewStore()
	draft := model.ArticleDraft{Title: "Hello, World!", Description: "d", Body: "b"}

	first := s.Create(draft, model.Author{Username: "peter"})
	second := s.Create(draft, model.Author{Username: "peter"})

	if !strings.HasPrefix(first.Slug, "hello-world-") {
		t.Fatalf("unexpected slug %q", first.Slug)
	}
	if first.Slug == second.Slug {
		t.Fatal("slugs must be unique for identical titles")
	}
}

func TestListIsNewestFirstAndPaged(t *testing.T) {
	s := NewStore()
	for _, title := range []string{"one", "two", "three"} {
		s.Create(model.ArticleDraft{Title: title, Description: "d", Body: "b"}, model.Author{Username: "peter"})
	}

	page := s.List(0, 2, "")
	assert.Equal(t, len(page.Articles), 2)
	assert.Equal(t, page.Articles[0].Title, "three")
	assert.Equal(t, page.Articles[1].Title, "two")
	assert.Equal(t, page.ArticlesCount, 3)

	rest := s.List(2, 2, "")
	assert.Equal(t, len(rest.Articles), 1)
	assert.Equal(t, rest.Articles[0].Title, "one")
}

func TestFavoritesArePerViewer(t *testing.T) {
	s := NewStore()
	created := s.Create(model.ArticleDraft{Title: "t", Description: "d", Body: "b"}, model.Author{Username: "peter"})

	if _, err := s.SetFavorite(created.Slug, "julia", true); err != nil {
		t.Fatal(err)
	}

	asJulia, _ := s.Get(created.Slug, "julia")
	assert.Equal(t, asJulia.Favorited, true)
	assert.Equal(t, asJulia.FavoritesCount, 1)

	asPeter, _ := s.Get(created.Slug, "peter")
	assert.Equal(t, asPeter.Favorited, false)
	assert.Equal(t, asPeter.FavoritesCount, 1)

	if _, err := s.SetFavorite(created.Slug, "julia", false); err != nil {
		t.Fatal(err)
	}

	again, _ := s.Get(created.Slug, "julia")
	assert.Equal(t, again.Favorited, false)
	assert.Equal(t, again.FavoritesCount, 0)
}

func TestUpdateKeepsSlug(t *testing.T) {
	s := NewStore()
	created := s.Create(model.ArticleDraft{Title: "before", Description: "d", Body: "b"}, model.Author{Username: "peter"})

	updated, err := s.Update(created.Slug, model.ArticleDraft{Title: "after", Description: "d2", Body: "b2"}, "peter")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, updated.Slug, created.Slug)
	assert.Equal(t, updated.Title, "after")
}

func TestRemoveUnknownSlugFails(t *testing.T) {
	s := NewStore()

	if err := s.Remove("nope"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, slugify("Hello, World!"), "hello-world")
	assert.Equal(t, slugify("  spaced   out  "), "spaced-out")
	assert.Equal(t, slugify("már-ez-is"), "már-ez-is")
}
