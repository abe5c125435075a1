package executor

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/assert/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/client"
	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/credstore"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/session"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

type env struct {
	exec  *Executor
	store *cache.Store
	creds *credstore.MemStore
	sess  *session.Session
	api   *client.Client
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := zap.NewNop().Sugar()

	users := user.NewStore()
	users.Seed()
	articles := article.NewStore()
	articles.Seed()

	userAPI := user.NewAPI(users, user.NewTokenIssuer("test-secret"), logger)
	articleAPI := article.NewAPI(articles, userAPI, logger)

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Route("/api", func(r chi.Router) {
		userAPI.Mount(r)
		articleAPI.Mount(r)
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	api := client.New(ts.URL + "/api")
	store := cache.New()
	creds := credstore.NewMemStore()
	sess := session.New(creds)

	return &env{
		exec:  New(api, store, sess),
		store: store,
		creds: creds,
		sess:  sess,
		api:   api,
	}
}

func (e *env) login(t *testing.T) model.User {
	t.Helper()

	u, err := e.exec.Login(context.Background(), model.Credentials{
		Email:    "peter@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatal(err)
	}

	return u
}

func (e *env) cachedList(t *testing.T) model.ArticleList {
	t.Helper()

	entry, ok := e.store.Lookup(cache.ArticlesKey(0))
	if !ok {
		t.Fatal("first list page not cached")
	}

	return entry.Value.(model.ArticleList)
}

func TestLoginSetsSessionAndPersistsToken(t *testing.T) {
	e := newEnv(t)

	u := e.login(t)

	if u.Token == "" {
		t.Fatal("login must return a token")
	}
	assert.Equal(t, e.sess.State(), session.StateAuthenticated)
	assert.Equal(t, e.sess.Token(), u.Token)
	assert.Equal(t, e.api.Token(), u.Token)

	stored, ok, _ := e.creds.Get(session.KeyToken)
	assert.Equal(t, ok, true)
	assert.Equal(t, stored, u.Token)
}

func TestLoginFailureLeavesSessionAnonymous(t *testing.T) {
	e := newEnv(t)

	_, err := e.exec.Login(context.Background(), model.Credentials{
		Email:    "peter@example.com",
		Password: "wrong",
	})

	var validationErr *client.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	assert.Equal(t, e.sess.State(), session.StateAnonymous)

	if _, ok, _ := e.creds.Get(session.KeyToken); ok {
		t.Fatal("no credentials should be persisted")
	}
}

func TestCreateArticleShowsFirstOnListPage(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	before, err := e.exec.Articles(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}

	created, err := e.exec.CreateArticle(context.Background(), model.ArticleDraft{
		Title:       "fresh post",
		Description: "just created",
		Body:        "body",
		TagList:     []string{"new"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(created.Slug, "fresh-post-") {
		t.Fatalf("unexpected slug %q", created.Slug)
	}

	// The cached page is patched in place, no refetch.
	list := e.cachedList(t)
	assert.Equal(t, list.Articles[0].Slug, created.Slug)
	assert.Equal(t, len(list.Articles), len(before.Articles)+1)
	assert.Equal(t, list.ArticlesCount, before.ArticlesCount+1)

	// And a read straight after observes the same patched page.
	after, err := e.exec.Articles(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, after.Articles[0].Slug, created.Slug)
}

func TestFavoritePatchesListAndDetailAfterConfirmation(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	list, err := e.exec.Articles(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	slug := list.Articles[0].Slug

	detail, err := e.exec.Article(context.Background(), slug)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, detail.Favorited, false)

	updated, err := e.exec.FavoriteArticle(context.Background(), slug)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, updated.Favorited, true)
	assert.Equal(t, updated.FavoritesCount, detail.FavoritesCount+1)

	cached := e.cachedList(t)
	assert.Equal(t, cached.Articles[0].Favorited, true)
	assert.Equal(t, cached.Articles[0].FavoritesCount, detail.FavoritesCount+1)
	assert.Equal(t, cached.ArticlesCount, list.ArticlesCount)

	entry, ok := e.store.Lookup(cache.ArticleKey(slug))
	assert.Equal(t, ok, true)
	assert.Equal(t, entry.Value.(model.Article).Favorited, true)
}

func TestDeleteArticleRemovesFromCachedViews(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	created, err := e.exec.CreateArticle(context.Background(), model.ArticleDraft{
		Title:       "short lived",
		Description: "soon gone",
		Body:        "body",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.exec.Articles(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.exec.Article(context.Background(), created.Slug); err != nil {
		t.Fatal(err)
	}

	before := e.cachedList(t)

	if err := e.exec.DeleteArticle(context.Background(), created.Slug); err != nil {
		t.Fatal(err)
	}

	after := e.cachedList(t)
	assert.Equal(t, len(after.Articles), len(before.Articles)-1)
	assert.Equal(t, after.ArticlesCount, before.ArticlesCount-1)
	for _, a := range after.Articles {
		if a.Slug == created.Slug {
			t.Fatal("deleted article still cached in list")
		}
	}

	if _, ok := e.store.Lookup(cache.ArticleKey(created.Slug)); ok {
		t.Fatal("deleted article still cached in detail")
	}
}

func TestFailedMutationLeavesCacheUntouched(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	before, err := e.exec.Articles(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.exec.FavoriteArticle(context.Background(), "no-such-slug")

	var notFound *client.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	after := e.cachedList(t)
	assert.Equal(t, len(after.Articles), len(before.Articles))
	for i := range after.Articles {
		assert.Equal(t, after.Articles[i].Favorited, before.Articles[i].Favorited)
		assert.Equal(t, after.Articles[i].FavoritesCount, before.Articles[i].FavoritesCount)
	}
}

func TestUpdateUserMergesSessionAndRewritesStore(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	if _, err := e.exec.User(context.Background()); err != nil {
		t.Fatal(err)
	}

	updated, err := e.exec.UpdateUser(context.Background(), model.UserUpdate{Bio: "updated bio"})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, updated.Bio, "updated bio")

	current, ok := e.sess.User()
	assert.Equal(t, ok, true)
	assert.Equal(t, current.Bio, "updated bio")

	entry, ok := e.store.Lookup(cache.UserKey())
	assert.Equal(t, ok, true)
	assert.Equal(t, entry.Value.(model.User).Bio, "updated bio")

	info, ok, _ := e.creds.Get(session.KeyUserInfo)
	assert.Equal(t, ok, true)
	if !strings.Contains(info, "updated bio") {
		t.Fatalf("persisted summary missing update: %s", info)
	}
}

func TestRestoreRejectedTokenLogsOut(t *testing.T) {
	e := newEnv(t)

	forged, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"username": "peter",
		"exp":      gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatal(err)
	}

	if err := e.creds.Set(session.KeyToken, forged); err != nil {
		t.Fatal(err)
	}
	if err := e.creds.Set(session.KeyUserInfo, `{"username":"peter"}`); err != nil {
		t.Fatal(err)
	}

	if err := e.exec.Restore(context.Background()); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, e.sess.State(), session.StateAnonymous)

	if _, ok, _ := e.creds.Get(session.KeyToken); ok {
		t.Fatal("rejected token should be scrubbed")
	}
}

func TestLogoutEvictsUserAndStalesArticles(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	if _, err := e.exec.User(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.exec.Articles(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	if err := e.exec.Logout(); err != nil {
		t.Fatal(err)
	}

	if _, ok := e.store.Lookup(cache.UserKey()); ok {
		t.Fatal("current user entry should be evicted")
	}

	entry, ok := e.store.Lookup(cache.ArticlesKey(0))
	assert.Equal(t, ok, true)
	assert.Equal(t, entry.Stale(), true)
	assert.Equal(t, e.api.Token(), "")
}
