// Package executor runs reads and mutations against the API and keeps
// the query cache and session consistent with their results. Mutations
// follow a two-phase protocol: the transport call completes first, and
// only a confirmed response is fed to the cache patch table. On any
// error the cache is left exactly as it was.
package executor

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/client"
	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/cachesync"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/session"
)

// Option mutates executor configuration.
type Option func(*Executor)

// WithLogger injects a logger; the default discards everything.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.log = logger
		}
	}
}

// Executor owns the wiring between transport, cache, and session.
type Executor struct {
	api     *client.Client
	store   *cache.Store
	session *session.Session
	log     *zap.SugaredLogger

	completed metric.Int64Counter
}

func New(api *client.Client, store *cache.Store, sess *session.Session, options ...Option) *Executor {
	meter := global.Meter("blog/executor")

	e := &Executor{
		api:     api,
		store:   store,
		session: sess,
		log:     zap.NewNop().Sugar(),
		completed: metric.Must(meter).NewInt64Counter(
			"mutation/completed_count",
			metric.WithDescription("Count of completed mutations, by kind and outcome"),
		),
	}

	for _, option := range options {
		option(e)
	}

	return e
}

// Restore initializes the session from the credential store and, when
// a token survives, verifies it against the API. A rejected token
// logs the session out; network trouble leaves the restored session
// in place for a later retry.
func (e *Executor) Restore(ctx context.Context) error {
	if err := e.session.Restore(); err != nil {
		return err
	}

	token := e.session.Token()
	if token == "" {
		return nil
	}

	e.api.SetToken(token)

	if _, err := e.api.CurrentUser(ctx); err != nil {
		var authErr *client.AuthError
		if errors.As(err, &authErr) {
			e.log.Infow("stored token rejected, logging out")

			return e.Logout()
		}

		return err
	}

	return nil
}

// Articles returns the cached list page at offset, fetching on miss.
func (e *Executor) Articles(ctx context.Context, offset int) (model.ArticleList, error) {
	entry, err := e.store.Read(ctx, cache.ArticlesKey(offset), func(ctx context.Context) (interface{}, error) {
		return e.api.ListArticles(ctx, offset)
	})
	if err != nil {
		return model.ArticleList{}, err
	}

	list, _ := entry.Value.(model.ArticleList)

	return list, nil
}

// Article returns the cached detail for slug, fetching on miss.
func (e *Executor) Article(ctx context.Context, slug string) (model.Article, error) {
	entry, err := e.store.Read(ctx, cache.ArticleKey(slug), func(ctx context.Context) (interface{}, error) {
		return e.api.GetArticle(ctx, slug)
	})
	if err != nil {
		return model.Article{}, err
	}

	article, _ := entry.Value.(model.Article)

	return article, nil
}

// User returns the cached current user, fetching on miss.
func (e *Executor) User(ctx context.Context) (model.User, error) {
	entry, err := e.store.Read(ctx, cache.UserKey(), func(ctx context.Context) (interface{}, error) {
		return e.api.CurrentUser(ctx)
	})
	if err != nil {
		return model.User{}, err
	}

	user, _ := entry.Value.(model.User)

	return user, nil
}

// CreateArticle submits the draft and, on success, prepends the new
// article to the cached first list page.
func (e *Executor) CreateArticle(ctx context.Context, draft model.ArticleDraft) (model.Article, error) {
	article, err := e.api.CreateArticle(ctx, draft)
	e.record(ctx, cachesync.KindCreateArticle, err)
	if err != nil {
		return model.Article{}, err
	}

	cachesync.Apply(e.store, cachesync.KindCreateArticle, article)

	return article, nil
}

// UpdateArticle submits the draft for slug and, on success, rewrites
// the cached detail and list entries with the server copy.
func (e *Executor) UpdateArticle(ctx context.Context, slug string, draft model.ArticleDraft) (model.Article, error) {
	article, err := e.api.UpdateArticle(ctx, slug, draft)
	e.record(ctx, cachesync.KindUpdateArticle, err)
	if err != nil {
		return model.Article{}, err
	}

	cachesync.Apply(e.store, cachesync.KindUpdateArticle, article)

	return article, nil
}

// DeleteArticle removes the article and, on success, drops it from
// every cached view.
func (e *Executor) DeleteArticle(ctx context.Context, slug string) error {
	err := e.api.DeleteArticle(ctx, slug)
	e.record(ctx, cachesync.KindDeleteArticle, err)
	if err != nil {
		return err
	}

	cachesync.Apply(e.store, cachesync.KindDeleteArticle, slug)

	return nil
}

// FavoriteArticle marks the article favorited. The cache is patched
// only after the server confirms, so the UI shows the old state for
// the duration of the round trip.
func (e *Executor) FavoriteArticle(ctx context.Context, slug string) (model.Article, error) {
	article, err := e.api.FavoriteArticle(ctx, slug)
	e.record(ctx, cachesync.KindFavorite, err)
	if err != nil {
		return model.Article{}, err
	}

	cachesync.Apply(e.store, cachesync.KindFavorite, article)

	return article, nil
}

// UnfavoriteArticle clears the favorite, patching the cache only
// after confirmation.
func (e *Executor) UnfavoriteArticle(ctx context.Context, slug string) (model.Article, error) {
	article, err := e.api.UnfavoriteArticle(ctx, slug)
	e.record(ctx, cachesync.KindUnfavorite, err)
	if err != nil {
		return model.Article{}, err
	}

	cachesync.Apply(e.store, cachesync.KindUnfavorite, article)

	return article, nil
}

// ToggleFavorite favorites or unfavorites based on the article's
// current cached state.
func (e *Executor) ToggleFavorite(ctx context.Context, article model.Article) (model.Article, error) {
	if article.Favorited {
		return e.UnfavoriteArticle(ctx, article.Slug)
	}

	return e.FavoriteArticle(ctx, article.Slug)
}

// Register creates an account and signs the session in.
func (e *Executor) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	return e.authenticate(func() (model.User, error) {
		return e.api.Register(ctx, reg)
	})
}

// Login signs the session in. On failure the session state is left
// untouched and no credentials are persisted.
func (e *Executor) Login(ctx context.Context, creds model.Credentials) (model.User, error) {
	return e.authenticate(func() (model.User, error) {
		return e.api.Login(ctx, creds)
	})
}

func (e *Executor) authenticate(call func() (model.User, error)) (model.User, error) {
	e.session.Begin()

	user, err := call()
	if err != nil {
		e.session.Fail()

		return model.User{}, err
	}

	e.api.SetToken(user.Token)
	if err := e.session.SetCredentials(user); err != nil {
		return model.User{}, err
	}

	// Per-user fields (favorited, following) in cached articles belong
	// to the previous identity.
	e.store.Invalidate(cache.EndpointArticles, cache.EndpointArticle)

	e.log.Infow("signed in", "username", user.Username)

	return user, nil
}

// UpdateUser applies a profile update and, on success, patches the
// cached current user, merges the session, and rewrites the
// credential store.
func (e *Executor) UpdateUser(ctx context.Context, update model.UserUpdate) (model.User, error) {
	user, err := e.api.UpdateUser(ctx, update)
	e.record(ctx, cachesync.KindUpdateUser, err)
	if err != nil {
		return model.User{}, err
	}

	if user.Token != "" {
		e.api.SetToken(user.Token)
	} else if current, ok := e.session.User(); ok {
		user.Token = current.Token
	}

	cachesync.Apply(e.store, cachesync.KindUpdateUser, user)

	if err := e.session.SetCredentials(user); err != nil {
		return model.User{}, err
	}

	return user, nil
}

// Logout clears the session, the persisted credentials, and every
// per-user cache entry.
func (e *Executor) Logout() error {
	e.api.SetToken("")
	e.store.Evict(cache.UserKey())
	e.store.Invalidate(cache.EndpointArticles, cache.EndpointArticle)

	return e.session.Logout()
}

func (e *Executor) record(ctx context.Context, kind cachesync.Kind, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		e.log.Errorw("mutation failed", "kind", kind.String(), "error", err)
	}

	e.completed.Add(ctx, 1,
		attribute.String("kind", kind.String()),
		attribute.String("status", status),
	)
}
