// Package cachesync maps a confirmed mutation to the set of cache
// entries it must correct, so independently-fetched views (list pages,
// article detail, current user) stay consistent without a refetch.
//
// Patches are applied only after the server confirms the mutation.
// When two mutations complete out of issue order, their patches apply
// in completion order: last writer wins per entry. Each patch copies
// the authoritative response body where one exists, so the cache
// converges to the latest server state.
package cachesync

import (
	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

// Kind enumerates the mutations the protocol knows how to sync.
type Kind uint8

const (
	KindCreateArticle Kind = iota
	KindUpdateArticle
	KindDeleteArticle
	KindFavorite
	KindUnfavorite
	KindUpdateUser
)

func (k Kind) String() string {
	switch k {
	case KindCreateArticle:
		return "createArticle"
	case KindUpdateArticle:
		return "updateArticle"
	case KindDeleteArticle:
		return "deleteArticle"
	case KindFavorite:
		return "favorite"
	case KindUnfavorite:
		return "unfavorite"
	case KindUpdateUser:
		return "updateUser"
	default:
		return "unknown"
	}
}

// Write is one pending cache correction: either an eviction or a
// mutator to run against the entry at Key.
type Write struct {
	Key    cache.Key
	Evict  bool
	Mutate func(interface{}) interface{}
}

// Patches returns the ordered cache writes for one confirmed mutation.
// resp is the response body for the kind: model.Article for article
// mutations, the slug string for deletes, model.User for user updates.
// Only the first list page is ever patched; deeper pages are served
// stale until their next fetch.
func Patches(kind Kind, resp interface{}) []Write {
	switch kind {
	case KindCreateArticle:
		if article, ok := resp.(model.Article); ok {
			return created(article)
		}
	case KindUpdateArticle:
		if article, ok := resp.(model.Article); ok {
			return updated(article)
		}
	case KindDeleteArticle:
		if slug, ok := resp.(string); ok {
			return deleted(slug)
		}
	case KindFavorite:
		if article, ok := resp.(model.Article); ok {
			return favoriteToggled(article.Slug, true)
		}
	case KindUnfavorite:
		if article, ok := resp.(model.Article); ok {
			return favoriteToggled(article.Slug, false)
		}
	case KindUpdateUser:
		if user, ok := resp.(model.User); ok {
			return userUpdated(user)
		}
	}

	return nil
}

// Apply resolves the writes for kind and runs them against the store
// in order. Each individual write publishes atomically; a reader can
// observe the state between two writes but never a half-patched entry.
func Apply(store *cache.Store, kind Kind, resp interface{}) {
	for _, write := range Patches(kind, resp) {
		if write.Evict {
			store.Evict(write.Key)

			continue
		}

		store.Patch(write.Key, write.Mutate)
	}
}

// created prepends the new article to the first list page and bumps
// the total count to match the server's. The prepend is skipped when
// the slug is already present, keeping duplicate delivery harmless.
func created(article model.Article) []Write {
	return []Write{{
		Key: cache.ArticlesKey(0),
		Mutate: func(value interface{}) interface{} {
			list, ok := value.(model.ArticleList)
			if !ok {
				return value
			}

			for _, existing := range list.Articles {
				if existing.Slug == article.Slug {
					return list
				}
			}

			articles := make([]model.Article, 0, len(list.Articles)+1)
			articles = append(articles, article)
			articles = append(articles, list.Articles...)

			return model.ArticleList{
				Articles:      articles,
				ArticlesCount: list.ArticlesCount + 1,
			}
		},
	}}
}

// updated replaces the detail entry, then the matching element of the
// first list page. An article absent from the page is left alone.
func updated(article model.Article) []Write {
	return []Write{
		{
			Key: cache.ArticleKey(article.Slug),
			Mutate: func(value interface{}) interface{} {
				if _, ok := value.(model.Article); !ok {
					return value
				}

				return article
			},
		},
		{
			Key:    cache.ArticlesKey(0),
			Mutate: replaceInList(article.Slug, func(model.Article) model.Article { return article }),
		},
	}
}

// deleted drops the detail entry and removes the matching element
// from the first list page, shrinking the total count with it.
func deleted(slug string) []Write {
	return []Write{
		{
			Key:   cache.ArticleKey(slug),
			Evict: true,
		},
		{
			Key: cache.ArticlesKey(0),
			Mutate: func(value interface{}) interface{} {
				list, ok := value.(model.ArticleList)
				if !ok {
					return value
				}

				articles := make([]model.Article, 0, len(list.Articles))
				removed := 0
				for _, existing := range list.Articles {
					if existing.Slug == slug {
						removed++

						continue
					}
					articles = append(articles, existing)
				}

				count := list.ArticlesCount - removed
				if count < 0 {
					count = 0
				}

				return model.ArticleList{Articles: articles, ArticlesCount: count}
			},
		},
	}
}

// favoriteToggled flips the favorited flag wherever the article is
// cached. The flag guards the counter: re-delivering the same toggle
// cannot double-count, and the count never goes below zero.
func favoriteToggled(slug string, favorited bool) []Write {
	toggle := func(article model.Article) model.Article {
		if article.Favorited == favorited {
			return article
		}

		article.Favorited = favorited
		if favorited {
			article.FavoritesCount++
		} else if article.FavoritesCount > 0 {
			article.FavoritesCount--
		}

		return article
	}

	return []Write{
		{
			Key:    cache.ArticlesKey(0),
			Mutate: replaceInList(slug, toggle),
		},
		{
			Key: cache.ArticleKey(slug),
			Mutate: func(value interface{}) interface{} {
				article, ok := value.(model.Article)
				if !ok || article.Slug != slug {
					return value
				}

				return toggle(article)
			},
		},
	}
}

// userUpdated replaces the cached current user with the server copy.
func userUpdated(user model.User) []Write {
	return []Write{{
		Key: cache.UserKey(),
		Mutate: func(value interface{}) interface{} {
			if _, ok := value.(model.User); !ok {
				return value
			}

			return user
		},
	}}
}

// replaceInList rewrites the element with the given slug in a list
// page, leaving the page untouched when the slug is absent. The
// backing array is copied so readers holding the old page never see
// the rewrite.
func replaceInList(slug string, rewrite func(model.Article) model.Article) func(interface{}) interface{} {
	return func(value interface{}) interface{} {
		list, ok := value.(model.ArticleList)
		if !ok {
			return value
		}

		found := false
		for _, existing := range list.Articles {
			if existing.Slug == slug {
				found = true

				break
			}
		}
		if !found {
			return list
		}

		articles := make([]model.Article, len(list.Articles))
		for i, existing := range list.Articles {
			if existing.Slug == slug {
				articles[i] = rewrite(existing)
			} else {
				articles[i] = existing
			}
		}

		return model.ArticleList{Articles: articles, ArticlesCount: list.ArticlesCount}
	}
}
