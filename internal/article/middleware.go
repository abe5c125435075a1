package article

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

type ctxKey int8

const ctxKeyArticle ctxKey = iota

// ArticleCtx middleware is used to load an Article object from the
// slug URL parameter passed through as the request. In case the
// Article could not be found, we stop here and return a 404.
func (a *API) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			a.renderErr(w, r, errresponse.ErrNotFound)

			return
		}

		viewer := ""
		if record, ok := user.FromContext(r.Context()); ok {
			viewer = record.Username
		}

		article, err := a.store.Get(slug, viewer)
		if err != nil {
			a.renderErr(w, r, errresponse.ErrNotFound)

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyArticle, article)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func articleFromContext(ctx context.Context) (model.Article, bool) {
	article, ok := ctx.Value(ctxKeyArticle).(model.Article)

	return article, ok
}
